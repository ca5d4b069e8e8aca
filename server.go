package main

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"hoverplanet/config"
	"hoverplanet/core"
	"hoverplanet/physics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// meshMessage is the one-time planet snapshot sent on connect.
type meshMessage struct {
	Type        string       `json:"type"`
	Vertices    [][3]float64 `json:"vertices"`
	Indices     []int32      `json:"indices"`
	Radius      float64      `json:"radius"`
	HeightScale float64      `json:"heightScale"`
}

// stateMessage is the per-tick vehicle snapshot broadcast to clients.
type stateMessage struct {
	Type         string     `json:"type"`
	Position     [3]float64 `json:"position"`
	Forward      [3]float64 `json:"forward"`
	Up           [3]float64 `json:"up"`
	Speed        float64    `json:"speed"`
	Latitude     float64    `json:"lat"`
	Longitude    float64    `json:"lon"`
	Altitude     float64    `json:"alt"`
	InsidePlanet bool       `json:"insidePlanet"`
}

// inputMessage carries steering state and commands from a client.
type inputMessage struct {
	Left     bool `json:"left"`
	Right    bool `json:"right"`
	Forward  bool `json:"forward"`
	Backward bool `json:"backward"`
	Reset    bool `json:"reset"`
}

// server drives the simulation loop and streams planet/vehicle state
// over websockets. One goroutine owns the tick; reader goroutines only
// touch the controller through SetControlState/RequestReset.
type server struct {
	planet     *core.Planet
	controller *physics.HoverController
	settings   config.ServerSettings
	log        zerolog.Logger

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex
}

func newServer(planet *core.Planet, controller *physics.HoverController, settings config.ServerSettings, log zerolog.Logger) *server {
	return &server{
		planet:     planet,
		controller: controller,
		settings:   settings,
		log:        log,
		clients:    make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Run starts the simulation loop and blocks serving HTTP.
func (s *server) Run() error {
	go s.simulationLoop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", s.settings.Port)
	s.log.Info().Str("addr", addr).Msg("server listening")
	return http.ListenAndServe(addr, mux)
}

// simulationLoop advances the hover controller at the configured tick
// rate. Wall-clock deltas are clamped before each update so a stalled
// process cannot produce one giant integration step.
func (s *server) simulationLoop() {
	interval := time.Duration(s.settings.TickMs) * time.Millisecond
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	const maxDelta = 0.1
	last := time.Now()
	for now := range ticker.C {
		dt := now.Sub(last).Seconds()
		last = now
		if dt > maxDelta {
			dt = maxDelta
		}

		s.controller.Update(dt)
		s.broadcastState()
	}
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = connMu
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()

	s.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("client connected")
	s.sendMesh(conn, connMu)

	for {
		var msg inputMessage
		if err := conn.ReadJSON(&msg); err != nil {
			s.log.Info().Err(err).Msg("client disconnected")
			return
		}
		if msg.Reset {
			s.controller.RequestReset()
			continue
		}
		s.controller.SetControlState(physics.InputState{
			Left:     msg.Left,
			Right:    msg.Right,
			Forward:  msg.Forward,
			Backward: msg.Backward,
		})
	}
}

func (s *server) sendMesh(conn *websocket.Conn, connMu *sync.Mutex) {
	mesh := s.planet.Mesh()
	vertices := make([][3]float64, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		vertices[i] = [3]float64{v.X(), v.Y(), v.Z()}
	}

	msg := meshMessage{
		Type:        "mesh",
		Vertices:    vertices,
		Indices:     mesh.Indices,
		Radius:      s.planet.Radius(),
		HeightScale: s.planet.Heights().HeightScale(),
	}

	connMu.Lock()
	err := conn.WriteJSON(msg)
	connMu.Unlock()
	if err != nil {
		s.log.Error().Err(err).Msg("mesh send failed")
	}
}

func (s *server) broadcastState() {
	pos := s.controller.Position()
	fwd := s.controller.Direction()
	orient := s.controller.Orientation()
	up := orient.Col(1)

	geo := core.ToGeographic(pos, s.planet.Radius())
	msg := stateMessage{
		Type:         "state",
		Position:     [3]float64{pos.X(), pos.Y(), pos.Z()},
		Forward:      [3]float64{fwd.X(), fwd.Y(), fwd.Z()},
		Up:           [3]float64{up.X(), up.Y(), up.Z()},
		Speed:        s.controller.Velocity().Len(),
		Latitude:     geo.Lat,
		Longitude:    geo.Lon,
		Altitude:     geo.Alt,
		InsidePlanet: s.controller.Body().InsidePlanet,
	}

	var failed []*websocket.Conn
	s.clientsMu.RLock()
	for conn, connMu := range s.clients {
		connMu.Lock()
		err := conn.WriteJSON(msg)
		connMu.Unlock()
		if err != nil {
			conn.Close()
			failed = append(failed, conn)
		}
	}
	s.clientsMu.RUnlock()

	if len(failed) > 0 {
		s.clientsMu.Lock()
		for _, conn := range failed {
			delete(s.clients, conn)
		}
		s.clientsMu.Unlock()
	}
}
