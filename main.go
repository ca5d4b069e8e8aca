package main

import (
	"flag"
	"math/rand"
	"os"

	"github.com/rs/zerolog"

	"hoverplanet/config"
	"hoverplanet/core"
	"hoverplanet/physics"
)

func main() {
	var (
		configDir = flag.String("config", ".", "Directory containing hoverplanet.cfg.json")
		radius    = flag.Float64("radius", 0, "Planet radius (overrides config)")
		seed      = flag.Int64("seed", 0, "World seed (overrides config)")
		port      = flag.Int("port", 0, "Server port (overrides config)")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	settings, err := config.Load(*configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *radius > 0 {
		settings.Planet.Radius = *radius
	}
	if *seed != 0 {
		settings.Seed = *seed
	}
	if *port > 0 {
		settings.Server.Port = *port
	}
	if level, err := zerolog.ParseLevel(settings.LogLevel); err == nil {
		log = log.Level(level)
	}

	log.Info().
		Int64("seed", settings.Seed).
		Float64("radius", settings.Planet.Radius).
		Int("subdivisions", settings.Planet.Subdivisions).
		Msg("generating planet")

	planet := buildPlanet(settings, log)
	controller := physics.NewHoverController(planet, hoverConfig(settings), log)

	log.Info().
		Int("vertices", len(planet.Mesh().Vertices)).
		Int("craters", len(planet.Heights().Craters())).
		Msg("world ready")

	srv := newServer(planet, controller, settings.Server, log)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// buildPlanet assembles the noise field, crater set, height field, and
// surface mesh from the settings.
func buildPlanet(s config.Settings, log zerolog.Logger) *core.Planet {
	noise := core.NewNoiseField(s.Seed)

	rng := rand.New(rand.NewSource(s.Seed))
	craters := core.NewCraterSet(core.GenerateCraters(core.CraterConfig{
		Count:           s.Craters.Count,
		MinSize:         s.Craters.MinSize,
		MaxSize:         s.Craters.MaxSize,
		DepthFactor:     s.Craters.DepthFactor,
		RimHeightFactor: s.Craters.RimHeightFactor,
	}, rng), s.Planet.Radius)

	heights := core.NewTerrainHeightField(core.TerrainConfig{
		Radius:         s.Planet.Radius,
		HeightScale:    s.Planet.HeightScale,
		Octaves:        core.DefaultOctaves(),
		RidgeFrequency: s.Planet.RidgeFrequency,
		RidgeSharpness: s.Planet.RidgeSharpness,
		RidgeWeight:    s.Planet.RidgeWeight,
	}, noise, craters, log)

	var opts []core.PlanetOption
	if s.Planet.MeshRefinement {
		opts = append(opts, core.WithMeshRefinement())
	}
	return core.NewPlanet(heights, s.Planet.Subdivisions, log, opts...)
}

// hoverConfig merges configured hover tuning over the radius-derived
// defaults.
func hoverConfig(s config.Settings) physics.HoverConfig {
	cfg := physics.DefaultHoverConfig(s.Planet.Radius)
	if s.Hover.TargetHeight > 0 {
		cfg.TargetHeight = s.Hover.TargetHeight
	}
	if s.Hover.Stiffness > 0 {
		cfg.Stiffness = s.Hover.Stiffness
	}
	if s.Hover.Damping > 0 {
		cfg.Damping = s.Hover.Damping
	}
	if s.Hover.ThrustForce > 0 {
		cfg.ThrustForce = s.Hover.ThrustForce
	}
	if s.Hover.TurnRate > 0 {
		cfg.TurnRate = s.Hover.TurnRate
	}
	return cfg
}
