package physics

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"hoverplanet/core"
)

// SurfaceSource is the read-only surface service the controller hovers
// against: typically a core.Planet.
type SurfaceSource interface {
	NearestPointOnSurface(point mgl64.Vec3) mgl64.Vec3
	Radius() float64
}

// HoverConfig holds the suspension and control constants.
type HoverConfig struct {
	Mass         float64
	TargetHeight float64 // ride height above the surface
	BodyRadius   float64 // penetration threshold

	Stiffness float64 // suspension spring constant
	Damping   float64 // suspension damper on radial velocity
	MaxForce  float64 // clamp on the suspension force magnitude

	ThrustForce float64 // forward thrust along the heading
	TurnRate    float64 // immediate heading rotation, rad/s
	TurnTorque  float64 // steering torque about the local up

	LinearDamping  float64
	AngularDamping float64

	// Distance-from-center safety band. Outside MaxPlanetDistance a
	// corrective inward force applies; inside MinPlanetDistance the
	// emergency recovery path takes over.
	MinPlanetDistance float64
	MaxPlanetDistance float64

	// EmergencyForce pushes the body back out when it ends up inside
	// the planet.
	EmergencyForce float64

	// StabilitySpeed is the speed below which the current position is
	// recorded as the last safe position.
	StabilitySpeed float64

	// MaxDeltaTime bounds a single integration step. The driver is
	// expected to clamp already; the controller clamps again so an
	// unclamped stall delta cannot blow up the simulation.
	MaxDeltaTime float64
}

// DefaultHoverConfig returns hover constants tuned for a planet of the
// given radius.
func DefaultHoverConfig(radius float64) HoverConfig {
	return HoverConfig{
		Mass:              1.0,
		TargetHeight:      4.0,
		BodyRadius:        1.5,
		Stiffness:         60.0,
		Damping:           12.0,
		MaxForce:          400.0,
		ThrustForce:       55.0,
		TurnRate:          1.8,
		TurnTorque:        2.5,
		LinearDamping:     0.6,
		AngularDamping:    1.5,
		MinPlanetDistance: radius * 0.9,
		MaxPlanetDistance: radius * 2.5,
		EmergencyForce:    1000.0,
		StabilitySpeed:    8.0,
		MaxDeltaTime:      0.1,
	}
}

// recoveryDamping suppresses oscillation while the body is inside the
// planet or penetrating the surface.
const recoveryDamping = 0.8

// HoverController owns one HoverBody and advances it each tick:
// safety bounds, suspension forces, steering and thrust, safe-position
// bookkeeping, orientation sync. Every failure mode degrades to holding
// the last known good state; nothing escapes Update.
type HoverController struct {
	planet SurfaceSource
	cfg    HoverConfig
	log    zerolog.Logger

	body  *HoverBody
	force mgl64.Vec3 // accumulated this tick

	inputMu        sync.Mutex
	input          InputState
	resetRequested bool

	orientation mgl64.Mat3

	warnedMissing bool
}

// NewHoverController creates a controller with its body spawned at the
// default safe position above the surface. planet may be nil, in which
// case Update is a no-op until a surface exists.
func NewHoverController(planet SurfaceSource, cfg HoverConfig, log zerolog.Logger) *HoverController {
	hc := &HoverController{
		planet: planet,
		cfg:    cfg,
		log:    log,
		body:   &HoverBody{},
	}
	hc.Reset()
	return hc
}

// Reset respawns the body at the default position above the north pole
// with a default tangent heading, clearing velocities, InsidePlanet,
// and the recorded safe position. It mutates the body directly and must
// only run on the goroutine driving Update; other goroutines use
// RequestReset instead.
func (hc *HoverController) Reset() {
	spawnRadius := hc.cfg.MaxPlanetDistance * 0.6
	if hc.planet != nil {
		spawnRadius = hc.planet.Radius()*1.1 + hc.cfg.TargetHeight
	}
	*hc.body = HoverBody{
		Position:         mgl64.Vec3{0, spawnRadius, 0},
		Forward:          mgl64.Vec3{1, 0, 0},
		LastSafePosition: mgl64.Vec3{0, spawnRadius, 0},
	}
	hc.syncOrientation()
}

// SetControlState replaces the input snapshot applied on subsequent
// ticks. Safe to call from another goroutine.
func (hc *HoverController) SetControlState(input InputState) {
	hc.inputMu.Lock()
	hc.input = input
	hc.inputMu.Unlock()
}

// RequestReset asks for a respawn on the next tick. Safe to call from
// another goroutine; the body itself is only touched inside Update.
func (hc *HoverController) RequestReset() {
	hc.inputMu.Lock()
	hc.resetRequested = true
	hc.inputMu.Unlock()
}

// consumeResetRequest reports and clears a pending reset request.
func (hc *HoverController) consumeResetRequest() bool {
	hc.inputMu.Lock()
	requested := hc.resetRequested
	hc.resetRequested = false
	hc.inputMu.Unlock()
	return requested
}

// Position returns the body's current position.
func (hc *HoverController) Position() mgl64.Vec3 {
	return hc.body.Position
}

// Direction returns the body's heading, tangent to the local surface.
func (hc *HoverController) Direction() mgl64.Vec3 {
	return hc.body.Forward
}

// Velocity returns the body's current velocity.
func (hc *HoverController) Velocity() mgl64.Vec3 {
	return hc.body.Velocity
}

// Body returns the owned body. Callers other than the controller must
// treat it as read-only and only between ticks.
func (hc *HoverController) Body() *HoverBody {
	return hc.body
}

// Orientation returns the body's orthonormal basis as column vectors
// (right, up, forward), rebuilt at the end of every tick.
func (hc *HoverController) Orientation() mgl64.Mat3 {
	return hc.orientation
}

// Update advances the simulation by one tick. dt is clamped to
// MaxDeltaTime. A missing surface makes this a no-op; any non-finite
// state at the end of the tick triggers recovery to the last safe
// position instead of propagating.
func (hc *HoverController) Update(dt float64) {
	if hc.planet == nil {
		if !hc.warnedMissing {
			hc.log.Warn().Msg("hover update skipped: no surface source")
			hc.warnedMissing = true
		}
		return
	}
	if dt <= 0 {
		return
	}
	if dt > hc.cfg.MaxDeltaTime {
		dt = hc.cfg.MaxDeltaTime
	}

	// A requested respawn consumes the whole tick so the spawn state
	// survives verbatim into the next broadcast.
	if hc.consumeResetRequest() {
		hc.Reset()
		return
	}

	hc.force = mgl64.Vec3{}

	if hardReset := hc.enforceSafetyBounds(); hardReset {
		hc.syncOrientation()
		return
	}
	hc.applyHoverForces()
	hc.applyControls(dt)
	hc.integrate(dt)
	hc.updateSafePosition()

	if !core.FiniteVec(hc.body.Position) || !core.FiniteVec(hc.body.Velocity) || !core.FiniteVec(hc.body.Forward) {
		hc.recoverFromError()
	}
	hc.syncOrientation()
}

// enforceSafetyBounds keeps the body inside the allowed distance band
// around the planet. Returns true when deep penetration forced a hard
// reset to the last safe position, in which case the rest of the tick
// is skipped so the recovered state survives verbatim.
func (hc *HoverController) enforceSafetyBounds() bool {
	body := hc.body
	dist := body.Position.Len()

	switch {
	case dist > hc.cfg.MaxPlanetDistance:
		inward := body.Position.Mul(-1 / dist)
		hc.addForce(inward.Mul(hc.cfg.Stiffness * 5.0))

	case dist < hc.cfg.MinPlanetDistance:
		body.InsidePlanet = true
		if dist < hc.cfg.MinPlanetDistance*0.5 {
			// Deep penetration or numerical blow-up: last resort.
			hc.log.Warn().Float64("distance", dist).Msg("deep penetration, restoring last safe position")
			body.Position = body.LastSafePosition
			body.Velocity = mgl64.Vec3{}
			body.AngularVelocity = mgl64.Vec3{}
			return true
		}
		outward := core.SafeNormalize(body.Position)
		hc.addForce(outward.Mul(hc.cfg.EmergencyForce))
		body.Velocity = body.Velocity.Mul(recoveryDamping)
		body.AngularVelocity = body.AngularVelocity.Mul(recoveryDamping)

	default:
		body.InsidePlanet = false
	}
	return false
}

// applyHoverForces runs the spring-damper suspension against the
// nearest surface point, or the repulsion recovery branch when the body
// is penetrating the surface.
func (hc *HoverController) applyHoverForces() {
	body := hc.body
	surface := hc.planet.NearestPointOnSurface(body.Position)
	toBody := body.Position.Sub(surface)
	distance := toBody.Len()

	// Outward surface normal; radial fallback when the body sits
	// exactly on the surface point.
	normal := core.SafeNormalize(body.Position)
	if distance > core.DegenerateEpsilon {
		normal = toBody.Mul(1 / distance)
	}
	// A body below the surface still needs pushing outward, not
	// further in.
	if normal.Dot(core.SafeNormalize(body.Position)) < 0 {
		normal = normal.Mul(-1)
		distance = -distance
	}

	if distance < hc.cfg.BodyRadius {
		// Penetrating: strong repulsion out along the normal, damp
		// velocity, and skip the spring this tick.
		hc.addForce(normal.Mul(hc.cfg.EmergencyForce))
		body.Velocity = body.Velocity.Mul(recoveryDamping)
		return
	}

	heightError := distance - hc.cfg.TargetHeight
	radialSpeed := body.Velocity.Dot(normal)
	magnitude := mgl64.Clamp(
		-heightError*hc.cfg.Stiffness-radialSpeed*hc.cfg.Damping,
		-hc.cfg.MaxForce, hc.cfg.MaxForce)
	hc.addForce(normal.Mul(magnitude))
}

// applyControls rebuilds the local tangent frame, steers, and thrusts.
func (hc *HoverController) applyControls(dt float64) {
	hc.inputMu.Lock()
	input := hc.input
	hc.inputMu.Unlock()

	body := hc.body
	up := core.SafeNormalize(body.Position)

	// Re-orthogonalize the heading against the local up so it never
	// drifts off the tangent plane.
	forward := body.Forward.Sub(up.Mul(body.Forward.Dot(up)))
	if forward.Len() < core.DegenerateEpsilon {
		forward = core.AnyTangent(up)
	}
	forward = forward.Normalize()

	// Steering: torque about up for the physical spin, plus an
	// immediate fixed-rate heading rotation so turning feels
	// responsive regardless of angular momentum.
	steer := 0.0
	if input.Left {
		steer += 1
	}
	if input.Right {
		steer -= 1
	}
	if steer != 0 {
		body.AngularVelocity = body.AngularVelocity.Add(up.Mul(steer * hc.cfg.TurnTorque * dt))
		forward = mgl64.QuatRotate(steer*hc.cfg.TurnRate*dt, up).Rotate(forward)
	}

	// Torque-driven heading drift from accumulated angular velocity.
	spin := body.AngularVelocity.Dot(up)
	if spin != 0 {
		forward = mgl64.QuatRotate(spin*dt, up).Rotate(forward)
	}
	body.Forward = forward.Normalize()

	throttle := 1.0
	if input.Backward {
		throttle = 0.25
	}
	if input.Forward {
		throttle = 1.5
	}
	hc.addForce(body.Forward.Mul(hc.cfg.ThrustForce * throttle))
}

// integrate applies the accumulated force with semi-implicit Euler and
// bleeds off velocity with the damping constants.
func (hc *HoverController) integrate(dt float64) {
	body := hc.body
	body.Velocity = body.Velocity.Add(hc.force.Mul(dt / hc.cfg.Mass))
	body.Velocity = body.Velocity.Mul(1 / (1 + hc.cfg.LinearDamping*dt))
	body.AngularVelocity = body.AngularVelocity.Mul(1 / (1 + hc.cfg.AngularDamping*dt))
	body.Position = body.Position.Add(body.Velocity.Mul(dt))
}

// updateSafePosition records the current position as the recovery
// target, but only while stable: outside the planet and below the
// stability speed. Recovery must never teleport into a bad state.
func (hc *HoverController) updateSafePosition() {
	body := hc.body
	if !body.InsidePlanet && body.Velocity.Len() < hc.cfg.StabilitySpeed {
		body.LastSafePosition = body.Position
	}
}

// recoverFromError restores the last safe position, zeroes both
// velocities, and resets the heading to a default tangent.
func (hc *HoverController) recoverFromError() {
	body := hc.body
	hc.log.Warn().Msg("non-finite body state, recovering to last safe position")
	body.Position = body.LastSafePosition
	body.Velocity = mgl64.Vec3{}
	body.AngularVelocity = mgl64.Vec3{}
	body.Forward = core.AnyTangent(core.SafeNormalize(body.Position))
}

// syncOrientation rebuilds the orthonormal basis exposed to visual
// consumers from the current up and heading, and writes the
// re-orthogonalized heading back so the tangent invariant holds at
// tick boundaries.
func (hc *HoverController) syncOrientation() {
	up := core.SafeNormalize(hc.body.Position)
	forward := hc.body.Forward.Sub(up.Mul(hc.body.Forward.Dot(up)))
	if forward.Len() < core.DegenerateEpsilon {
		forward = core.AnyTangent(up)
	}
	forward = forward.Normalize()
	hc.body.Forward = forward
	right := forward.Cross(up)
	hc.orientation = mgl64.Mat3FromCols(right, up, forward)
}

// addForce accumulates a force for this tick's integration step.
func (hc *HoverController) addForce(f mgl64.Vec3) {
	hc.force = hc.force.Add(f)
}
