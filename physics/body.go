package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// HoverBody is the simulated rigid body owned by a HoverController.
// Forward stays tangent to the local surface; LastSafePosition is the
// most recent stable position and is the recovery target whenever the
// body tunnels into the planet or its state turns non-finite.
type HoverBody struct {
	Position         mgl64.Vec3
	Velocity         mgl64.Vec3
	AngularVelocity  mgl64.Vec3
	Forward          mgl64.Vec3
	LastSafePosition mgl64.Vec3
	InsidePlanet     bool
}

// InputState is the steering snapshot read once per tick. It is a plain
// value replaced wholesale by SetControlState; nothing in the update
// path captures live input.
type InputState struct {
	Left     bool
	Right    bool
	Forward  bool
	Backward bool
}
