package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Geographic is a position in geographic coordinates over the planet.
// Y points to the north pole; X points to 0° longitude at the equator.
type Geographic struct {
	Lat float64 // Latitude in radians [-π/2, π/2], positive = north
	Lon float64 // Longitude in radians [-π, π], positive = east
	Alt float64 // Altitude above the nominal radius
}

// ToGeographic converts a world position into geographic coordinates
// relative to the given nominal radius.
func ToGeographic(p mgl64.Vec3, radius float64) Geographic {
	r := p.Len()
	if r < DegenerateEpsilon {
		return Geographic{Lat: 0, Lon: 0, Alt: -radius}
	}
	return Geographic{
		Lat: math.Asin(p.Y() / r),
		Lon: math.Atan2(p.Z(), p.X()),
		Alt: r - radius,
	}
}

// FromGeographic converts geographic coordinates back into a world
// position.
func FromGeographic(g Geographic, radius float64) mgl64.Vec3 {
	r := radius + g.Alt
	cosLat := math.Cos(g.Lat)
	return mgl64.Vec3{
		r * cosLat * math.Cos(g.Lon),
		r * math.Sin(g.Lat),
		r * cosLat * math.Sin(g.Lon),
	}
}
