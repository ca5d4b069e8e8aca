package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DegenerateEpsilon is the length below which a vector has no usable
// direction and the fixed default is substituted instead.
const DegenerateEpsilon = 1e-6

// defaultDirection stands in for degenerate query directions.
var defaultDirection = mgl64.Vec3{1, 0, 0}

// FiniteVec reports whether all components are finite.
func FiniteVec(v mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return false
		}
	}
	return true
}

// SafeNormalize normalizes v, substituting the default direction for
// near-zero or non-finite input rather than dividing by (almost) zero.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	if !FiniteVec(v) {
		return defaultDirection
	}
	l := v.Len()
	if l < DegenerateEpsilon {
		return defaultDirection
	}
	return v.Mul(1 / l)
}

// AnyTangent returns an arbitrary unit vector perpendicular to dir.
func AnyTangent(dir mgl64.Vec3) mgl64.Vec3 {
	axis := mgl64.Vec3{0, 1, 0}
	if math.Abs(dir.Y()) > 0.99 {
		axis = mgl64.Vec3{1, 0, 0}
	}
	return dir.Cross(axis).Normalize()
}
