package core

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Crater is one impact crater on the planet surface. All fields are
// fixed at generation time. Size is the crater's surface arc-length
// extent in world units, so its angular radius scales with the planet.
type Crater struct {
	Center    mgl64.Vec3
	Size      float64
	Depth     float64
	RimHeight float64
	Falloff   float64
}

// CraterConfig controls crater generation.
type CraterConfig struct {
	Count           int
	MinSize         float64
	MaxSize         float64
	DepthFactor     float64
	RimHeightFactor float64
}

// sizeBiasExponent biases crater sizes toward the small end of the
// [MinSize, MaxSize] range.
const sizeBiasExponent = 0.7

// Boundary between the bowl and the raised rim, as a fraction of the
// crater's angular radius.
const rimStart = 0.8

// GenerateCraters creates cfg.Count craters with centers distributed
// uniformly over the unit sphere. Latitude is sampled with an inverse
// cosine so craters do not cluster at the poles.
func GenerateCraters(cfg CraterConfig, rng *rand.Rand) []Crater {
	craters := make([]Crater, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		theta := math.Acos(1 - 2*rng.Float64())
		phi := 2 * math.Pi * rng.Float64()
		sinTheta := math.Sin(theta)
		center := mgl64.Vec3{
			sinTheta * math.Cos(phi),
			math.Cos(theta),
			sinTheta * math.Sin(phi),
		}

		size := cfg.MinSize + math.Pow(rng.Float64(), sizeBiasExponent)*(cfg.MaxSize-cfg.MinSize)
		depth := size * (0.07 + rng.Float64()*cfg.DepthFactor)
		rimHeight := depth * (0.4 + rng.Float64()*cfg.RimHeightFactor)
		falloff := 2.0 + rng.Float64()*2.0

		craters = append(craters, Crater{
			Center:    center,
			Size:      size,
			Depth:     depth,
			RimHeight: rimHeight,
			Falloff:   falloff,
		})
	}
	return craters
}

// CraterSet evaluates the combined elevation contribution of a fixed
// crater collection. It precomputes per-crater angular radii and their
// cosines so the per-sample hot path can reject distant craters with a
// single dot product before touching any trig.
type CraterSet struct {
	craters    []Crater
	angular    []float64 // angular radius of each crater
	cosAngular []float64
	overshoot  float64
}

// NewCraterSet builds a CraterSet for craters on a planet of the given
// radius. The slice is not copied; callers must not mutate it afterward.
func NewCraterSet(craters []Crater, radius float64) *CraterSet {
	cs := &CraterSet{
		craters:    craters,
		angular:    make([]float64, len(craters)),
		cosAngular: make([]float64, len(craters)),
	}
	for i := range craters {
		cs.angular[i] = craters[i].Size / radius
		cs.cosAngular[i] = math.Cos(cs.angular[i])
	}
	cs.overshoot = cs.computeOvershoot()
	return cs
}

// Craters returns the underlying crater collection.
func (cs *CraterSet) Craters() []Crater {
	return cs.craters
}

// Influence returns the summed elevation contribution of all craters at
// the given unit direction, in world units. Directions inside a
// crater's bowl contribute a negative (depression) term, the rim band a
// positive one; everything outside a crater's angular radius
// contributes exactly zero.
func (cs *CraterSet) Influence(dir mgl64.Vec3) float64 {
	total := 0.0
	for i := range cs.craters {
		c := &cs.craters[i]

		// Cheap rejection: dot < cos(angularRadius) means the sample
		// is outside this crater entirely.
		cosAng := dir.Dot(c.Center)
		if cosAng < cs.cosAngular[i] {
			continue
		}
		if cosAng > 1 {
			cosAng = 1
		}

		d := math.Acos(cosAng) / cs.angular[i]
		if d >= 1 {
			continue
		}
		if d < rimStart {
			total -= c.Depth * math.Pow(math.Cos(d*math.Pi*0.625), c.Falloff)
		} else {
			rimFactor := (d - rimStart) / (1 - rimStart)
			total += c.RimHeight * math.Sin(rimFactor*math.Pi)
		}
	}
	return total
}

// MaxOvershoot returns a conservative bound on |Influence| anywhere on
// the sphere, used as the tolerance on the terrain's elevation bound.
func (cs *CraterSet) MaxOvershoot() float64 {
	return cs.overshoot
}

// computeOvershoot bounds the stacked contribution of overlapping
// craters: for each crater, its own worst case plus that of every
// crater whose angular extent overlaps it, maximized over all craters.
func (cs *CraterSet) computeOvershoot() float64 {
	worst := func(i int) float64 {
		if cs.craters[i].RimHeight > cs.craters[i].Depth {
			return cs.craters[i].RimHeight
		}
		return cs.craters[i].Depth
	}

	bound := 0.0
	for i := range cs.craters {
		total := worst(i)
		for j := range cs.craters {
			if j == i {
				continue
			}
			cosDist := cs.craters[i].Center.Dot(cs.craters[j].Center)
			if cosDist > 1 {
				cosDist = 1
			} else if cosDist < -1 {
				cosDist = -1
			}
			if math.Acos(cosDist) < cs.angular[i]+cs.angular[j] {
				total += worst(j)
			}
		}
		if total > bound {
			bound = total
		}
	}
	return bound
}
