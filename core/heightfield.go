package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// Octave is one frequency band of the base terrain noise.
type Octave struct {
	Frequency float64
	Weight    float64
}

// TerrainConfig holds the terrain shaping parameters. DefaultOctaves
// and the ridge constants are the canonical configuration; the source
// material went through several competing constant sets and these are
// the ones this implementation commits to.
type TerrainConfig struct {
	Radius      float64
	HeightScale float64

	Octaves []Octave

	RidgeFrequency float64
	RidgeSharpness float64
	RidgeWeight    float64
}

// DefaultOctaves returns the three standard frequency bands: large
// landmasses, regional hills, and local detail.
func DefaultOctaves() []Octave {
	return []Octave{
		{Frequency: 1.2, Weight: 1.0},
		{Frequency: 3.5, Weight: 0.45},
		{Frequency: 9.0, Weight: 0.18},
	}
}

// TerrainHeightField maps unit directions from the planet center to a
// signed elevation offset from the nominal radius. It is immutable
// after construction: the same direction always yields a bit-identical
// elevation, and it may be sampled concurrently.
type TerrainHeightField struct {
	cfg     TerrainConfig
	noise   *NoiseField
	craters *CraterSet
	log     zerolog.Logger

	totalWeight float64
}

// NewTerrainHeightField combines a noise field and an optional crater
// set into an elevation field. A zero-value logger disables logging.
func NewTerrainHeightField(cfg TerrainConfig, noise *NoiseField, craters *CraterSet, log zerolog.Logger) *TerrainHeightField {
	if len(cfg.Octaves) == 0 {
		cfg.Octaves = DefaultOctaves()
	}
	total := 0.0
	for _, o := range cfg.Octaves {
		total += o.Weight
	}
	return &TerrainHeightField{
		cfg:         cfg,
		noise:       noise,
		craters:     craters,
		log:         log,
		totalWeight: total,
	}
}

// Radius returns the nominal planet radius.
func (hf *TerrainHeightField) Radius() float64 {
	return hf.cfg.Radius
}

// HeightScale returns the elevation scale as a fraction of the radius.
func (hf *TerrainHeightField) HeightScale() float64 {
	return hf.cfg.HeightScale
}

// Craters returns the crater collection baked into this field, or nil.
func (hf *TerrainHeightField) Craters() []Crater {
	if hf.craters == nil {
		return nil
	}
	return hf.craters.Craters()
}

// MaxElevation returns the bound on |Elevation| over the whole sphere,
// including the crater overshoot tolerance.
func (hf *TerrainHeightField) MaxElevation() float64 {
	bound := hf.cfg.HeightScale * hf.cfg.Radius
	if hf.craters != nil {
		bound += hf.craters.MaxOvershoot()
	}
	return bound
}

// finiteOrZero drops NaN/Inf terms so they never reach geometry.
func (hf *TerrainHeightField) finiteOrZero(v float64, term string) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		hf.log.Debug().Str("term", term).Msg("non-finite terrain term dropped")
		return 0
	}
	return v
}

// Elevation returns the signed elevation at the given direction, in
// world units. The direction is renormalized defensively; results stay
// within ±HeightScale*Radius apart from crater rim/bowl overshoot
// bounded by the crater set's MaxOvershoot.
func (hf *TerrainHeightField) Elevation(dir mgl64.Vec3) float64 {
	dir = SafeNormalize(dir)

	// Base fractal noise across the configured frequency bands,
	// normalized back into [-1, 1].
	sum := 0.0
	for _, o := range hf.cfg.Octaves {
		n := hf.noise.Sample(dir.X()*o.Frequency, dir.Y()*o.Frequency, dir.Z()*o.Frequency)
		sum += hf.finiteOrZero(n, "octave") * o.Weight
	}
	base := sum / hf.totalWeight

	// Ridge term sharpens peaks: fold the noise with abs, invert, and
	// raise to a power so narrow crests survive the blend.
	if hf.cfg.RidgeWeight > 0 {
		f := hf.cfg.RidgeFrequency
		r := math.Abs(hf.noise.Sample(dir.X()*f, dir.Y()*f, dir.Z()*f))
		ridge := math.Pow(1-r, hf.cfg.RidgeSharpness)
		ridge = hf.finiteOrZero(ridge, "ridge")
		base = base*(1-hf.cfg.RidgeWeight) + (ridge*2-1)*hf.cfg.RidgeWeight
	}

	// Smoothstep reshaping biases the histogram toward rounded
	// plateaus and valley floors instead of a raw linear spread.
	t := (base + 1) * 0.5
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	t = t * t * (3 - 2*t)
	elevation := (t*2 - 1) * hf.cfg.HeightScale * hf.cfg.Radius

	if hf.craters != nil {
		elevation += hf.finiteOrZero(hf.craters.Influence(dir), "crater")
	}
	return hf.finiteOrZero(elevation, "elevation")
}

// slopeEpsilon is the angular step, in radians, used for the slope
// estimate.
const slopeEpsilon = 1e-3

// Slope returns an approximate local gradient magnitude at the given
// direction: elevation delta over surface arc distance. It is a coarse
// forward difference meant for shading and camera-tilt decisions, not
// physics.
func (hf *TerrainHeightField) Slope(dir mgl64.Vec3) float64 {
	dir = SafeNormalize(dir)
	tangent := AnyTangent(dir)

	stepped := dir.Add(tangent.Mul(slopeEpsilon)).Normalize()
	delta := hf.Elevation(stepped) - hf.Elevation(dir)
	return math.Abs(delta) / (slopeEpsilon * hf.cfg.Radius)
}
