package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCraterConfig() CraterConfig {
	return CraterConfig{
		Count:           500,
		MinSize:         8,
		MaxSize:         40,
		DepthFactor:     0.08,
		RimHeightFactor: 0.6,
	}
}

func TestGenerateCratersParameterBounds(t *testing.T) {
	cfg := testCraterConfig()
	craters := GenerateCraters(cfg, rand.New(rand.NewSource(1)))
	require.Len(t, craters, cfg.Count)

	for _, c := range craters {
		assert.InDelta(t, 1.0, c.Center.Len(), 1e-12, "center must be a unit direction")
		assert.GreaterOrEqual(t, c.Size, cfg.MinSize)
		assert.LessOrEqual(t, c.Size, cfg.MaxSize)
		assert.GreaterOrEqual(t, c.Depth, c.Size*0.07)
		assert.LessOrEqual(t, c.Depth, c.Size*(0.07+cfg.DepthFactor))
		assert.GreaterOrEqual(t, c.RimHeight, c.Depth*0.4)
		assert.LessOrEqual(t, c.RimHeight, c.Depth*(0.4+cfg.RimHeightFactor))
		assert.GreaterOrEqual(t, c.Falloff, 2.0)
		assert.LessOrEqual(t, c.Falloff, 4.0)
	}
}

func TestGenerateCratersNoPoleClustering(t *testing.T) {
	cfg := testCraterConfig()
	cfg.Count = 4000
	craters := GenerateCraters(cfg, rand.New(rand.NewSource(2)))

	// With uniform sphere sampling the polar caps |y| > 0.9 hold 10%
	// of the surface area. Naive theta/phi sampling would put far more
	// centers there.
	polar := 0
	for _, c := range craters {
		if math.Abs(c.Center.Y()) > 0.9 {
			polar++
		}
	}
	fraction := float64(polar) / float64(cfg.Count)
	assert.Greater(t, fraction, 0.06)
	assert.Less(t, fraction, 0.15)
}

func TestInfluenceZeroOutsideAngularRadius(t *testing.T) {
	const radius = 500.0
	crater := Crater{Center: mgl64.Vec3{1, 0, 0}, Size: 60, Depth: 5, RimHeight: 2, Falloff: 3}
	cs := NewCraterSet([]Crater{crater}, radius)

	angular := crater.Size / radius
	for _, mult := range []float64{1.01, 1.5, 4.0, 10.0} {
		a := angular * mult
		dir := mgl64.Vec3{math.Cos(a), math.Sin(a), 0}
		assert.Zero(t, cs.Influence(dir), "angular distance %f must contribute nothing", a)
	}
	assert.Zero(t, cs.Influence(mgl64.Vec3{-1, 0, 0}), "antipode must contribute nothing")
}

func TestInfluenceBowlAndRimProfile(t *testing.T) {
	const radius = 500.0
	crater := Crater{Center: mgl64.Vec3{1, 0, 0}, Size: 60, Depth: 5, RimHeight: 2, Falloff: 3}
	cs := NewCraterSet([]Crater{crater}, radius)
	angular := crater.Size / radius

	dirAt := func(d float64) mgl64.Vec3 {
		a := d * angular
		return mgl64.Vec3{math.Cos(a), math.Sin(a), 0}
	}

	assert.Negative(t, cs.Influence(dirAt(0.0)), "crater floor is a depression")
	assert.Negative(t, cs.Influence(dirAt(0.5)), "interior is a depression")
	assert.Positive(t, cs.Influence(dirAt(0.9)), "rim zone is raised")

	// The bowl fades to zero where the rim begins, and the rim fades
	// back to zero at the crater edge.
	assert.InDelta(t, 0, cs.Influence(dirAt(0.8)), 1e-3)
	assert.InDelta(t, 0, cs.Influence(dirAt(0.999)), 0.05)
}

func TestInfluenceSumsOverlappingCraters(t *testing.T) {
	const radius = 500.0
	crater := Crater{Center: mgl64.Vec3{1, 0, 0}, Size: 60, Depth: 5, RimHeight: 2, Falloff: 3}
	single := NewCraterSet([]Crater{crater}, radius)
	double := NewCraterSet([]Crater{crater, crater}, radius)

	dir := mgl64.Vec3{1, 0, 0}
	assert.InDelta(t, 2*single.Influence(dir), double.Influence(dir), 1e-12)
}

func TestMaxOvershootBoundsInfluence(t *testing.T) {
	craters := GenerateCraters(testCraterConfig(), rand.New(rand.NewSource(3)))
	cs := NewCraterSet(craters, 200)

	bound := cs.MaxOvershoot()
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 2000; i++ {
		dir := randomDirection(rng)
		assert.LessOrEqual(t, math.Abs(cs.Influence(dir)), bound)
	}
}

// randomDirection samples a uniform direction on the unit sphere.
func randomDirection(rng *rand.Rand) mgl64.Vec3 {
	theta := math.Acos(1 - 2*rng.Float64())
	phi := 2 * math.Pi * rng.Float64()
	sinTheta := math.Sin(theta)
	return mgl64.Vec3{sinTheta * math.Cos(phi), math.Cos(theta), sinTheta * math.Sin(phi)}
}
