package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlanet(t *testing.T, opts ...PlanetOption) *Planet {
	t.Helper()
	return NewPlanet(testHeightField(t, true), 3, zerolog.Nop(), opts...)
}

func TestNearestPointMatchesAnalyticProjection(t *testing.T) {
	p := testPlanet(t)

	rng := rand.New(rand.NewSource(20))
	for i := 0; i < 500; i++ {
		point := randomDirection(rng).Mul(20 + rng.Float64()*600)
		got := p.NearestPointOnSurface(point)

		dir := point.Normalize()
		want := p.Radius() + p.Heights().Elevation(dir)
		assert.InDelta(t, want, got.Len(), 1e-9)
		assert.InDelta(t, 1.0, got.Normalize().Dot(dir), 1e-12,
			"projection must stay on the query ray")
	}
}

func TestNearestPointDegenerateInput(t *testing.T) {
	p := testPlanet(t)

	for _, point := range []mgl64.Vec3{
		{},
		{1e-9, -1e-9, 0},
		{math.NaN(), 1, 2},
		{math.Inf(1), 0, 0},
	} {
		got := p.NearestPointOnSurface(point)
		require.True(t, FiniteVec(got), "query %v must yield a finite point", point)
		assert.InDelta(t, p.Radius(), got.Len(), p.Heights().MaxElevation()+1e-9)
	}

	// A degenerate point projects along the fixed default direction.
	got := p.NearestPointOnSurface(mgl64.Vec3{})
	assert.InDelta(t, 1.0, got.Normalize().Dot(defaultDirection), 1e-12)
}

func TestNearestPointWithMeshRefinementStaysInRange(t *testing.T) {
	p := testPlanet(t, WithMeshRefinement())
	band := p.Heights().MaxElevation()

	rng := rand.New(rand.NewSource(21))
	for i := 0; i < 100; i++ {
		point := randomDirection(rng).Mul(300)
		got := p.NearestPointOnSurface(point)
		require.True(t, FiniteVec(got))
		require.GreaterOrEqual(t, got.Len(), p.Radius()-band-1e-9)
		require.LessOrEqual(t, got.Len(), p.Radius()+band+1e-9)
	}
}

func TestMeshDisplacedByElevation(t *testing.T) {
	p := testPlanet(t)
	mesh := p.Mesh()
	require.NotEmpty(t, mesh.Vertices)
	require.NotEmpty(t, mesh.Indices)
	require.Zero(t, len(mesh.Indices)%3)

	for _, v := range mesh.Vertices {
		dir := v.Normalize()
		assert.InDelta(t, p.Radius()+p.Heights().Elevation(dir), v.Len(), 1e-9)
	}
}

func TestIcosphereSubdivisionTopology(t *testing.T) {
	// Vertex count for a subdivided icosahedron is 10*4^n + 2.
	for n := 0; n <= 3; n++ {
		vertices, indices := generateIcosphere(n)
		want := 10*int(math.Pow(4, float64(n))) + 2
		assert.Len(t, vertices, want, "level %d", n)
		assert.Len(t, indices, 60*int(math.Pow(4, float64(n))), "level %d", n)
		for _, v := range vertices {
			assert.InDelta(t, 1.0, v.Len(), 1e-12)
		}
	}
}

func TestRaycastFromCenterHitsSurface(t *testing.T) {
	p := testPlanet(t)

	rng := rand.New(rand.NewSource(22))
	for i := 0; i < 50; i++ {
		dir := randomDirection(rng)
		dist, ok := p.Mesh().RaycastFromCenter(dir)
		require.True(t, ok, "a ray from the center must always hit the closed mesh")
		// Mesh triangles chord below the true surface, so allow a
		// coarse-subdivision tolerance.
		assert.InDelta(t, p.Radius(), dist, p.Heights().MaxElevation()+p.Radius()*0.05)
	}
}
