package core

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// Planet wraps a generated terrain height field and its display mesh
// behind point-to-surface queries. All state is immutable after
// NewPlanet, so queries are safe from any goroutine.
type Planet struct {
	heights *TerrainHeightField
	mesh    *Mesh
	log     zerolog.Logger

	// refine enables raycasting surface queries against the generated
	// mesh. The analytic radial projection is always the authority;
	// the raycast only corrects for mesh seam precision and every
	// invalid or out-of-range hit falls back to the analytic result.
	refine bool
}

// PlanetOption configures a Planet.
type PlanetOption func(*Planet)

// WithMeshRefinement enables raycast refinement of surface queries
// against the generated mesh.
func WithMeshRefinement() PlanetOption {
	return func(p *Planet) { p.refine = true }
}

// NewPlanet builds the planet surface: the height field plus an
// icosphere mesh displaced by it.
func NewPlanet(hf *TerrainHeightField, subdivisions int, log zerolog.Logger, opts ...PlanetOption) *Planet {
	p := &Planet{
		heights: hf,
		mesh:    BuildPlanetMesh(hf, subdivisions),
		log:     log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Radius returns the nominal planet radius.
func (p *Planet) Radius() float64 {
	return p.heights.Radius()
}

// Heights returns the underlying terrain height field.
func (p *Planet) Heights() *TerrainHeightField {
	return p.heights
}

// Mesh returns the generated display mesh.
func (p *Planet) Mesh() *Mesh {
	return p.mesh
}

// NearestPointOnSurface maps an arbitrary point in space to the nearest
// point on the generated surface by radial projection. The result is
// always finite and within the terrain's elevation bounds; degenerate
// input near the center projects along the fixed default direction.
func (p *Planet) NearestPointOnSurface(point mgl64.Vec3) mgl64.Vec3 {
	if !FiniteVec(point) || point.Len() < DegenerateEpsilon {
		p.log.Debug().Msg("degenerate surface query, using default direction")
		point = defaultDirection
	}
	dir := point.Normalize()
	analytic := dir.Mul(p.Radius() + p.heights.Elevation(dir))

	if !p.refine {
		return analytic
	}

	dist, ok := p.mesh.RaycastFromCenter(dir)
	if !ok || !p.distanceInRange(dist) {
		return analytic
	}
	hit := dir.Mul(dist)
	if !FiniteVec(hit) {
		return analytic
	}
	return hit
}

// distanceInRange checks a raycast distance against the valid surface
// band around the nominal radius.
func (p *Planet) distanceInRange(dist float64) bool {
	r := p.Radius()
	band := p.heights.MaxElevation()
	return dist >= r-band && dist <= r+band
}
