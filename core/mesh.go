package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is the generated planet surface: displaced vertex positions in
// world units plus triangle indices. It backs the display stream and
// the optional raycast refinement of surface queries.
type Mesh struct {
	Vertices []mgl64.Vec3
	Indices  []int32
}

// BuildPlanetMesh generates an icosphere with the given subdivision
// level and displaces every vertex along its direction by the terrain
// elevation.
func BuildPlanetMesh(hf *TerrainHeightField, subdivisions int) *Mesh {
	vertices, indices := generateIcosphere(subdivisions)

	for i, v := range vertices {
		dir := v.Normalize()
		vertices[i] = dir.Mul(hf.Radius() + hf.Elevation(dir))
	}
	return &Mesh{Vertices: vertices, Indices: indices}
}

// generateIcosphere returns unit-sphere vertices and triangle indices
// for a subdivided icosahedron.
func generateIcosphere(subdivisions int) ([]mgl64.Vec3, []int32) {
	// Golden ratio
	t := (1.0 + math.Sqrt(5.0)) / 2.0

	vertices := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}

	indices := []int32{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	for i := 0; i < subdivisions; i++ {
		vertices, indices = subdivide(vertices, indices)
	}

	for i := range vertices {
		vertices[i] = vertices[i].Normalize()
	}
	return vertices, indices
}

// subdivide splits every triangle into four, caching edge midpoints so
// shared edges reuse the same vertex.
func subdivide(vertices []mgl64.Vec3, indices []int32) ([]mgl64.Vec3, []int32) {
	midpoints := make(map[[2]int32]int32)
	newVertices := make([]mgl64.Vec3, len(vertices))
	copy(newVertices, vertices)
	newIndices := make([]int32, 0, len(indices)*4)

	getMidpoint := func(i1, i2 int32) int32 {
		key := [2]int32{i1, i2}
		if i1 > i2 {
			key = [2]int32{i2, i1}
		}
		if mid, exists := midpoints[key]; exists {
			return mid
		}
		mid := vertices[i1].Add(vertices[i2]).Mul(0.5)
		newVertices = append(newVertices, mid)
		midpoints[key] = int32(len(newVertices) - 1)
		return midpoints[key]
	}

	for i := 0; i < len(indices); i += 3 {
		v1, v2, v3 := indices[i], indices[i+1], indices[i+2]
		m1 := getMidpoint(v1, v2)
		m2 := getMidpoint(v2, v3)
		m3 := getMidpoint(v3, v1)

		newIndices = append(newIndices,
			v1, m1, m3,
			v2, m2, m1,
			v3, m3, m2,
			m1, m2, m3)
	}
	return newVertices, newIndices
}

// RaycastFromCenter intersects a ray from the planet center along dir
// with the mesh and returns the nearest hit distance. ok is false when
// no triangle is hit.
func (m *Mesh) RaycastFromCenter(dir mgl64.Vec3) (dist float64, ok bool) {
	best := math.Inf(1)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		t, hit := rayTriangle(dir,
			m.Vertices[m.Indices[i]],
			m.Vertices[m.Indices[i+1]],
			m.Vertices[m.Indices[i+2]])
		if hit && t < best {
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// rayTriangle is Möller–Trumbore with the ray origin at the planet
// center. Returns the ray parameter t (world distance for a unit dir).
func rayTriangle(dir, v0, v1, v2 mgl64.Vec3) (float64, bool) {
	const eps = 1e-9

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := dir.Cross(edge2)
	a := edge1.Dot(h)
	if a > -eps && a < eps {
		return 0, false
	}

	f := 1.0 / a
	s := v0.Mul(-1) // origin - v0, origin is the center
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	if t <= eps {
		return 0, false
	}
	return t, true
}
