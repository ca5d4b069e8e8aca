package core

import (
	"math"
	"math/rand"
)

// NoiseField is 3D gradient noise over an integer lattice with a
// seed-shuffled permutation table. Sampling is pure: the same
// coordinates always return the same value, and the quintic fade keeps
// the field continuous across lattice boundaries, which matters because
// the terrain samples it at several frequencies on a continuous sphere.
type NoiseField struct {
	perm [512]int
}

// NewNoiseField creates a noise field for the given seed.
func NewNoiseField(seed int64) *NoiseField {
	nf := &NoiseField{}
	r := rand.New(rand.NewSource(seed))

	p := make([]int, 256)
	for i := range p {
		p[i] = i
	}
	r.Shuffle(256, func(i, j int) { p[i], p[j] = p[j], p[i] })

	for i := 0; i < 512; i++ {
		nf.perm[i] = p[i&255]
	}
	return nf
}

// fade is the quintic smoothing curve 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// grad3 picks one of 12 gradient directions from the hash and returns
// its dot product with (x, y, z).
func grad3(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	if h >= 4 {
		if h == 12 || h == 14 {
			v = x
		} else {
			v = z
		}
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

// Sample returns the noise value at (x, y, z), in [-1, 1].
func (nf *NoiseField) Sample(x, y, z float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	fz := math.Floor(z)

	xi := int(fx) & 255
	yi := int(fy) & 255
	zi := int(fz) & 255

	x -= fx
	y -= fy
	z -= fz

	u := fade(x)
	v := fade(y)
	w := fade(z)

	p := &nf.perm
	a := p[xi] + yi
	aa := p[a] + zi
	ab := p[a+1] + zi
	b := p[xi+1] + yi
	ba := p[b] + zi
	bb := p[b+1] + zi

	return lerp(
		lerp(
			lerp(grad3(p[aa], x, y, z), grad3(p[ba], x-1, y, z), u),
			lerp(grad3(p[ab], x, y-1, z), grad3(p[bb], x-1, y-1, z), u),
			v),
		lerp(
			lerp(grad3(p[aa+1], x, y, z-1), grad3(p[ba+1], x-1, y, z-1), u),
			lerp(grad3(p[ab+1], x, y-1, z-1), grad3(p[bb+1], x-1, y-1, z-1), u),
			v),
		w)
}
