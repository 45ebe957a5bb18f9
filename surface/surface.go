// Package surface implements surfaces that report outward unit normals at
// points lying on or near them.
package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/gouge/internal/d3"
	"github.com/soypat/gouge/solid"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrOffSurface is returned when a point does not project onto the
	// surface within tolerance.
	ErrOffSurface = errors.New("point does not lie on surface")
	// ErrNoNormal is returned when the normal at a point vanishes.
	ErrNoNormal = errors.New("surface normal vanishes")
)

// Plane is an infinite plane through Origin. Normal need not be unit length.
// If Tolerance is positive NormalAt rejects points farther than Tolerance
// from the plane.
type Plane struct {
	Origin    r3.Vec
	Normal    r3.Vec
	Tolerance float64
}

// NormalAt returns the unit plane normal.
func (pl Plane) NormalAt(p r3.Vec) (r3.Vec, error) {
	n, ok := d3.Unit(pl.Normal, 0)
	if !ok {
		return r3.Vec{}, ErrNoNormal
	}
	if pl.Tolerance > 0 {
		if d := math.Abs(r3.Dot(r3.Sub(p, pl.Origin), n)); d > pl.Tolerance {
			return r3.Vec{}, fmt.Errorf("%v is %g from plane: %w", p, d, ErrOffSurface)
		}
	}
	return n, nil
}

// SDF is the zero level set of a signed distance function. Normals are
// the normalized SDF gradient, which points outward.
type SDF struct {
	s   solid.SDF3
	tol float64
	eps float64
}

// FromSDF returns the boundary surface of s. Points farther than tol from the
// boundary are rejected by NormalAt. A non-positive tol disables the check.
func FromSDF(s solid.SDF3, tol float64) *SDF {
	bb := d3.Box(s.Bounds())
	eps := 1e-6 * math.Max(d3.Max(bb.Size()), 1)
	return &SDF{s: s, tol: tol, eps: eps}
}

// NormalAt returns the outward unit normal of the surface at p.
func (sf *SDF) NormalAt(p r3.Vec) (r3.Vec, error) {
	if d3.IsBad(p) {
		return r3.Vec{}, fmt.Errorf("invalid point %v: %w", p, ErrOffSurface)
	}
	if sf.tol > 0 {
		if d := math.Abs(sf.s.Evaluate(p)); d > sf.tol {
			return r3.Vec{}, fmt.Errorf("%v is %g from surface: %w", p, d, ErrOffSurface)
		}
	}
	n, ok := d3.Unit(solid.Normal3(sf.s, p, sf.eps), 0)
	if !ok {
		return r3.Vec{}, fmt.Errorf("gradient at %v: %w", p, ErrNoNormal)
	}
	return n, nil
}

// drapeSteps bounds the sphere tracing steps of a single Drape ray.
const drapeSteps = 1000

// Drape projects points onto the boundary of s along dir, as a sketch is
// projected onto a face. Every point is traced from outside the bounds of s
// so points may start above, on or inside the body. A point whose ray
// misses the body yields an error wrapping ErrOffSurface.
func Drape(s solid.SDF3, points []r3.Vec, dir r3.Vec) ([]r3.Vec, error) {
	dir, ok := d3.Unit(dir, 0)
	if !ok {
		return nil, errors.New("zero drape direction")
	}
	bb := d3.Box(s.Bounds())
	size := r3.Norm(bb.Size())
	eps := 1e-9 * math.Max(size, 1)
	out := make([]r3.Vec, len(points))
	for i, p := range points {
		back := size + r3.Norm(r3.Sub(p, bb.Center()))
		from := r3.Sub(p, r3.Scale(back, dir))
		hit, t := solid.Raycast3(s, from, dir, eps, 2*back+size, drapeSteps)
		if t < 0 {
			return nil, fmt.Errorf("point %d %v along %v: %w", i, p, dir, ErrOffSurface)
		}
		out[i] = hit
	}
	return out, nil
}
