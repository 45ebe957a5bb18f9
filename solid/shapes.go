package solid

import (
	"errors"
	"math"

	"github.com/soypat/gouge/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	errSize   = errors.New("size <= 0")
	errRound  = errors.New("round < 0")
	errRadius = errors.New("radius <= 0")
)

// box is a 3d box centered at the origin.
type box struct {
	size  r3.Vec
	round float64
	bb    r3.Box
}

// Box return an SDF3 for a 3d box centered at the origin
// (rounded corners with round > 0).
func Box(size r3.Vec, round float64) (SDF3, error) {
	switch {
	case size.X <= 0 || size.Y <= 0 || size.Z <= 0:
		return nil, errSize
	case round < 0:
		return nil, errRound
	case 2*round > math.Min(size.X, math.Min(size.Y, size.Z)):
		return nil, errors.New("round exceeds half the smallest box side")
	}
	size = r3.Scale(0.5, size)
	s := box{
		size:  r3.Sub(size, d3.Elem(round)),
		round: round,
		bb:    r3.Box{Min: r3.Scale(-1, size), Max: size},
	}
	return &s, nil
}

// Evaluate returns the minimum distance to a 3d box.
func (s *box) Evaluate(p r3.Vec) float64 {
	return sdfBox3d(p, s.size) - s.round
}

// Bounds returns the bounding box for a 3d box.
func (s *box) Bounds() r3.Box {
	return s.bb
}

// sphere (exact distance field)
type sphere struct {
	radius float64
	bb     r3.Box
}

// Sphere return an SDF3 for a sphere centered at the origin.
func Sphere(radius float64) (SDF3, error) {
	if radius <= 0 {
		return nil, errRadius
	}
	d := d3.Elem(radius)
	s := sphere{
		radius: radius,
		bb:     r3.Box{Min: r3.Scale(-1, d), Max: d},
	}
	return &s, nil
}

// Evaluate returns the minimum distance to a sphere.
func (s *sphere) Evaluate(p r3.Vec) float64 {
	return r3.Norm(p) - s.radius
}

// Bounds returns the bounding box for a sphere.
func (s *sphere) Bounds() r3.Box {
	return s.bb
}

// cylinder is a cylinder along the Z axis (exact distance field).
type cylinder struct {
	height float64
	radius float64
	round  float64
	bb     r3.Box
}

// Cylinder return an SDF3 for a cylinder along Z centered at the origin
// (rounded edges with round > 0).
func Cylinder(height, radius, round float64) (SDF3, error) {
	switch {
	case radius <= 0:
		return nil, errRadius
	case round < 0:
		return nil, errRound
	case round > radius:
		return nil, errors.New("round > radius")
	case height < 2.0*round:
		return nil, errors.New("height < 2 * round")
	}
	s := cylinder{}
	s.height = (height / 2) - round
	s.radius = radius - round
	s.round = round
	d := r3.Vec{X: radius, Y: radius, Z: height / 2}
	s.bb = r3.Box{Min: r3.Scale(-1, d), Max: d}
	return &s, nil
}

// Evaluate returns the minimum distance to a cylinder.
func (s *cylinder) Evaluate(p r3.Vec) float64 {
	d := sdfBox2d(math.Hypot(p.X, p.Y), p.Z, s.radius, s.height)
	return d - s.round
}

// Bounds returns the bounding box for a cylinder.
func (s *cylinder) Bounds() r3.Box {
	return s.bb
}

func sdfBox2d(px, py, sx, sy float64) float64 {
	px, py = math.Abs(px), math.Abs(py)
	dx, dy := px-sx, py-sy
	k := sy - sx
	if dx > 0 && dy > 0 {
		return math.Hypot(dx, dy)
	}
	if py-px > k {
		return dy
	}
	return dx
}

func sdfBox3d(p, s r3.Vec) float64 {
	d := r3.Sub(d3.AbsElem(p), s)
	if d.X > 0 && d.Y > 0 && d.Z > 0 {
		return r3.Norm(d)
	}
	if d.X > 0 && d.Y > 0 {
		return math.Hypot(d.X, d.Y)
	}
	if d.X > 0 && d.Z > 0 {
		return math.Hypot(d.X, d.Z)
	}
	if d.Y > 0 && d.Z > 0 {
		return math.Hypot(d.Y, d.Z)
	}
	if d.X > 0 {
		return d.X
	}
	if d.Y > 0 {
		return d.Y
	}
	if d.Z > 0 {
		return d.Z
	}
	return d3.Max(d)
}
