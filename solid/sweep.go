package solid

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/gouge/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateSweep is returned by Sweep when the path or radii can not
// describe a tool sweep.
var ErrDegenerateSweep = errors.New("degenerate sweep")

// sweep is the volume swept by a ball of varying radius moving along
// a polyline of ball centers.
type sweep struct {
	centers []r3.Vec
	radii   []float64
	bb      r3.Box
}

// Sweep returns the volume swept by a ball whose center travels along
// centers. radii[i] is the ball radius at centers[i] and is interpolated
// linearly between consecutive centers.
func Sweep(centers []r3.Vec, radii []float64) (SDF3, error) {
	switch {
	case len(centers) == 0:
		return nil, fmt.Errorf("no centers: %w", ErrDegenerateSweep)
	case len(centers) != len(radii):
		return nil, fmt.Errorf("got %d centers and %d radii: %w", len(centers), len(radii), ErrDegenerateSweep)
	}
	s := sweep{
		centers: append([]r3.Vec(nil), centers...),
		radii:   append([]float64(nil), radii...),
	}
	var bb d3.Box
	for i, c := range s.centers {
		r := s.radii[i]
		if d3.IsBad(c) {
			return nil, fmt.Errorf("center %d is %v: %w", i, c, ErrDegenerateSweep)
		}
		if !(r > 0) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("radius %d is %g: %w", i, r, ErrDegenerateSweep)
		}
		cb := d3.NewBox(c, d3.Elem(2*r))
		if i == 0 {
			bb = cb
		} else {
			bb = bb.Extend(cb)
		}
	}
	s.bb = r3.Box(bb)
	return &s, nil
}

// Evaluate returns the minimum distance to the swept volume.
func (s *sweep) Evaluate(p r3.Vec) float64 {
	if len(s.centers) == 1 {
		return r3.Norm(r3.Sub(p, s.centers[0])) - s.radii[0]
	}
	d := math.Inf(1)
	for i := 1; i < len(s.centers); i++ {
		d = math.Min(d, roundCone(p, s.centers[i-1], s.centers[i], s.radii[i-1], s.radii[i]))
	}
	return d
}

// Bounds returns the bounding box of the swept volume.
func (s *sweep) Bounds() r3.Box {
	return s.bb
}

// roundCone returns the distance from p to a capsule whose radius varies
// linearly from ra at a to rb at b.
func roundCone(p, a, b r3.Vec, ra, rb float64) float64 {
	ab := r3.Sub(b, a)
	ap := r3.Sub(p, a)
	l2 := r3.Norm2(ab)
	var h float64
	if l2 > 0 {
		h = math.Max(0, math.Min(1, r3.Dot(ap, ab)/l2))
	}
	q := r3.Sub(ap, r3.Scale(h, ab))
	return r3.Norm(q) - (ra + h*(rb-ra))
}
