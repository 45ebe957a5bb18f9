package spline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Polyline is a chain of straight segments through Points. Segment i
// spans the parameter interval [i, i+1].
type Polyline struct {
	Points []r3.Vec
}

// NewPolyline returns a polyline through points. At least two
// points are required and they may not all coincide.
func NewPolyline(points ...r3.Vec) (*Polyline, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("polyline needs 2 points, got %d: %w", len(points), ErrDegenerate)
	}
	p := &Polyline{Points: append([]r3.Vec(nil), points...)}
	if p.LengthBetween(p.ParameterExtents()) == 0 {
		return nil, fmt.Errorf("zero length polyline: %w", ErrDegenerate)
	}
	return p, nil
}

func (p *Polyline) ParameterExtents() (tMin, tMax float64) {
	return 0, float64(len(p.Points) - 1)
}

// segment returns the segment index containing t and the local parameter.
func (p *Polyline) segment(t float64) (int, float64) {
	_, tMax := p.ParameterExtents()
	t = clamp(t, 0, tMax)
	i := int(math.Floor(t))
	if i >= len(p.Points)-1 {
		i = len(p.Points) - 2
	}
	return i, t - float64(i)
}

func (p *Polyline) PointAt(t float64) r3.Vec {
	i, u := p.segment(t)
	return Line{P0: p.Points[i], P1: p.Points[i+1]}.PointAt(u)
}

func (p *Polyline) EndPoints() (start, end r3.Vec) {
	return p.Points[0], p.Points[len(p.Points)-1]
}

func (p *Polyline) TangentAt(t float64) r3.Vec {
	i, _ := p.segment(t)
	return r3.Sub(p.Points[i+1], p.Points[i])
}

func (p *Polyline) LengthBetween(t0, t1 float64) float64 {
	if t1 < t0 {
		return -p.LengthBetween(t1, t0)
	}
	return p.lengthTo(t1) - p.lengthTo(t0)
}

// lengthTo returns the arc length from the start to t.
func (p *Polyline) lengthTo(t float64) float64 {
	i, u := p.segment(t)
	var length float64
	for j := 0; j < i; j++ {
		length += r3.Norm(r3.Sub(p.Points[j+1], p.Points[j]))
	}
	return length + u*r3.Norm(r3.Sub(p.Points[i+1], p.Points[i]))
}

func (p *Polyline) ParameterAtArcLength(t0, s float64) float64 {
	if s <= 0 {
		return t0
	}
	target := p.lengthTo(t0) + s
	var acc float64
	for i := 0; i < len(p.Points)-1; i++ {
		seg := r3.Norm(r3.Sub(p.Points[i+1], p.Points[i]))
		if acc+seg >= target && seg > 0 {
			return math.Max(t0, float64(i)+(target-acc)/seg)
		}
		acc += seg
	}
	_, tMax := p.ParameterExtents()
	return tMax
}
