package spline

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Line is the straight segment from P0 to P1 parametrized on [0,1].
type Line struct {
	P0, P1 r3.Vec
}

func (l Line) ParameterExtents() (tMin, tMax float64) { return 0, 1 }

func (l Line) PointAt(t float64) r3.Vec {
	return r3.Add(l.P0, r3.Scale(t, r3.Sub(l.P1, l.P0)))
}

func (l Line) EndPoints() (start, end r3.Vec) { return l.P0, l.P1 }

func (l Line) TangentAt(float64) r3.Vec { return r3.Sub(l.P1, l.P0) }

func (l Line) LengthBetween(t0, t1 float64) float64 {
	return (t1 - t0) * r3.Norm(r3.Sub(l.P1, l.P0))
}

func (l Line) ParameterAtArcLength(t0, s float64) float64 {
	length := r3.Norm(r3.Sub(l.P1, l.P0))
	if length == 0 {
		return t0
	}
	return clamp(t0+s/length, t0, 1)
}
