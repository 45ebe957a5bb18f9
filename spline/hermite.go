package spline

import (
	"fmt"

	"github.com/soypat/gouge/internal/d3"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r3"
)

// Hermite is a C1 piecewise cubic curve interpolating a sequence of
// points. It is parametrized by cumulative chord length so its speed is
// close to one.
type Hermite struct {
	x, y, z interp.PiecewiseCubic
	ts      []float64
	points  []r3.Vec
}

// NewHermite returns a smooth curve through points. Interior tangents
// follow the Catmull-Rom rule. startTangent and endTangent fix the
// direction at the ends when non-zero, otherwise one sided differences
// are used.
func NewHermite(points []r3.Vec, startTangent, endTangent r3.Vec) (*Hermite, error) {
	n := len(points)
	if n < 2 {
		return nil, fmt.Errorf("hermite needs 2 points, got %d: %w", n, ErrDegenerate)
	}
	if d3.IsBad(points[0]) {
		return nil, fmt.Errorf("invalid first point %v: %w", points[0], ErrDegenerate)
	}
	ts := make([]float64, n)
	for i := 1; i < n; i++ {
		d := r3.Norm(r3.Sub(points[i], points[i-1]))
		if d == 0 || d3.IsBad(points[i]) {
			return nil, fmt.Errorf("invalid chord between points %d and %d: %w", i-1, i, ErrDegenerate)
		}
		ts[i] = ts[i-1] + d
	}
	tangents := make([]r3.Vec, n)
	for i := 1; i < n-1; i++ {
		tangents[i] = r3.Scale(1/(ts[i+1]-ts[i-1]), r3.Sub(points[i+1], points[i-1]))
	}
	tangents[0] = r3.Scale(1/ts[1], r3.Sub(points[1], points[0]))
	tangents[n-1] = r3.Scale(1/(ts[n-1]-ts[n-2]), r3.Sub(points[n-1], points[n-2]))
	if u, ok := d3.Unit(startTangent, 1e-12); ok {
		tangents[0] = u
	}
	if u, ok := d3.Unit(endTangent, 1e-12); ok {
		tangents[n-1] = u
	}

	xs, ys, zs := make([]float64, n), make([]float64, n), make([]float64, n)
	dxs, dys, dzs := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, p := range points {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
		dxs[i], dys[i], dzs[i] = tangents[i].X, tangents[i].Y, tangents[i].Z
	}
	h := &Hermite{ts: ts, points: append([]r3.Vec(nil), points...)}
	h.x.FitWithDerivatives(ts, xs, dxs)
	h.y.FitWithDerivatives(ts, ys, dys)
	h.z.FitWithDerivatives(ts, zs, dzs)
	return h, nil
}

// Knots returns the parameters at which the curve passes through its
// interpolation points.
func (h *Hermite) Knots() []float64 { return append([]float64(nil), h.ts...) }

func (h *Hermite) ParameterExtents() (tMin, tMax float64) {
	return 0, h.ts[len(h.ts)-1]
}

func (h *Hermite) PointAt(t float64) r3.Vec {
	return r3.Vec{X: h.x.Predict(t), Y: h.y.Predict(t), Z: h.z.Predict(t)}
}

func (h *Hermite) EndPoints() (start, end r3.Vec) {
	return h.points[0], h.points[len(h.points)-1]
}

func (h *Hermite) TangentAt(t float64) r3.Vec {
	return r3.Vec{X: h.x.PredictDerivative(t), Y: h.y.PredictDerivative(t), Z: h.z.PredictDerivative(t)}
}

func (h *Hermite) LengthBetween(t0, t1 float64) float64 {
	return integrateSpeed(h.TangentAt, h.ts[1:len(h.ts)-1], t0, t1)
}

func (h *Hermite) ParameterAtArcLength(t0, s float64) float64 {
	return parameterAtArcLength(h, t0, s)
}
