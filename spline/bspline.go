package spline

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// BSpline is a clamped B-spline curve, rational when weights are set.
// The curve is parametrized over [knots[degree], knots[len(ctrl)]].
type BSpline struct {
	degree  int
	ctrl    []r3.Vec
	weights []float64
	knots   []float64
	breaks  []float64 // distinct interior knots.
}

// NewBSpline returns a B-spline of the given degree. If knots is nil a
// clamped uniform knot vector over [0,1] is used. If weights is nil the
// curve is polynomial (non-rational).
func NewBSpline(degree int, ctrl []r3.Vec, weights, knots []float64) (*BSpline, error) {
	n := len(ctrl)
	switch {
	case degree < 1:
		return nil, errors.New("degree must be at least 1")
	case n < degree+1:
		return nil, fmt.Errorf("degree %d needs %d control points, got %d", degree, degree+1, n)
	case weights != nil && len(weights) != n:
		return nil, fmt.Errorf("got %d weights for %d control points", len(weights), n)
	case knots != nil && len(knots) != n+degree+1:
		return nil, fmt.Errorf("got %d knots, want %d", len(knots), n+degree+1)
	}
	for i, w := range weights {
		if !(w > 0) {
			return nil, fmt.Errorf("weight %d is %g, must be positive", i, w)
		}
	}
	if knots == nil {
		knots = clampedUniformKnots(n, degree)
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] {
			return nil, errors.New("knots must be non-decreasing")
		}
	}
	for i := 1; i <= degree; i++ {
		if knots[i] != knots[0] || knots[len(knots)-1-i] != knots[len(knots)-1] {
			return nil, errors.New("knot vector must be clamped")
		}
	}
	if knots[degree] == knots[n] {
		return nil, fmt.Errorf("empty parameter domain: %w", ErrDegenerate)
	}
	b := &BSpline{
		degree: degree,
		ctrl:   append([]r3.Vec(nil), ctrl...),
		knots:  append([]float64(nil), knots...),
	}
	if weights != nil {
		b.weights = append([]float64(nil), weights...)
	}
	for i := degree + 1; i < n; i++ {
		if k := b.knots[i]; len(b.breaks) == 0 || b.breaks[len(b.breaks)-1] != k {
			b.breaks = append(b.breaks, k)
		}
	}
	return b, nil
}

// Interpolate returns a B-spline of the given degree passing through all
// points. Parameters are assigned by chord length and knots by averaging.
// The degree is lowered when there are too few points for it.
func Interpolate(points []r3.Vec, degree int) (*BSpline, error) {
	n := len(points)
	if n < 2 {
		return nil, fmt.Errorf("interpolation needs 2 points, got %d: %w", n, ErrDegenerate)
	}
	if degree < 1 {
		return nil, errors.New("degree must be at least 1")
	}
	if degree > n-1 {
		degree = n - 1
	}
	params := make([]float64, n)
	var total float64
	for i := 1; i < n; i++ {
		d := r3.Norm(r3.Sub(points[i], points[i-1]))
		if d == 0 {
			return nil, fmt.Errorf("coincident points %d and %d: %w", i-1, i, ErrDegenerate)
		}
		total += d
		params[i] = total
	}
	for i := range params {
		params[i] /= total
	}
	params[n-1] = 1

	knots := make([]float64, n+degree+1)
	for i := n; i < len(knots); i++ {
		knots[i] = 1
	}
	for j := 1; j < n-degree; j++ {
		var sum float64
		for i := j; i < j+degree; i++ {
			sum += params[i]
		}
		knots[j+degree] = sum / float64(degree)
	}

	a := mat.NewDense(n, n, nil)
	rhs := mat.NewDense(n, 3, nil)
	basis := make([]float64, degree+1)
	for i, u := range params {
		span := findSpan(knots, n, degree, u)
		basisFuncs(knots, span, degree, u, basis)
		for j, v := range basis {
			a.Set(i, span-degree+j, v)
		}
		rhs.Set(i, 0, points[i].X)
		rhs.Set(i, 1, points[i].Y)
		rhs.Set(i, 2, points[i].Z)
	}
	var sol mat.Dense
	if err := sol.Solve(a, rhs); err != nil {
		return nil, fmt.Errorf("solving interpolation system: %w", err)
	}
	ctrl := make([]r3.Vec, n)
	for i := range ctrl {
		ctrl[i] = r3.Vec{X: sol.At(i, 0), Y: sol.At(i, 1), Z: sol.At(i, 2)}
	}
	return NewBSpline(degree, ctrl, nil, knots)
}

// Degree returns the polynomial degree of the curve.
func (b *BSpline) Degree() int { return b.degree }

// ControlPoints returns a copy of the control polygon.
func (b *BSpline) ControlPoints() []r3.Vec { return append([]r3.Vec(nil), b.ctrl...) }

func (b *BSpline) ParameterExtents() (tMin, tMax float64) {
	return b.knots[b.degree], b.knots[len(b.ctrl)]
}

func (b *BSpline) PointAt(t float64) r3.Vec {
	p, _ := b.eval(t)
	return p
}

func (b *BSpline) EndPoints() (start, end r3.Vec) {
	t0, t1 := b.ParameterExtents()
	return b.PointAt(t0), b.PointAt(t1)
}

func (b *BSpline) TangentAt(t float64) r3.Vec {
	_, d := b.eval(t)
	return d
}

func (b *BSpline) LengthBetween(t0, t1 float64) float64 {
	return integrateSpeed(b.TangentAt, b.breaks, t0, t1)
}

func (b *BSpline) ParameterAtArcLength(t0, s float64) float64 {
	return parameterAtArcLength(b, t0, s)
}

// eval returns the point and first derivative at t.
func (b *BSpline) eval(t float64) (pt, deriv r3.Vec) {
	tMin, tMax := b.ParameterExtents()
	t = clamp(t, tMin, tMax)
	n := len(b.ctrl)
	span := findSpan(b.knots, n, b.degree, t)
	var ders [2][]float64
	ders[0] = make([]float64, b.degree+1)
	ders[1] = make([]float64, b.degree+1)
	basisDerivs(b.knots, span, b.degree, t, &ders)

	// homogeneous sums: a = sum N w P, w = sum N w.
	var a, da r3.Vec
	var w, dw float64
	for j := 0; j <= b.degree; j++ {
		i := span - b.degree + j
		wi := 1.0
		if b.weights != nil {
			wi = b.weights[i]
		}
		pw := r3.Scale(wi, b.ctrl[i])
		a = r3.Add(a, r3.Scale(ders[0][j], pw))
		da = r3.Add(da, r3.Scale(ders[1][j], pw))
		w += ders[0][j] * wi
		dw += ders[1][j] * wi
	}
	pt = r3.Scale(1/w, a)
	deriv = r3.Scale(1/w, r3.Sub(da, r3.Scale(dw, pt)))
	return pt, deriv
}

func clampedUniformKnots(n, degree int) []float64 {
	knots := make([]float64, n+degree+1)
	inner := n - degree
	for i := range knots {
		switch {
		case i <= degree:
			knots[i] = 0
		case i >= n:
			knots[i] = 1
		default:
			knots[i] = float64(i-degree) / float64(inner)
		}
	}
	return knots
}

// findSpan returns the knot span index containing u for a curve with n
// control points.
func findSpan(knots []float64, n, degree int, u float64) int {
	if u >= knots[n] {
		// last non-empty span.
		i := n - 1
		for i > degree && knots[i] == knots[i+1] {
			i--
		}
		return i
	}
	if u <= knots[degree] {
		return degree
	}
	lo, hi := degree, n
	mid := (lo + hi) / 2
	for u < knots[mid] || u >= knots[mid+1] {
		if u < knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
		mid = (lo + hi) / 2
	}
	return mid
}

// basisFuncs computes the degree+1 non-vanishing basis functions at u.
func basisFuncs(knots []float64, span, degree int, u float64, dst []float64) {
	left := make([]float64, degree+1)
	right := make([]float64, degree+1)
	dst[0] = 1
	for j := 1; j <= degree; j++ {
		left[j] = u - knots[span+1-j]
		right[j] = knots[span+j] - u
		var saved float64
		for r := 0; r < j; r++ {
			tmp := dst[r] / (right[r+1] + left[j-r])
			dst[r] = saved + right[r+1]*tmp
			saved = left[j-r] * tmp
		}
		dst[j] = saved
	}
}

// basisDerivs computes the non-vanishing basis functions and their first
// derivatives at u.
func basisDerivs(knots []float64, span, degree int, u float64, ders *[2][]float64) {
	basisFuncs(knots, span, degree, u, ders[0])
	for j := range ders[1] {
		ders[1][j] = 0
	}
	if degree == 0 {
		return
	}
	// derivative from the degree-1 basis: N'_{i,p} = p/(u_{i+p}-u_i) N_{i,p-1} - p/(u_{i+p+1}-u_{i+1}) N_{i+1,p-1}.
	lower := make([]float64, degree)
	basisFuncs(knots, span, degree-1, u, lower)
	p := float64(degree)
	for j := 0; j <= degree; j++ {
		i := span - degree + j
		if j > 0 {
			if den := knots[i+degree] - knots[i]; den != 0 {
				ders[1][j] += p / den * lower[j-1]
			}
		}
		if j < degree {
			if den := knots[i+degree+1] - knots[i+1]; den != 0 {
				ders[1][j] -= p / den * lower[j]
			}
		}
	}
}
