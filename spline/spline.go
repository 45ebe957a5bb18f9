// Package spline implements parametric 3D curves: lines, polylines,
// clamped (optionally rational) B-splines with global point interpolation
// and Hermite interpolants. All curves support arc length queries.
package spline

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"
)

// ErrDegenerate is returned when a curve can not be constructed from
// the given points, for example when all points coincide.
var ErrDegenerate = errors.New("degenerate curve")

const (
	// quadrature points per panel.
	legendrePoints = 16
	// relative agreement required between a panel and its two halves.
	quadAccuracy = 1e-13
	// maximum panel bisections.
	quadMaxDepth = 16
	// arc length inversion accuracy relative to total length.
	arcLengthAccuracy = 1e-12
)

// lengther is the subset of curve queries needed to invert arc length.
type lengther interface {
	ParameterExtents() (tMin, tMax float64)
	LengthBetween(t0, t1 float64) float64
}

// integrateSpeed integrates |deriv(t)| over [t0,t1] splitting the domain
// at breaks so each quadrature runs over a smooth piece.
func integrateSpeed(deriv func(float64) r3.Vec, breaks []float64, t0, t1 float64) float64 {
	if t0 == t1 {
		return 0
	}
	sign := 1.0
	if t1 < t0 {
		t0, t1 = t1, t0
		sign = -1
	}
	speed := func(t float64) float64 { return r3.Norm(deriv(t)) }
	var length float64
	lo := t0
	for _, b := range breaks {
		if b <= lo {
			continue
		}
		if b >= t1 {
			break
		}
		length += adaptiveLegendre(speed, lo, b)
		lo = b
	}
	length += adaptiveLegendre(speed, lo, t1)
	return sign * length
}

// adaptiveLegendre integrates f over [a,b], bisecting panels until the
// panel estimate and the sum of its halves agree.
func adaptiveLegendre(f func(float64) float64, a, b float64) float64 {
	whole := quad.Fixed(f, a, b, legendrePoints, quad.Legendre{}, 0)
	return adaptiveStep(f, a, b, whole, quadMaxDepth)
}

func adaptiveStep(f func(float64) float64, a, b, whole float64, depth int) float64 {
	m := (a + b) / 2
	left := quad.Fixed(f, a, m, legendrePoints, quad.Legendre{}, 0)
	right := quad.Fixed(f, m, b, legendrePoints, quad.Legendre{}, 0)
	halves := left + right
	if depth == 0 || math.Abs(halves-whole) <= quadAccuracy*math.Abs(halves) || m == a || m == b {
		return halves
	}
	return adaptiveStep(f, a, m, left, depth-1) + adaptiveStep(f, m, b, right, depth-1)
}

// parameterAtArcLength returns the parameter t >= t0 such that
// c.LengthBetween(t0, t) == s. Results are clamped to the curve extents.
func parameterAtArcLength(c lengther, t0, s float64) float64 {
	_, tMax := c.ParameterExtents()
	if s <= 0 || t0 >= tMax {
		return t0
	}
	total := c.LengthBetween(t0, tMax)
	if s >= total {
		return tMax
	}
	f := func(t float64) float64 { return c.LengthBetween(t0, t) - s }
	eps := math.Max(arcLengthAccuracy*(tMax-t0), 1e-15)
	return curve.SolveITP(f, t0, tMax, eps, 1, 0.2/(tMax-t0), -s, total-s)
}

func clamp(x, a, b float64) float64 {
	return math.Max(a, math.Min(b, x))
}
