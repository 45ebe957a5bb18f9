package spline

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"
)

// Evaluator is a curve that can be sampled by parameter.
type Evaluator interface {
	ParameterExtents() (tMin, tMax float64)
	PointAt(t float64) r3.Vec
}

const (
	nearestSamples    = 64
	goldenIterations  = 60
	invGoldenRatio    = 0.6180339887498949
	nearestParamAccur = 1e-13
)

// Nearest returns the parameter of the point on c closest to p and the
// distance to it. The curve is sampled uniformly in parameter, the best
// bracket is refined with golden section search on the squared distance
// and the result is polished by solving (C(t)-p)·C'(t) = 0.
func Nearest(c Evaluator, p r3.Vec) (t, dist float64) {
	t, _, a, b := nearest(c, func(q r3.Vec) float64 { return r3.Norm2(r3.Sub(q, p)) })
	t = polishNearest(c, p, t, a, b)
	return t, r3.Norm(r3.Sub(c.PointAt(t), p))
}

// NearestFunc minimizes an arbitrary non-negative distance function over
// the points of c. It returns the minimizing parameter and the minimum.
func NearestFunc(c Evaluator, distance func(r3.Vec) float64) (t, dist float64) {
	t, dist, _, _ = nearest(c, distance)
	return t, dist
}

// nearest returns the minimizer of distance along c, its value and the
// sampling bracket [a,b] the minimizer was searched in.
func nearest(c Evaluator, distance func(r3.Vec) float64) (t, dist, a, b float64) {
	tMin, tMax := c.ParameterExtents()
	step := (tMax - tMin) / nearestSamples
	best := 0
	dist = math.Inf(1)
	for i := 0; i <= nearestSamples; i++ {
		d := distance(c.PointAt(tMin + float64(i)*step))
		if d < dist {
			best, dist = i, d
		}
	}
	a = tMin + float64(max(best-1, 0))*step
	b = tMin + float64(min(best+1, nearestSamples))*step
	f := func(t float64) float64 { return distance(c.PointAt(t)) }
	t = tMin + float64(best)*step
	if tt, d := goldenSection(f, a, b); d < dist {
		t, dist = tt, d
	}
	return t, dist, a, b
}

// polishNearest finds the stationary point of the squared distance from p
// inside [a,b]. It returns t unchanged when the bracket holds no sign
// change, as happens when the nearest point is a curve end.
func polishNearest(c Evaluator, p r3.Vec, t, a, b float64) float64 {
	tan, ok := c.(interface{ TangentAt(float64) r3.Vec })
	tMin, tMax := c.ParameterExtents()
	h := 1e-7 * (tMax - tMin)
	g := func(t float64) float64 {
		var d r3.Vec
		if ok {
			d = tan.TangentAt(t)
		} else {
			d = r3.Scale(1/(2*h), r3.Sub(c.PointAt(t+h), c.PointAt(t-h)))
		}
		return r3.Dot(r3.Sub(c.PointAt(t), p), d)
	}
	ga, gb := g(a), g(b)
	if !(ga < 0 && gb > 0) {
		return t
	}
	return curve.SolveITP(g, a, b, nearestParamAccur*(tMax-tMin), 1, 0.2/(b-a), ga, gb)
}

func goldenSection(f func(float64) float64, a, b float64) (float64, float64) {
	x1 := b - invGoldenRatio*(b-a)
	x2 := a + invGoldenRatio*(b-a)
	f1, f2 := f(x1), f(x2)
	for i := 0; i < goldenIterations && b-a > nearestParamAccur; i++ {
		if f1 < f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - invGoldenRatio*(b-a)
			f1 = f(x1)
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + invGoldenRatio*(b-a)
			f2 = f(x2)
		}
	}
	if f1 < f2 {
		return x1, f1
	}
	return x2, f2
}

// Sample returns n points of c evenly spaced in parameter, including
// both ends. n must be at least 2.
func Sample(c Evaluator, n int) []r3.Vec {
	tMin, tMax := c.ParameterExtents()
	pts := make([]r3.Vec, n)
	for i := range pts {
		pts[i] = c.PointAt(tMin + (tMax-tMin)*float64(i)/float64(n-1))
	}
	return pts
}
