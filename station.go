package gouge

import (
	"math"

	"github.com/soypat/gouge/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Curve is a parametric 3D curve.
type Curve interface {
	ParameterExtents() (tMin, tMax float64)
	PointAt(t float64) r3.Vec
	EndPoints() (start, end r3.Vec)
	// LengthBetween returns the arc length between two parameters.
	LengthBetween(t0, t1 float64) float64
	// ParameterAtArcLength returns the parameter s units of arc length past t0.
	ParameterAtArcLength(t0, s float64) float64
	// TangentAt returns the curve derivative at t. It need not be unit length.
	TangentAt(t float64) r3.Vec
}

// Surface reports the outward normal at points on it. Implementations
// should return unit normals but callers normalize regardless.
type Surface interface {
	NormalAt(p r3.Vec) (r3.Vec, error)
}

// lengthTol is the length below which vectors are treated as zero.
const lengthTol = 1e-12

// ComputeMidpoint returns the middle parameter of c and the point there. When
// useArcLength is false the parametric midpoint (tMin+tMax)/2 is used,
// otherwise the parameter bisecting the arc length.
func ComputeMidpoint(c Curve, useArcLength bool) (tMid float64, pMid r3.Vec, err error) {
	tMin, tMax := c.ParameterExtents()
	length := c.LengthBetween(tMin, tMax)
	if !(tMax > tMin) || !(length > lengthTol) || math.IsInf(length, 0) {
		return 0, r3.Vec{}, geometryErr(-1, ErrDegenerateCurve, nil)
	}
	if useArcLength {
		tMid = c.ParameterAtArcLength(tMin, length/2)
	} else {
		tMid = (tMin + tMax) / 2
	}
	return tMid, c.PointAt(tMid), nil
}

// ComputeStationNormals evaluates the surface normal at the start, middle
// and end station points. Each evaluation is independent and a failure is
// reported as a *GeometryError of kind ErrNormalUndefined.
func ComputeStationNormals(s Surface, pStart, pMid, pEnd r3.Vec) (nStart, nMid, nEnd r3.Vec, err error) {
	var ns [3]r3.Vec
	for i, p := range [3]r3.Vec{pStart, pMid, pEnd} {
		ns[i], err = stationNormal(s, p, i)
		if err != nil {
			return r3.Vec{}, r3.Vec{}, r3.Vec{}, err
		}
	}
	return ns[0], ns[1], ns[2], nil
}

func stationNormal(s Surface, p r3.Vec, station int) (r3.Vec, error) {
	n, err := s.NormalAt(p)
	if err != nil {
		return r3.Vec{}, geometryErr(station, ErrNormalUndefined, err)
	}
	n, ok := d3.Unit(n, lengthTol)
	if !ok {
		return r3.Vec{}, geometryErr(station, ErrNormalUndefined, nil)
	}
	return n, nil
}

// ComputeDepthPoints offsets each station point into the surface by the tool
// radius: D = P - N*toolRadius. Normals must be unit length.
func ComputeDepthPoints(pStart, pMid, pEnd, nStart, nMid, nEnd r3.Vec, toolRadius float64) (dStart, dMid, dEnd r3.Vec) {
	return depthPoint(pStart, nStart, toolRadius),
		depthPoint(pMid, nMid, toolRadius),
		depthPoint(pEnd, nEnd, toolRadius)
}

func depthPoint(p, n r3.Vec, depth float64) r3.Vec {
	return r3.Sub(p, r3.Scale(depth, n))
}

// Station is a sampled position along the gouged curve.
type Station struct {
	T float64 // curve parameter.
	S float64 // arc length from the curve start.
	U float64 // arc length fraction in [0,1].
	W float64 // taper weight in [0,1], the fraction of full depth cut here.

	P       r3.Vec // point on the curve.
	N       r3.Vec // unit outward surface normal at P.
	D       r3.Vec // full depth point P - N*r.
	Tangent r3.Vec // unit curve tangent at P, the normal of the station plane.
	Contact r3.Vec // rail point P - N*r*W.
	Circle  Circle // profile circle tangent to the rail at Contact.
}

// taperWeight returns the fraction of full depth cut at station i of n.
func taperWeight(i, n int, taper bool) float64 {
	if !taper {
		return 1
	}
	u := float64(i) / float64(n-1)
	return 1 - math.Abs(2*u-1)
}
