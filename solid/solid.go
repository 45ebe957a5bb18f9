// Package solid implements signed distance function (SDF) solids used as
// the bodies a gouge is cut into and as the swept ball-end tool.
package solid

import (
	"math"
	"strconv"

	"github.com/soypat/gouge/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF3 is the interface to a 3d signed distance function object.
type SDF3 interface {
	// Evaluate takes a point in 3D space as input and returns
	// the minimum distance of the SDF3 to the point. The distance
	// is negative if the point is contained within the SDF3.
	Evaluate(p r3.Vec) float64
	// Bounds returns the bounding box that completely contains
	// the SDF3.
	Bounds() r3.Box
}

// SDF3Diff is a difference whose blending of the two operands can be
// changed.
type SDF3Diff interface {
	SDF3
	SetMax(MaxFunc)
}

// MinFunc is a minimum functions for SDF blending.
type MinFunc func(a, b float64) float64

// MaxFunc is a maximum function for SDF blending.
type MaxFunc func(a, b float64) float64

// RoundMin returns a minimum function that uses a quarter-circle to join the two objects smoothly.
func RoundMin(k float64) MinFunc {
	return func(a, b float64) float64 {
		u := d3.MaxElem(r3.Vec{X: k - a, Y: k - b}, r3.Vec{})
		return math.Max(k, math.Min(a, b)) - math.Hypot(u.X, u.Y)
	}
}

// RoundMax returns a maximum function that rounds the edges where the two
// objects meet with radius k. Used on a difference it softens the rims
// left by the subtracted object.
func RoundMax(k float64) MaxFunc {
	round := RoundMin(k)
	return func(a, b float64) float64 {
		return -round(-a, -b)
	}
}

// union3 is a union of SDF3s.
type union3 struct {
	sdf []SDF3
	min MinFunc
	bb  r3.Box
}

// Union3D returns the union of multiple SDF3 objects.
// Union3D will panic if arguments list is empty or if
// an argument SDF3 is nil.
func Union3D(sdf ...SDF3) SDF3 {
	if len(sdf) == 0 {
		panic("union requires at least 1 sdf")
	}
	if len(sdf) == 1 {
		return sdf[0]
	}
	s := union3{
		sdf: sdf,
	}
	for i, x := range s.sdf {
		if x == nil {
			panic("nil sdf argument (" + strconv.Itoa(i) + ") to Union3D")
		}
	}
	// work out the bounding box
	bb := d3.Box(s.sdf[0].Bounds())
	for _, x := range s.sdf {
		bb = bb.Extend(d3.Box(x.Bounds()))
	}
	s.bb = r3.Box(bb)
	s.min = math.Min
	return &s
}

// Evaluate returns the minimum distance to an SDF3 union.
func (s *union3) Evaluate(p r3.Vec) float64 {
	var d float64
	for i, x := range s.sdf {
		if i == 0 {
			d = x.Evaluate(p)
		} else {
			d = s.min(d, x.Evaluate(p))
		}
	}
	return d
}

// Bounds returns the bounding box of an SDF3 union.
func (s *union3) Bounds() r3.Box {
	return s.bb
}

// diff3 is the difference of two SDF3s, s0 - s1.
type diff3 struct {
	s0  SDF3
	s1  SDF3
	max MaxFunc
	bb  r3.Box
}

// Difference3D returns the difference of two SDF3s, s0 - s1.
// Difference3D will panic if one any of the arguments is nil.
func Difference3D(s0, s1 SDF3) SDF3Diff {
	if s1 == nil || s0 == nil {
		panic("nil argument to Difference3D")
	}
	s := diff3{}
	s.s0 = s0
	s.s1 = s1
	s.max = math.Max
	s.bb = s0.Bounds()
	return &s
}

// Evaluate returns the minimum distance to the SDF3 difference.
func (s *diff3) Evaluate(p r3.Vec) float64 {
	return s.max(s.s0.Evaluate(p), -s.s1.Evaluate(p))
}

// SetMax sets the maximum function to control blending.
func (s *diff3) SetMax(max MaxFunc) {
	s.max = max
}

// Bounds returns the bounding box of the SDF3 difference.
func (s *diff3) Bounds() r3.Box {
	return s.bb
}

// intersection3 is the intersection of two SDF3s.
type intersection3 struct {
	s0  SDF3
	s1  SDF3
	max MaxFunc
	bb  r3.Box
}

// Intersect3D returns the intersection of two SDF3s.
// Intersect3D will panic if any of the arguments are nil.
func Intersect3D(s0, s1 SDF3) SDF3 {
	if s0 == nil || s1 == nil {
		panic("nil argument to Intersect3D")
	}
	s := intersection3{}
	s.s0 = s0
	s.s1 = s1
	s.max = math.Max
	a, b := d3.Box(s0.Bounds()), d3.Box(s1.Bounds())
	if a.Intersects(b) {
		s.bb = r3.Box(a.Intersect(b))
	} else {
		s.bb = r3.Box{Min: a.Center(), Max: a.Center()}
	}
	return &s
}

// Evaluate returns the minimum distance to the SDF3 intersection.
func (s *intersection3) Evaluate(p r3.Vec) float64 {
	return s.max(s.s0.Evaluate(p), s.s1.Evaluate(p))
}

// Bounds returns the bounding box of an SDF3 intersection.
func (s *intersection3) Bounds() r3.Box {
	return s.bb
}

type translate3 struct {
	sdf SDF3
	v   r3.Vec
	bb  r3.Box
}

// Translate3D returns the SDF3 moved by v.
func Translate3D(sdf SDF3, v r3.Vec) SDF3 {
	if sdf == nil {
		panic("nil argument to Translate3D")
	}
	return &translate3{
		sdf: sdf,
		v:   v,
		bb:  r3.Box(d3.Box(sdf.Bounds()).Translate(v)),
	}
}

func (s *translate3) Evaluate(p r3.Vec) float64 {
	return s.sdf.Evaluate(r3.Sub(p, s.v))
}

func (s *translate3) Bounds() r3.Box {
	return s.bb
}

// Normal3 returns the normal of an SDF3 at a point (doesn't need to be on the surface).
// Computed by sampling it several times inside a box of side 2*eps centered on p.
// The result is not normalized.
func Normal3(s SDF3, p r3.Vec, eps float64) r3.Vec {
	return r3.Vec{
		X: s.Evaluate(r3.Add(p, r3.Vec{X: eps})) - s.Evaluate(r3.Add(p, r3.Vec{X: -eps})),
		Y: s.Evaluate(r3.Add(p, r3.Vec{Y: eps})) - s.Evaluate(r3.Add(p, r3.Vec{Y: -eps})),
		Z: s.Evaluate(r3.Add(p, r3.Vec{Z: eps})) - s.Evaluate(r3.Add(p, r3.Vec{Z: -eps})),
	}
}

// Raycast3 marches from a point in a direction until the SDF3 surface
// is reached within epsilon. It returns the collision point and the distance
// travelled t. If no surface is found within maxDist and maxSteps, t is < 0.
func Raycast3(s SDF3, from, dir r3.Vec, epsilon, maxDist float64, maxSteps int) (collision r3.Vec, t float64) {
	dirN := r3.Unit(dir)
	pos := from
	for steps := 0; ; steps++ {
		val := math.Abs(s.Evaluate(pos))
		if val < epsilon {
			return pos, t
		}
		if steps == maxSteps {
			return pos, -1
		}
		t += val
		pos = r3.Add(pos, r3.Scale(val, dirN))
		if t > maxDist {
			return pos, -1
		}
	}
}
