package gouge

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/gouge/internal/d3"
	"github.com/soypat/gouge/spline"
	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"
)

// Plane is a sketch plane. XAxis orients the sketch coordinates and is
// projected onto the plane; if zero or parallel to Normal any
// perpendicular direction is used.
type Plane struct {
	Origin r3.Vec
	Normal r3.Vec
	XAxis  r3.Vec
}

func (pl Plane) frame() (d3.Frame, bool) {
	if _, ok := d3.Unit(pl.Normal, lengthTol); !ok {
		return d3.Frame{}, false
	}
	return d3.NewFrame(pl.Origin, pl.Normal, pl.XAxis), true
}

// ToSketch maps a model space point to sketch coordinates, dropping its
// offset from the plane.
func (pl Plane) ToSketch(p r3.Vec) curve.Point {
	f, _ := pl.frame()
	l := f.ToLocal(p)
	return curve.Pt(l.X, l.Y)
}

// FromSketch maps sketch coordinates to a model space point on the plane.
func (pl Plane) FromSketch(p curve.Point) r3.Vec {
	f, _ := pl.frame()
	return f.ToWorld(r3.Vec{X: p.X, Y: p.Y})
}

// Circle is a profile circle in 3D space.
type Circle struct {
	Center r3.Vec
	Normal r3.Vec // unit normal of the circle plane.
	Radius float64
	// Contact is the point of the circle the rail passes through.
	Contact r3.Vec
	// A and B are the two construction points, diametrically opposed.
	A, B  r3.Vec
	Plane Plane
}

// Distance returns the distance from p to the nearest point of the circle.
func (c Circle) Distance(p r3.Vec) float64 {
	v := r3.Sub(p, c.Center)
	h := r3.Dot(v, c.Normal)
	rho := r3.Norm(d3.Reject(v, c.Normal))
	return math.Hypot(h, rho-c.Radius)
}

// Sketch returns the circle in its plane's sketch coordinates.
func (c Circle) Sketch() curve.Circle {
	return curve.Circle{Center: c.Plane.ToSketch(c.Center), Radius: c.Radius}
}

// BuildTangentCircle builds the circle having a and b as the ends of a
// diameter, lying in plane. Points are mapped to sketch space so an offset
// from the plane is dropped. The rail must touch the circle within tol,
// otherwise a *GeometryError of kind ErrNotTangent is returned.
func BuildTangentCircle(a, b r3.Vec, rail Curve, plane Plane, tol float64) (Circle, error) {
	frame, ok := plane.frame()
	if !ok {
		return Circle{}, geometryErr(-1, ErrDegenerateCurve, errors.New("zero plane normal"))
	}
	sa, sb := plane.ToSketch(a), plane.ToSketch(b)
	radius := sa.Distance(sb) / 2
	if !(radius > lengthTol) {
		return Circle{}, geometryErr(-1, ErrDegenerateCurve, fmt.Errorf("coincident circle points %v", a))
	}
	c := Circle{
		Center:  plane.FromSketch(sa.Midpoint(sb)),
		Normal:  frame.Z,
		Radius:  radius,
		A:       plane.FromSketch(sa),
		B:       plane.FromSketch(sb),
		Contact: plane.FromSketch(sa),
		Plane:   plane,
	}
	if rail == nil {
		return c, nil
	}
	_, dist := spline.NearestFunc(rail, c.Distance)
	if dist > tol {
		return c, geometryErr(-1, ErrNotTangent, fmt.Errorf("rail is %g from circle at %v", dist, c.Center))
	}
	return c, nil
}
