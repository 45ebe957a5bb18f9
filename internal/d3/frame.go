package d3

import "gonum.org/v1/gonum/spatial/r3"

// Frame is an orthonormal coordinate system anchored at Origin.
// Z is the frame normal. Points mapped with ToLocal have their
// Z component equal to their signed distance to the XY plane.
type Frame struct {
	Origin  r3.Vec
	X, Y, Z r3.Vec
}

// NewFrame returns a right handed frame whose Z axis is normal.
// xHint is projected onto the plane to pick the X axis; if it is
// parallel to normal an arbitrary perpendicular is used.
// normal must be non-zero.
func NewFrame(origin, normal, xHint r3.Vec) Frame {
	z := r3.Unit(normal)
	x, ok := Unit(Reject(xHint, z), 1e-12)
	if !ok {
		x = Perpendicular(z)
	}
	return Frame{
		Origin: origin,
		X:      x,
		Y:      r3.Cross(z, x),
		Z:      z,
	}
}

// ToLocal maps a point in model space to frame space.
func (f Frame) ToLocal(p r3.Vec) r3.Vec {
	d := r3.Sub(p, f.Origin)
	return r3.Vec{X: r3.Dot(d, f.X), Y: r3.Dot(d, f.Y), Z: r3.Dot(d, f.Z)}
}

// ToWorld maps a point in frame space to model space.
func (f Frame) ToWorld(p r3.Vec) r3.Vec {
	w := r3.Add(r3.Scale(p.X, f.X), r3.Scale(p.Y, f.Y))
	w = r3.Add(w, r3.Scale(p.Z, f.Z))
	return r3.Add(f.Origin, w)
}
