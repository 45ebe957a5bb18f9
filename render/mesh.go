package render

import (
	"errors"
	"io"

	sdfxrender "github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/gouge"
	"github.com/soypat/gouge/internal/d3"
	"github.com/soypat/gouge/solid"
	"github.com/soypat/gouge/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// sdfxSolid exposes a solid.SDF3 to the sdfx renderers.
type sdfxSolid struct {
	s  solid.SDF3
	bb sdf.Box3
}

func newSDFXSolid(s solid.SDF3) sdfxSolid {
	// keep the bounding box boundaries off the object surface.
	bb := d3.Box(s.Bounds()).ScaleAboutCenter(1.01)
	return sdfxSolid{
		s: s,
		bb: sdf.Box3{
			Min: v3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
			Max: v3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
		},
	}
}

func (s sdfxSolid) Evaluate(p v3.Vec) float64 {
	return s.s.Evaluate(r3.Vec{X: p.X, Y: p.Y, Z: p.Z})
}

func (s sdfxSolid) BoundingBox() sdf.Box3 { return s.bb }

// marchingCubes renders a solid with sdfx's uniform marching cubes. The
// mesh is computed on the first read.
type marchingCubes struct {
	s     solid.SDF3
	cells int
	out   *triangleBuffer
}

// NewMarchingCubes returns a Renderer tessellating s on a uniform grid
// with meshCells cells along the longest side of its bounding box.
func NewMarchingCubes(s solid.SDF3, meshCells int) (Renderer, error) {
	switch {
	case s == nil:
		return nil, errors.New("nil solid")
	case meshCells < 2:
		return nil, errors.New("meshCells must be 2 or larger")
	}
	return &marchingCubes{s: s, cells: meshCells}, nil
}

func (mc *marchingCubes) ReadTriangles(dst []surface.Triangle) (int, error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	if mc.out == nil {
		tris := sdfxrender.ToTriangles(newSDFXSolid(mc.s), sdfxrender.NewMarchingCubesUniform(mc.cells))
		model := make([]surface.Triangle, 0, len(tris))
		for _, t := range tris {
			tri := surface.Triangle{
				{X: t[0].X, Y: t[0].Y, Z: t[0].Z},
				{X: t[1].X, Y: t[1].Y, Z: t[1].Z},
				{X: t[2].X, Y: t[2].Y, Z: t[2].Z},
			}
			if !tri.Degenerate(0) {
				model = append(model, tri)
			}
		}
		mc.out = &triangleBuffer{buf: model}
	}
	if mc.out.Len() == 0 {
		return 0, io.EOF
	}
	return mc.out.ReadTriangles(dst)
}

// StripTriangles returns the faces of the ruled strip as triangles. Faces
// collapsed at tapered ends give a single triangle.
func StripTriangles(s *gouge.Strip, tol float64) []surface.Triangle {
	var model []surface.Triangle
	for _, q := range s.Quads() {
		for _, t := range [2]surface.Triangle{{q[0], q[1], q[2]}, {q[0], q[2], q[3]}} {
			if !t.Degenerate(tol) {
				model = append(model, t)
			}
		}
	}
	return model
}
