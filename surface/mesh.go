package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/gouge/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a mesh face. Vertices are ordered counter-clockwise when
// viewed from outside so the face normal points outward.
type Triangle [3]r3.Vec

// Normal returns the unit face normal.
func (t Triangle) Normal() r3.Vec {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Degenerate returns true if the triangle has no area within tol.
func (t Triangle) Degenerate(tol float64) bool {
	return r3.Norm(r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))) <= tol
}

// closest returns the point on t closest to p.
func (t Triangle) closest(p r3.Vec) r3.Vec {
	a, b, c := t[0], t[1], t[2]
	ab, ac, ap := r3.Sub(b, a), r3.Sub(c, a), r3.Sub(p, a)
	s1, s2 := r3.Dot(ab, ap), r3.Dot(ac, ap)
	if s1 <= 0 && s2 <= 0 {
		return a
	}
	bp := r3.Sub(p, b)
	s3, s4 := r3.Dot(ab, bp), r3.Dot(ac, bp)
	if s3 >= 0 && s4 <= s3 {
		return b
	}
	vc := s1*s4 - s3*s2
	if vc <= 0 && s1 >= 0 && s3 <= 0 {
		return r3.Add(a, r3.Scale(s1/(s1-s3), ab))
	}
	cp := r3.Sub(p, c)
	s5, s6 := r3.Dot(ab, cp), r3.Dot(ac, cp)
	if s6 >= 0 && s5 <= s6 {
		return c
	}
	vb := s5*s2 - s1*s6
	if vb <= 0 && s2 >= 0 && s6 <= 0 {
		return r3.Add(a, r3.Scale(s2/(s2-s6), ac))
	}
	va := s3*s6 - s5*s4
	if va <= 0 && s4-s3 >= 0 && s5-s6 >= 0 {
		w := (s4 - s3) / ((s4 - s3) + (s5 - s6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b)))
	}
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac)))
}

// Mesh is a triangulated surface. Nearest face queries are accelerated
// with a k-d tree over face centroids.
type Mesh struct {
	tree  *kdtree.Tree
	faces int
	tol   float64
	bb    d3.Box
}

// number of centroid neighbours checked exactly per query.
const meshCandidates = 16

// FromMesh returns the surface of a triangle mesh. Degenerate faces are
// dropped. Points farther than tol from every face are rejected by NormalAt;
// a non-positive tol disables the check.
func FromMesh(triangles []Triangle, tol float64) (*Mesh, error) {
	kd := make(kdTriangles, 0, len(triangles))
	for i, t := range triangles {
		if d3.IsBad(t[0]) || d3.IsBad(t[1]) || d3.IsBad(t[2]) {
			return nil, fmt.Errorf("triangle %d has invalid vertices", i)
		}
		if t.Degenerate(0) {
			continue
		}
		kd = append(kd, newKDTriangle(t))
	}
	if len(kd) == 0 {
		return nil, errors.New("mesh has no faces")
	}
	bb := d3.Set(kd[0].tri[:]).Bounds()
	for _, t := range kd[1:] {
		bb = bb.Extend(d3.Set(t.tri[:]).Bounds())
	}
	return &Mesh{
		tree:  kdtree.New(kd, false),
		faces: len(kd),
		tol:   tol,
		bb:    bb,
	}, nil
}

// Faces returns the number of non-degenerate faces in the mesh.
func (m *Mesh) Faces() int { return m.faces }

// Bounds returns the bounding box of the mesh.
func (m *Mesh) Bounds() r3.Box { return r3.Box(m.bb) }

// NormalAt returns the outward normal of the face closest to p.
func (m *Mesh) NormalAt(p r3.Vec) (r3.Vec, error) {
	tri, dist := m.nearest(p)
	if m.tol > 0 && dist > m.tol {
		return r3.Vec{}, fmt.Errorf("%v is %g from mesh: %w", p, dist, ErrOffSurface)
	}
	return tri.Normal(), nil
}

func (m *Mesh) nearest(p r3.Vec) (Triangle, float64) {
	keep := kdtree.NewNKeeper(meshCandidates)
	m.tree.NearestSet(keep, kdTriangle{centroid: p})
	best := math.Inf(1)
	var tri Triangle
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		t := c.Comparable.(kdTriangle).tri
		if d := r3.Norm(r3.Sub(p, t.closest(p))); d < best {
			best, tri = d, t
		}
	}
	return tri, best
}

var _ kdtree.Interface = kdTriangles{}

type kdTriangles []kdTriangle

type kdTriangle struct {
	tri      Triangle
	centroid r3.Vec
}

func newKDTriangle(t Triangle) kdTriangle {
	c := r3.Add(t[0], r3.Add(t[1], t[2]))
	return kdTriangle{tri: t, centroid: r3.Scale(1./3., c)}
}

func (k kdTriangles) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdTriangles) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdTriangles) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: d, triangles: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdTriangles) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdTriangle) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a, b.(kdTriangle), d)
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdTriangle) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between centroids.
func (a kdTriangle) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.centroid, b.(kdTriangle).centroid))
}

// c = a.dim - b.dim
func kdComp(a, b kdTriangle, dim kdtree.Dim) float64 {
	switch dim {
	case 0:
		return a.centroid.X - b.centroid.X
	case 1:
		return a.centroid.Y - b.centroid.Y
	}
	return a.centroid.Z - b.centroid.Z
}

type kdPlane struct {
	dim       kdtree.Dim
	triangles kdTriangles
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.triangles[i], p.triangles[j], p.dim) < 0
}

func (p kdPlane) Swap(i, j int) {
	p.triangles[i], p.triangles[j] = p.triangles[j], p.triangles[i]
}

func (p kdPlane) Len() int { return len(p.triangles) }

func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.triangles = p.triangles[start:end]
	return p
}
