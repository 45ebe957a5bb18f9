package surface_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/soypat/gouge/solid"
	"github.com/soypat/gouge/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

func TestPlane(t *testing.T) {
	pl := surface.Plane{Normal: r3.Vec{Z: 3}, Tolerance: 0.1}
	n, err := pl.NormalAt(r3.Vec{X: 4, Y: -2, Z: 0.05})
	if err != nil {
		t.Fatal(err)
	}
	if n != (r3.Vec{Z: 1}) {
		t.Errorf("got normal %v, want (0,0,1)", n)
	}
	_, err = pl.NormalAt(r3.Vec{Z: 1})
	if !errors.Is(err, surface.ErrOffSurface) {
		t.Errorf("got %v, want ErrOffSurface", err)
	}
	_, err = surface.Plane{}.NormalAt(r3.Vec{})
	if !errors.Is(err, surface.ErrNoNormal) {
		t.Errorf("got %v, want ErrNoNormal", err)
	}
}

func TestDrape(t *testing.T) {
	sph, err := solid.Sphere(2)
	if err != nil {
		t.Fatal(err)
	}
	// points above, inside and below the sphere all land on its top.
	pts := []r3.Vec{{X: 0.5, Y: 0.3, Z: 10}, {Z: 0.5}, {X: 1, Y: -1, Z: -3}}
	got, err := surface.Drape(sph, pts, r3.Vec{Z: -4})
	if err != nil {
		t.Fatal(err)
	}
	want := []r3.Vec{
		{X: 0.5, Y: 0.3, Z: math.Sqrt(4 - 0.25 - 0.09)},
		{Z: 2},
		{X: 1, Y: -1, Z: math.Sqrt2},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("draped points (-want +got):\n%s", diff)
	}
	_, err = surface.Drape(sph, []r3.Vec{{X: 5}}, r3.Vec{Z: -1})
	if !errors.Is(err, surface.ErrOffSurface) {
		t.Errorf("missing ray: got %v, want ErrOffSurface", err)
	}
	if _, err := surface.Drape(sph, pts, r3.Vec{}); err == nil {
		t.Error("expected error for zero direction")
	}
}

func TestFromSDF(t *testing.T) {
	sph, err := solid.Sphere(2)
	if err != nil {
		t.Fatal(err)
	}
	s := surface.FromSDF(sph, 1e-3)
	for _, dir := range []r3.Vec{{X: 1}, {Y: -1}, r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1})} {
		n, err := s.NormalAt(r3.Scale(2, dir))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(dir, n, approx); diff != "" {
			t.Errorf("normal mismatch (-want +got):\n%s", diff)
		}
	}
	_, err = s.NormalAt(r3.Vec{X: 3})
	if !errors.Is(err, surface.ErrOffSurface) {
		t.Errorf("got %v, want ErrOffSurface", err)
	}
	_, err = s.NormalAt(r3.Vec{X: math.NaN()})
	if !errors.Is(err, surface.ErrOffSurface) {
		t.Errorf("NaN point: got %v, want ErrOffSurface", err)
	}
}

// box returns the 12 outward facing triangles of an axis aligned cube
// spanning [0,1]^3.
func box() []surface.Triangle {
	v := func(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }
	quad := func(a, b, c, d r3.Vec) []surface.Triangle {
		return []surface.Triangle{{a, b, c}, {a, c, d}}
	}
	var tris []surface.Triangle
	tris = append(tris, quad(v(0, 0, 1), v(1, 0, 1), v(1, 1, 1), v(0, 1, 1))...) // top
	tris = append(tris, quad(v(0, 0, 0), v(0, 1, 0), v(1, 1, 0), v(1, 0, 0))...) // bottom
	tris = append(tris, quad(v(0, 0, 0), v(1, 0, 0), v(1, 0, 1), v(0, 0, 1))...) // -y
	tris = append(tris, quad(v(0, 1, 0), v(0, 1, 1), v(1, 1, 1), v(1, 1, 0))...) // +y
	tris = append(tris, quad(v(0, 0, 0), v(0, 0, 1), v(0, 1, 1), v(0, 1, 0))...) // -x
	tris = append(tris, quad(v(1, 0, 0), v(1, 1, 0), v(1, 1, 1), v(1, 0, 1))...) // +x
	return tris
}

func TestFromMesh(t *testing.T) {
	tris := append(box(), surface.Triangle{}) // degenerate face is dropped.
	m, err := surface.FromMesh(tris, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	if m.Faces() != 12 {
		t.Errorf("got %d faces, want 12", m.Faces())
	}
	for _, test := range []struct {
		p, want r3.Vec
	}{
		{p: r3.Vec{X: 0.3, Y: 0.6, Z: 1}, want: r3.Vec{Z: 1}},
		{p: r3.Vec{X: 0.9, Y: 0.1, Z: 0}, want: r3.Vec{Z: -1}},
		{p: r3.Vec{X: 1, Y: 0.5, Z: 0.5}, want: r3.Vec{X: 1}},
		{p: r3.Vec{X: 0.2, Y: 0, Z: 0.7}, want: r3.Vec{Y: -1}},
	} {
		n, err := m.NormalAt(test.p)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(test.want, n, approx); diff != "" {
			t.Errorf("normal at %v mismatch (-want +got):\n%s", test.p, diff)
		}
	}
	_, err = m.NormalAt(r3.Vec{X: 0.5, Y: 0.5, Z: 2})
	if !errors.Is(err, surface.ErrOffSurface) {
		t.Errorf("got %v, want ErrOffSurface", err)
	}
	if _, err := surface.FromMesh(nil, 0); err == nil {
		t.Error("expected error for empty mesh")
	}
}
