package kernel

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/soypat/gouge"
	"github.com/soypat/gouge/solid"
	"github.com/soypat/gouge/spline"
	"github.com/soypat/gouge/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

var top = surface.Plane{Normal: r3.Vec{Z: 1}}

// slab returns a box whose top face is the z=0 plane.
func slab(t *testing.T, size, center r3.Vec) solid.SDF3 {
	t.Helper()
	b, err := solid.Box(size, 0)
	if err != nil {
		t.Fatal(err)
	}
	return solid.Translate3D(b, center)
}

func straightProfile(t *testing.T, taper bool) *gouge.Profile {
	t.Helper()
	cfg := gouge.DefaultConfig()
	cfg.ToolDiameter = 1
	cfg.Taper = taper
	p, err := gouge.NewProfile(spline.Line{P1: r3.Vec{X: 10}}, top, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCutHealth(t *testing.T) {
	ctx := context.Background()
	for _, test := range []struct {
		name    string
		body    solid.SDF3
		taper   bool
		useRail bool
		want    gouge.Health
		msg     string
	}{
		{"inside", slab(t, r3.Vec{X: 20, Y: 4, Z: 2}, r3.Vec{X: 5, Z: -1}), false, true, gouge.Healthy, ""},
		{"inside lofted", slab(t, r3.Vec{X: 20, Y: 4, Z: 2}, r3.Vec{X: 5, Z: -1}), false, false, gouge.Healthy, ""},
		{"inside tapered", slab(t, r3.Vec{X: 20, Y: 4, Z: 2}, r3.Vec{X: 5, Z: -1}), true, true, gouge.Healthy, ""},
		{"ends outside", slab(t, r3.Vec{X: 6, Y: 4, Z: 2}, r3.Vec{X: 5, Z: -1}), false, true, gouge.Warning, "stations 0"},
		{"far away", slab(t, r3.Vec{X: 20, Y: 4, Z: 2}, r3.Vec{X: 100, Z: -1}), false, true, gouge.Error, "does not intersect"},
		{"below", slab(t, r3.Vec{X: 20, Y: 4, Z: 2}, r3.Vec{X: 5, Z: -1.8}), false, true, gouge.Error, "does not intersect"},
	} {
		k := New()
		feat, err := k.Cut(ctx, test.body, straightProfile(t, test.taper), test.useRail)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		if feat.Health != test.want {
			t.Errorf("%s: health %v, want %v (%s)", test.name, feat.Health, test.want, feat.Message)
		}
		if !strings.Contains(feat.Message, test.msg) {
			t.Errorf("%s: message %q does not contain %q", test.name, feat.Message, test.msg)
		}
		if feat.Name != "Gouge1" {
			t.Errorf("%s: feature name %q", test.name, feat.Name)
		}
		if (feat.Result == nil) != (test.want == gouge.Error) {
			t.Errorf("%s: result presence does not match health", test.name)
		}
	}
}

func TestCutRemovesMaterial(t *testing.T) {
	body := slab(t, r3.Vec{X: 20, Y: 4, Z: 2}, r3.Vec{X: 5, Z: -1})
	feat, err := New().Cut(context.Background(), body, straightProfile(t, false), true)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		p       r3.Vec
		removed bool
	}{
		{r3.Vec{X: 5, Z: -0.25}, true},
		{r3.Vec{X: 5, Z: -0.45}, true},
		{r3.Vec{X: 5, Y: 0.3, Z: -0.1}, true},
		{r3.Vec{X: 5, Z: -0.6}, false},
		{r3.Vec{X: 5, Y: 0.7, Z: -0.1}, false},
		{r3.Vec{X: 12, Z: -0.25}, false},
	} {
		if body.Evaluate(test.p) >= 0 {
			t.Fatalf("%v not inside the uncut body", test.p)
		}
		got := feat.Result.Evaluate(test.p) > 0
		if got != test.removed {
			t.Errorf("%v: removed=%v, want %v", test.p, got, test.removed)
		}
	}
}

func TestCutRoundedEdge(t *testing.T) {
	body := slab(t, r3.Vec{X: 20, Y: 4, Z: 2}, r3.Vec{X: 5, Z: -1})
	sharp, err := New().Cut(context.Background(), body, straightProfile(t, false), true)
	if err != nil {
		t.Fatal(err)
	}
	k := New()
	k.EdgeRadius = 0.1
	rounded, err := k.Cut(context.Background(), body, straightProfile(t, false), true)
	if err != nil {
		t.Fatal(err)
	}
	rim := r3.Vec{X: 5, Y: 0.52, Z: -0.01}
	if sharp.Result.Evaluate(rim) >= 0 {
		t.Errorf("sharp cut removed rim point %v", rim)
	}
	if rounded.Result.Evaluate(rim) <= 0 {
		t.Errorf("rounded cut kept rim point %v", rim)
	}
	// away from the rim both cuts agree.
	for _, p := range []r3.Vec{{X: 5, Y: 1.5, Z: -0.5}, {X: 5, Z: -0.25}} {
		if a, b := sharp.Result.Evaluate(p), rounded.Result.Evaluate(p); math.Abs(a-b) > 1e-12 {
			t.Errorf("%v: sharp %g, rounded %g", p, a, b)
		}
	}
}

func TestCutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	body := slab(t, r3.Vec{X: 20, Y: 4, Z: 2}, r3.Vec{X: 5, Z: -1})
	_, err := New().Cut(ctx, body, straightProfile(t, true), true)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestLoft(t *testing.T) {
	p := straightProfile(t, true)
	strip, err := New().Loft(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(strip.Quads()) != len(p.Stations)-1 {
		t.Errorf("got %d quads for %d stations", len(strip.Quads()), len(p.Stations))
	}
	if _, err := New().Loft(nil); err == nil {
		t.Error("expected error for nil profile")
	}
}

func TestRunWithKernel(t *testing.T) {
	body := slab(t, r3.Vec{X: 20, Y: 20, Z: 2}, r3.Vec{X: 5, Z: -1})
	sel := gouge.Selection{
		Sketches: []gouge.Sketch{{Curves: []gouge.Curve{
			spline.Line{P0: r3.Vec{Y: -3}, P1: r3.Vec{X: 10, Y: -3}},
			spline.Line{P0: r3.Vec{X: 2, Y: 1}, P1: r3.Vec{X: 2, Y: 1}},
			spline.Line{P0: r3.Vec{Y: 3}, P1: r3.Vec{X: 10, Y: 3}},
		}}},
		Faces: []gouge.Face{{Name: "top", Surface: top, Body: body}},
	}
	cfg := gouge.DefaultConfig()
	cfg.ToolDiameter = 0.5
	k := New()
	report, err := gouge.Run(context.Background(), sel, k, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Cuts) != 2 || len(report.Errors) != 1 {
		t.Fatalf("got %d cuts and %d errors, want 2 and 1: %v", len(report.Cuts), len(report.Errors), report.Errors)
	}
	if !errors.Is(report.Errors[0], gouge.ErrDegenerateCurve) {
		t.Errorf("got %v, want degenerate curve", report.Errors[0])
	}
	if report.Cuts[1].Feature.Name != "Gouge2" {
		t.Errorf("second feature named %q", report.Cuts[1].Feature.Name)
	}
	// both grooves are present in the final body.
	for _, y := range []float64{-3, 3} {
		p := r3.Vec{X: 5, Y: y, Z: -0.1}
		if report.Body.Evaluate(p) <= 0 {
			t.Errorf("groove at y=%g missing from final body", y)
		}
	}
	if report.Body.Evaluate(r3.Vec{X: 5, Z: -0.1}) >= 0 {
		t.Error("material between grooves was removed")
	}
}
