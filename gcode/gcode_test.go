package gcode

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/soypat/gouge"
	"github.com/soypat/gouge/spline"
	"github.com/soypat/gouge/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

func profile(t *testing.T, taper bool) *gouge.Profile {
	t.Helper()
	cfg := gouge.DefaultConfig()
	cfg.ToolDiameter = 1
	cfg.Taper = taper
	p, err := gouge.NewProfile(spline.Line{P1: r3.Vec{X: 10}}, surface.Plane{Normal: r3.Vec{Z: 1}}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestTipPathFollowsContacts(t *testing.T) {
	p := profile(t, true)
	tips := TipPath(p, 8)
	if len(tips) != 17 {
		t.Fatalf("got %d tips, want 17", len(tips))
	}
	// on a flat surface the tip sits on the rail.
	points, _ := p.RailPath(8)
	for i, tip := range tips {
		if r3.Norm(r3.Sub(tip, points[i])) > 1e-9 {
			t.Errorf("tip %d at %v, rail at %v", i, tip, points[i])
		}
	}
	if math.Abs(tips[8].Z+0.5) > 1e-9 || math.Abs(tips[0].Z) > 1e-9 {
		t.Errorf("tip depths %g and %g, want -0.5 and 0", tips[8].Z, tips[0].Z)
	}
}

func TestTipPathLofted(t *testing.T) {
	railed := profile(t, true)
	cfg := railed.Config
	cfg.UseRail = false
	lofted, err := gouge.NewProfile(spline.Line{P1: r3.Vec{X: 10}}, surface.Plane{Normal: r3.Vec{Z: 1}}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	tips := TipPath(lofted, 4)
	if len(tips) != 9 {
		t.Fatalf("got %d tips, want 9", len(tips))
	}
	// lofted tips run straight from the surface down to full depth.
	for i, want := range []r3.Vec{{}, {X: 1.25, Z: -0.125}, {X: 2.5, Z: -0.25}, {X: 5, Z: -0.5}, {X: 10}} {
		j := []int{0, 1, 2, 4, 8}[i]
		if r3.Norm(r3.Sub(tips[j], want)) > 1e-9 {
			t.Errorf("lofted tip %d at %v, want %v", j, tips[j], want)
		}
	}
	centers, radii := lofted.ToolPath(false, 4)
	for i, c := range centers {
		if got := c.Z - radii[i]; math.Abs(got-tips[i].Z) > 1e-12 {
			t.Errorf("tip %d depth %g, tool ball bottom %g", i, tips[i].Z, got)
		}
	}
	// the rail bends smoothly away from the straight loft.
	if r3.Norm(r3.Sub(TipPath(railed, 4)[1], tips[1])) < 1e-3 {
		t.Error("rail and loft tip paths coincide")
	}
}

func TestSimplify(t *testing.T) {
	path := []r3.Vec{{}, {X: 1}, {X: 2}, {X: 3, Z: -1}, {X: 4, Z: -2}, {X: 5, Z: -2}}
	got := Simplify(path, 1e-9)
	want := []r3.Vec{{}, {X: 2}, {X: 4, Z: -2}, {X: 5, Z: -2}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d: got %v, want %v", i, got[i], want[i])
		}
	}
	straight := TipPath(profile(t, false), 16)
	if got := Simplify(straight, 1e-9); len(got) != 2 {
		t.Errorf("straight cut simplified to %d points, want 2", len(got))
	}
}

func TestFeedRate(t *testing.T) {
	opt := DefaultOptions()
	for _, test := range []struct {
		start, end r3.Vec
		want       float64
	}{
		{r3.Vec{}, r3.Vec{X: 1}, opt.XYFeed},
		{r3.Vec{}, r3.Vec{X: 1, Z: 1}, opt.XYFeed},
		{r3.Vec{}, r3.Vec{Z: 1}, opt.RapidFeed},
		{r3.Vec{}, r3.Vec{Z: -1}, opt.ZFeed},
		{r3.Vec{}, r3.Vec{X: 1, Z: -1}, math.Sqrt2 * opt.ZFeed},
		{r3.Vec{}, r3.Vec{X: 100, Z: -1}, opt.XYFeed},
	} {
		if got := opt.FeedRate(test.start, test.end); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("%v->%v: feed %g, want %g", test.start, test.end, got, test.want)
		}
	}
}

func TestProgramWrite(t *testing.T) {
	var pg Program
	pg.Add(profile(t, true), 8, 1e-6)
	pg.Add(profile(t, false), 8, 1e-6)
	opt := DefaultOptions()
	opt.Offset = r3.Vec{Y: 2}
	var b bytes.Buffer
	if err := pg.Write(&b, opt); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if lines[0] != "G21" || lines[1] != "G90" || lines[2] != "G1 Z5.0000 F2000" {
		t.Errorf("unexpected preamble %q", lines[:3])
	}
	if lines[3] != "G1 X0.0000 Y2.0000 Z5.0000 F2000" {
		t.Errorf("first move %q", lines[3])
	}
	if got := lines[len(lines)-2:]; got[0] != "M5" || got[1] != "M2" {
		t.Errorf("unexpected end %q", got)
	}
	moves := len(pg.Toolpoints(opt))
	if len(lines) != 3+moves+2 {
		t.Errorf("got %d lines for %d moves", len(lines), moves)
	}
	opt.ZFeed = 0
	if err := pg.Write(&b, opt); err == nil {
		t.Error("expected error for zero feed")
	}
}
