package gouge_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/soypat/gouge"
	"github.com/soypat/gouge/spline"
	"github.com/soypat/gouge/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

func straightConfig(taper bool, rail gouge.RailMode) gouge.Config {
	cfg := gouge.DefaultConfig()
	cfg.ToolDiameter = 1.0
	cfg.Taper = taper
	cfg.Rail = rail
	return cfg
}

func TestStraightSegmentScenario(t *testing.T) {
	line := spline.Line{P0: r3.Vec{}, P1: r3.Vec{X: 10}}
	for _, rail := range []gouge.RailMode{gouge.RailSmooth, gouge.RailPolyline} {
		t.Run(rail.String(), func(t *testing.T) {
			p, err := gouge.NewProfile(line, flat, straightConfig(false, rail))
			if err != nil {
				t.Fatal(err)
			}
			wantDepth := []r3.Vec{{Z: -0.5}, {X: 5, Z: -0.5}, {X: 10, Z: -0.5}}
			gotDepth := []r3.Vec{p.StartDepth, p.MidDepth, p.EndDepth}
			if diff := cmp.Diff(wantDepth, gotDepth, approx); diff != "" {
				t.Errorf("depth points mismatch (-want +got):\n%s", diff)
			}
			if len(p.Circles) != 3 {
				t.Fatalf("got %d circles, want 3", len(p.Circles))
			}
			for i, c := range p.Circles {
				if math.Abs(c.Radius-0.5) > 1e-12 {
					t.Errorf("circle %d radius %g, want 0.5", i, c.Radius)
				}
				// plane perpendicular to the curve tangent.
				if diff := cmp.Diff(r3.Vec{X: 1}, c.Normal, approx); diff != "" {
					t.Errorf("circle %d plane normal:\n%s", i, diff)
				}
				// the rail threads the depth point, the circle sits on it.
				if diff := cmp.Diff(wantDepth[i], c.Contact, approx); diff != "" {
					t.Errorf("circle %d contact:\n%s", i, diff)
				}
				if d := c.Distance(wantDepth[i]); d > 1e-12 {
					t.Errorf("circle %d misses depth point by %g", i, d)
				}
				if diff := cmp.Diff(p.Stations[i].P, c.Center, approx); diff != "" {
					t.Errorf("circle %d center is not the tool center:\n%s", i, diff)
				}
			}
			for _, q := range spline.Sample(p.Rail, 33) {
				if math.Abs(q.Z+0.5) > 1e-9 || math.Abs(q.Y) > 1e-9 {
					t.Fatalf("rail point %v not on the offset line", q)
				}
			}
		})
	}
}

func TestFlatStraightRoundTrip(t *testing.T) {
	// straight diagonal curve on a tilted plane.
	normal := r3.Unit(r3.Vec{X: -1, Y: 1, Z: 4})
	plane := surface.Plane{Origin: r3.Vec{Z: 1}, Normal: normal, Tolerance: 1e-9}
	u := r3.Unit(r3.Cross(normal, r3.Vec{Y: 1}))
	line := spline.Line{P0: r3.Vec{Z: 1}, P1: r3.Add(r3.Vec{Z: 1}, r3.Scale(7, u))}
	cfg := straightConfig(false, gouge.RailSmooth)
	cfg.ToolDiameter = 0.3
	cfg.Stations = 5
	p, err := gouge.NewProfile(line, plane, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range p.Circles {
		if math.Abs(c.Radius-0.15) > 1e-12 {
			t.Errorf("circle %d radius %g, want 0.15", i, c.Radius)
		}
		if math.Abs(math.Abs(r3.Dot(c.Normal, p.Circles[0].Normal))-1) > 1e-12 {
			t.Errorf("circle %d plane not parallel to circle 0", i)
		}
	}
	for _, q := range spline.Sample(p.Rail, 50) {
		// uniform offset below the plane by the tool radius.
		d := r3.Dot(r3.Sub(q, plane.Origin), normal)
		if math.Abs(d+0.15) > 1e-9 {
			t.Fatalf("rail point %v offset %g, want -0.15", q, d)
		}
		_, dist := spline.Nearest(line, q)
		if math.Abs(dist-0.15) > 1e-9 {
			t.Fatalf("rail point %v is %g from curve, want 0.15", q, dist)
		}
	}
}

func TestTaperedProfile(t *testing.T) {
	line := spline.Line{P0: r3.Vec{}, P1: r3.Vec{X: 10}}
	for _, test := range []struct {
		scale     gouge.EndScale
		endRadius float64
	}{
		{gouge.EndScaleDiameter, 0.5},
		{gouge.EndScaleRadius, 0.25},
	} {
		t.Run(test.scale.String(), func(t *testing.T) {
			cfg := straightConfig(true, gouge.RailSmooth)
			cfg.EndScale = test.scale
			p, err := gouge.NewProfile(line, flat, cfg)
			if err != nil {
				t.Fatal(err)
			}
			// depth points keep the full radius offset regardless of taper.
			if diff := cmp.Diff(r3.Vec{Z: -0.5}, p.StartDepth, approx); diff != "" {
				t.Errorf("start depth:\n%s", diff)
			}
			wantW := []float64{0, 1, 0}
			for i, st := range p.Stations {
				if st.W != wantW[i] {
					t.Errorf("station %d weight %g, want %g", i, st.W, wantW[i])
				}
			}
			// the rail touches the surface at both ends and reaches full depth midway.
			start, end := p.Rail.EndPoints()
			if diff := cmp.Diff([]r3.Vec{{}, {X: 10}}, []r3.Vec{start, end}, approx); diff != "" {
				t.Errorf("rail ends:\n%s", diff)
			}
			if diff := cmp.Diff(r3.Vec{X: 5, Z: -0.5}, p.Circles[1].Contact, approx); diff != "" {
				t.Errorf("mid contact:\n%s", diff)
			}
			for _, i := range []int{0, 2} {
				c := p.Circles[i]
				if math.Abs(c.Radius-test.endRadius) > 1e-12 {
					t.Errorf("end circle %d radius %g, want %g", i, c.Radius, test.endRadius)
				}
				want := r3.Add(p.Stations[i].P, r3.Vec{Z: test.endRadius})
				if diff := cmp.Diff(want, c.Center, approx); diff != "" {
					t.Errorf("end circle %d sits above the surface:\n%s", i, diff)
				}
			}
			if math.Abs(p.Circles[1].Radius-0.5) > 1e-12 {
				t.Errorf("mid circle radius %g, want 0.5", p.Circles[1].Radius)
			}
			centers, radii := p.ToolPath(true, 8)
			if len(centers) != 17 || len(radii) != 17 {
				t.Fatalf("got %d samples, want 17", len(centers))
			}
			if diff := cmp.Diff(p.Circles[1].Center, centers[8], approx); diff != "" {
				t.Errorf("tool center at mid station:\n%s", diff)
			}
			if diff := cmp.Diff(p.Circles[2].Center, centers[16], approx); diff != "" {
				t.Errorf("tool center at end station:\n%s", diff)
			}
		})
	}
}

func TestProfileParametricMidpoint(t *testing.T) {
	c := skewed(t)
	for _, arc := range []bool{true, false} {
		cfg := gouge.DefaultConfig()
		cfg.ArcLengthMidpoint = arc
		cfg.Stations = 5
		p, err := gouge.NewProfile(c, flat, cfg)
		if err != nil {
			t.Fatal(err)
		}
		_, want, _ := gouge.ComputeMidpoint(c, arc)
		if diff := cmp.Diff(want, p.Mid, approx); diff != "" {
			t.Errorf("arc=%v mid mismatch:\n%s", arc, diff)
		}
		for i := 1; i < len(p.Stations); i++ {
			if p.Stations[i].S <= p.Stations[i-1].S {
				t.Errorf("arc=%v stations out of order at %d", arc, i)
			}
		}
		if p.Stations[2].W != 1 {
			t.Errorf("arc=%v middle station weight %g, want 1", arc, p.Stations[2].W)
		}
	}
}

func TestNewProfileErrors(t *testing.T) {
	line := spline.Line{P0: r3.Vec{}, P1: r3.Vec{X: 10}}
	cfg := gouge.DefaultConfig()

	_, err := gouge.NewProfile(spline.Line{}, flat, cfg)
	if !errors.Is(err, gouge.ErrDegenerateCurve) {
		t.Errorf("zero length: got %v, want ErrDegenerateCurve", err)
	}
	closed, _ := spline.NewPolyline(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1}, r3.Vec{})
	_, err = gouge.NewProfile(closed, flat, cfg)
	if !errors.Is(err, gouge.ErrDegenerateCurve) {
		t.Errorf("closed curve: got %v, want ErrDegenerateCurve", err)
	}
	// surface normal along the curve leaves no room for a profile.
	_, err = gouge.NewProfile(line, surface.Plane{Normal: r3.Vec{X: 1}}, cfg)
	var ge *gouge.GeometryError
	if !errors.As(err, &ge) || !errors.Is(err, gouge.ErrDegenerateCurve) || ge.Station != 0 {
		t.Errorf("normal parallel to curve: got %v", err)
	}
	_, err = gouge.NewProfile(line, surface.Plane{Normal: r3.Vec{Z: 1}, Origin: r3.Vec{Z: 1}, Tolerance: 0.1}, cfg)
	if !errors.Is(err, gouge.ErrNormalUndefined) || !errors.Is(err, surface.ErrOffSurface) {
		t.Errorf("curve off surface: got %v", err)
	}
	cfg.ToolDiameter = 2
	if _, err = gouge.NewProfile(line, flat, cfg); !errors.Is(err, gouge.ErrInvalidConfig) {
		t.Errorf("got %v, want ErrInvalidConfig", err)
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	gouge.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer gouge.SetLogger(nil)

	cfg := gouge.DefaultConfig()
	line := spline.Line{P0: r3.Vec{}, P1: r3.Vec{X: 10}}
	if _, err := gouge.NewProfile(line, flat, cfg); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output without debug: %q", buf.String())
	}
	cfg.Debug = true
	if _, err := gouge.NewProfile(line, flat, cfg); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "msg=station"); got != 3 {
		t.Errorf("got %d station records, want 3:\n%s", got, buf.String())
	}
}

func TestStripLoft(t *testing.T) {
	line := spline.Line{P0: r3.Vec{}, P1: r3.Vec{X: 10}}
	p, err := gouge.NewProfile(line, flat, gouge.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	strip, err := gouge.NewStrip(p.Stations)
	if err != nil {
		t.Fatal(err)
	}
	quads := strip.Quads()
	if len(quads) != 2 {
		t.Fatalf("got %d quads, want 2", len(quads))
	}
	// tapered ends collapse onto the curve.
	if quads[0][0] != quads[0][3] {
		t.Errorf("start quad not collapsed: %v", quads[0])
	}
	rail, idx, err := gouge.SelectNearestCurve(strip.Edges(), p.MidDepth)
	if err != nil || idx != 1 || rail != gouge.Curve(strip.Lower) {
		t.Errorf("lower edge not selected: idx=%d err=%v", idx, err)
	}
}
