package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/soypat/gouge"
	"github.com/soypat/gouge/render"
	"github.com/soypat/gouge/solid"
	"github.com/soypat/gouge/spline"
	"github.com/soypat/gouge/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// job is the JSON description of a gouge run.
type job struct {
	Tool   toolJob    `json:"tool"`
	Body   bodyJob    `json:"body"`
	Face   faceJob    `json:"face"`
	Curves []curveJob `json:"curves"`
}

type toolJob struct {
	Diameter  float64 `json:"diameter"`
	Taper     *bool   `json:"taper"`
	UseRail   *bool   `json:"useRail"`
	Rail      string  `json:"rail"`     // "smooth" or "polyline".
	Stations  int     `json:"stations"` // zero selects the default.
	Midpoint  string  `json:"midpoint"` // "arclength" or "parametric".
	EndScale  string  `json:"endScale"` // "diameter" or "radius".
	Tolerance float64 `json:"tolerance"`
	Workers   int     `json:"workers"`
	// EdgeRadius rounds the groove rims in the cut body.
	EdgeRadius float64 `json:"edgeRadius"`
	Debug      bool    `json:"debug"`
}

type bodyJob struct {
	Shape  string  `json:"shape"` // "box", "sphere" or "cylinder".
	Size   vec     `json:"size"`
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
	Round  float64 `json:"round"`
	Center vec     `json:"center"`
}

type faceJob struct {
	Name string `json:"name"`
	// Type is "plane", "body" or "mesh". A body face reports the normals
	// of the body's boundary. A mesh face tessellates the body first and
	// reports facet normals.
	Type string `json:"type"`
	// MeshCells is the tessellation resolution of mesh faces.
	MeshCells int     `json:"meshCells"`
	Origin    vec     `json:"origin"`
	Normal    vec     `json:"normal"`
	Tolerance float64 `json:"tolerance"`
}

type curveJob struct {
	// Type is "line", "polyline", "bspline" or "fit".
	Type    string    `json:"type"`
	Points  []vec     `json:"points"`
	Degree  int       `json:"degree"`
	Weights []float64 `json:"weights"`
	Knots   []float64 `json:"knots"`
	// Drape projects the points onto the body along the given direction
	// before the curve is built.
	Drape *vec `json:"drape"`
}

// vec is a point encoded as a JSON array of 3 numbers.
type vec r3.Vec

func (v *vec) UnmarshalJSON(b []byte) error {
	var a []float64
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a) != 3 {
		return fmt.Errorf("vector needs 3 components, got %d", len(a))
	}
	*v = vec{X: a[0], Y: a[1], Z: a[2]}
	return nil
}

func decodeJob(r io.Reader) (*job, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var j job
	if err := dec.Decode(&j); err != nil {
		return nil, fmt.Errorf("decoding job: %w", err)
	}
	return &j, nil
}

// config returns the generator configuration, starting from the defaults.
func (t toolJob) config() (gouge.Config, error) {
	cfg := gouge.DefaultConfig()
	if t.Diameter != 0 {
		cfg.ToolDiameter = t.Diameter
	}
	if t.Taper != nil {
		cfg.Taper = *t.Taper
	}
	if t.UseRail != nil {
		cfg.UseRail = *t.UseRail
	}
	if t.Stations != 0 {
		cfg.Stations = t.Stations
	}
	if t.Tolerance != 0 {
		cfg.Tolerance = t.Tolerance
	}
	if t.Workers != 0 {
		cfg.Workers = t.Workers
	}
	cfg.Debug = t.Debug
	switch strings.ToLower(t.Rail) {
	case "", "smooth":
		cfg.Rail = gouge.RailSmooth
	case "polyline":
		cfg.Rail = gouge.RailPolyline
	default:
		return cfg, fmt.Errorf("unknown rail mode %q", t.Rail)
	}
	switch strings.ToLower(t.Midpoint) {
	case "", "arclength":
		cfg.ArcLengthMidpoint = true
	case "parametric":
		cfg.ArcLengthMidpoint = false
	default:
		return cfg, fmt.Errorf("unknown midpoint mode %q", t.Midpoint)
	}
	switch strings.ToLower(t.EndScale) {
	case "", "diameter":
		cfg.EndScale = gouge.EndScaleDiameter
	case "radius":
		cfg.EndScale = gouge.EndScaleRadius
	default:
		return cfg, fmt.Errorf("unknown end scale %q", t.EndScale)
	}
	if t.EdgeRadius < 0 {
		return cfg, fmt.Errorf("negative edge radius %g", t.EdgeRadius)
	}
	return cfg, cfg.Validate()
}

func (b bodyJob) solid() (s solid.SDF3, err error) {
	switch strings.ToLower(b.Shape) {
	case "box":
		s, err = solid.Box(r3.Vec(b.Size), b.Round)
	case "sphere":
		s, err = solid.Sphere(b.Radius)
	case "cylinder":
		s, err = solid.Cylinder(b.Height, b.Radius, b.Round)
	default:
		return nil, fmt.Errorf("unknown body shape %q", b.Shape)
	}
	if err != nil {
		return nil, fmt.Errorf("%s body: %w", b.Shape, err)
	}
	if b.Center != (vec{}) {
		s = solid.Translate3D(s, r3.Vec(b.Center))
	}
	return s, nil
}

func (f faceJob) surface(body solid.SDF3) (gouge.Surface, error) {
	switch strings.ToLower(f.Type) {
	case "plane":
		if f.Normal == (vec{}) {
			return nil, errors.New("plane face needs a normal")
		}
		return surface.Plane{Origin: r3.Vec(f.Origin), Normal: r3.Vec(f.Normal), Tolerance: f.Tolerance}, nil
	case "", "body":
		return surface.FromSDF(body, f.Tolerance), nil
	case "mesh":
		cells := f.MeshCells
		if cells == 0 {
			cells = 100
		}
		mc, err := render.NewMarchingCubes(body, cells)
		if err != nil {
			return nil, err
		}
		model, err := render.RenderAll(mc)
		if err != nil {
			return nil, err
		}
		return surface.FromMesh(model, f.Tolerance)
	}
	return nil, fmt.Errorf("unknown face type %q", f.Type)
}

func (c curveJob) curve(body solid.SDF3) (gouge.Curve, error) {
	pts := make([]r3.Vec, len(c.Points))
	for i, p := range c.Points {
		pts[i] = r3.Vec(p)
	}
	if c.Drape != nil {
		var err error
		pts, err = surface.Drape(body, pts, r3.Vec(*c.Drape))
		if err != nil {
			return nil, err
		}
	}
	switch strings.ToLower(c.Type) {
	case "line":
		if len(pts) != 2 {
			return nil, fmt.Errorf("line needs 2 points, got %d", len(pts))
		}
		return spline.Line{P0: pts[0], P1: pts[1]}, nil
	case "polyline":
		return spline.NewPolyline(pts...)
	case "bspline":
		return spline.NewBSpline(c.Degree, pts, c.Weights, c.Knots)
	case "fit":
		degree := c.Degree
		if degree == 0 {
			degree = 3
		}
		return spline.Interpolate(pts, degree)
	}
	return nil, fmt.Errorf("unknown curve type %q", c.Type)
}

// selection builds the generator input of j.
func (j *job) selection() (gouge.Selection, error) {
	body, err := j.Body.solid()
	if err != nil {
		return gouge.Selection{}, err
	}
	surf, err := j.Face.surface(body)
	if err != nil {
		return gouge.Selection{}, err
	}
	sketch := gouge.Sketch{Name: "sketch"}
	for i, cj := range j.Curves {
		c, err := cj.curve(body)
		if err != nil {
			return gouge.Selection{}, fmt.Errorf("curve %d: %w", i, err)
		}
		sketch.Curves = append(sketch.Curves, c)
	}
	name := j.Face.Name
	if name == "" {
		name = "face"
	}
	return gouge.Selection{
		Sketches: []gouge.Sketch{sketch},
		Faces:    []gouge.Face{{Name: name, Surface: surf, Body: body}},
	}, nil
}
