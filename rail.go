package gouge

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/gouge/spline"
	"gonum.org/v1/gonum/spatial/r3"
)

// tieTol is the distance difference below which two candidates tie.
const tieTol = 1e-12

// SelectNearestCurve returns the one of exactly two candidates with the
// smallest minimum distance to ref, and its index. When the distances tie
// within 1e-12 the first candidate is returned.
func SelectNearestCurve(candidates []Curve, ref r3.Vec) (Curve, int, error) {
	if len(candidates) != 2 {
		return nil, -1, fmt.Errorf("got %d candidate curves, want 2", len(candidates))
	}
	var dists [2]float64
	for i, c := range candidates {
		if c == nil {
			return nil, -1, fmt.Errorf("candidate %d is nil", i)
		}
		_, dists[i] = spline.Nearest(c, ref)
		if math.IsNaN(dists[i]) {
			return nil, -1, geometryErr(-1, ErrDegenerateCurve, fmt.Errorf("candidate %d distance is NaN", i))
		}
	}
	if dists[1] < dists[0]-tieTol {
		return candidates[1], 1, nil
	}
	return candidates[0], 0, nil
}

// Strip is the thin ruled surface lofted between the on-curve station
// points and the station contact points.
type Strip struct {
	Upper *spline.Polyline // through the on-curve points.
	Lower *spline.Polyline // through the contact points.
}

// NewStrip lofts the ruled strip through stations. Coincident upper and
// lower points are allowed; they occur at the ends of a tapered gouge.
func NewStrip(stations []Station) (*Strip, error) {
	if len(stations) < 2 {
		return nil, fmt.Errorf("strip needs 2 stations, got %d", len(stations))
	}
	upper := make([]r3.Vec, len(stations))
	lower := make([]r3.Vec, len(stations))
	for i, st := range stations {
		upper[i] = st.P
		lower[i] = st.Contact
	}
	u, err := spline.NewPolyline(upper...)
	if err != nil {
		return nil, fmt.Errorf("upper edge: %w", err)
	}
	l, err := spline.NewPolyline(lower...)
	if err != nil {
		return nil, fmt.Errorf("lower edge: %w", err)
	}
	return &Strip{Upper: u, Lower: l}, nil
}

// Edges returns the two long edges of the strip, upper first.
func (s *Strip) Edges() []Curve { return []Curve{s.Upper, s.Lower} }

// Quads returns the strip faces as quadrilaterals, upper edge first. Faces
// at tapered ends collapse to triangles with a repeated vertex.
func (s *Strip) Quads() [][4]r3.Vec {
	n := len(s.Upper.Points)
	quads := make([][4]r3.Vec, n-1)
	for i := range quads {
		quads[i] = [4]r3.Vec{s.Upper.Points[i], s.Upper.Points[i+1], s.Lower.Points[i+1], s.Lower.Points[i]}
	}
	return quads
}

// BuildRail returns the rail curve through the station contact points.
//
// RailPolyline lofts the ruled strip between on-curve and contact points and
// keeps the edge nearest the middle station's full depth point. RailSmooth
// interpolates the contact points directly with tangents at both ends
// matched to the station tangents.
func BuildRail(stations []Station, mode RailMode) (Curve, error) {
	if len(stations) < 2 {
		return nil, geometryErr(-1, ErrDegenerateCurve, fmt.Errorf("rail needs 2 stations, got %d", len(stations)))
	}
	switch mode {
	case RailPolyline:
		strip, err := NewStrip(stations)
		if err != nil {
			return nil, geometryErr(-1, ErrDegenerateCurve, err)
		}
		ref := stations[len(stations)/2].D
		rail, _, err := SelectNearestCurve(strip.Edges(), ref)
		if err != nil {
			return nil, err
		}
		return rail, nil
	case RailSmooth:
		pts := make([]r3.Vec, len(stations))
		for i, st := range stations {
			pts[i] = st.Contact
		}
		first, last := stations[0], stations[len(stations)-1]
		h, err := spline.NewHermite(pts, first.Tangent, last.Tangent)
		if err != nil {
			return nil, geometryErr(-1, ErrDegenerateCurve, err)
		}
		return h, nil
	}
	return nil, errors.New("unknown rail mode " + mode.String())
}

// railKnots returns the rail parameter at each station.
func railKnots(rail Curve, n int) []float64 {
	switch r := rail.(type) {
	case *spline.Hermite:
		return r.Knots()
	}
	// polyline edges: station i is at parameter i.
	knots := make([]float64, n)
	for i := range knots {
		knots[i] = float64(i)
	}
	return knots
}
