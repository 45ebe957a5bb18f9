package gouge

import (
	"fmt"
	"log/slog"

	"github.com/soypat/gouge/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// samplesPerSpan is the number of tool path samples between two stations.
const samplesPerSpan = 16

// Profile is the gouge geometry of one curve: the stations, the rail through
// their contact points and one profile circle per station.
type Profile struct {
	Start, Mid, End                r3.Vec // on-curve points.
	StartDepth, MidDepth, EndDepth r3.Vec // full depth points P - N*r.

	Stations []Station
	Rail     Curve
	Circles  []Circle
	// Centers are tool ball centers along the cut, CenterRadii the
	// matching ball radii. Both follow Config.UseRail.
	Centers     []r3.Vec
	CenterRadii []float64

	Radius float64 // tool radius.
	Length float64 // arc length of the gouged curve.
	Config Config

	knots []float64 // rail parameter of each station.
}

// NewProfile computes the gouge profile of curve c lying on surface s.
func NewProfile(c Curve, s Surface, cfg Config) (*Profile, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tMin, tMax := c.ParameterExtents()
	tMid, _, err := ComputeMidpoint(c, cfg.ArcLengthMidpoint)
	if err != nil {
		return nil, err
	}
	start, end := c.EndPoints()
	if d3.EqualWithin(start, end, lengthTol) {
		return nil, geometryErr(-1, ErrDegenerateCurve, fmt.Errorf("coincident end points %v", start))
	}
	length := c.LengthBetween(tMin, tMax)
	sMid := c.LengthBetween(tMin, tMid)
	r := cfg.ToolRadius()
	n := cfg.Stations
	mid := n / 2
	log := Logger()

	stations := make([]Station, n)
	for i := range stations {
		// stations split each half of the curve evenly by arc length.
		var t, sArc float64
		switch {
		case i == 0:
			t, sArc = tMin, 0
		case i == n-1:
			t, sArc = tMax, length
		case i == mid:
			t, sArc = tMid, sMid
		case i < mid:
			sArc = sMid * float64(i) / float64(mid)
			t = c.ParameterAtArcLength(tMin, sArc)
		default:
			sArc = sMid + (length-sMid)*float64(i-mid)/float64(mid)
			t = c.ParameterAtArcLength(tMin, sArc)
		}
		st := Station{T: t, S: sArc, U: sArc / length, P: c.PointAt(t)}
		tangent, ok := d3.Unit(c.TangentAt(t), lengthTol)
		if !ok {
			return nil, geometryErr(i, ErrDegenerateCurve, fmt.Errorf("zero tangent at t=%g", t))
		}
		st.Tangent = tangent
		st.N, err = stationNormal(s, st.P, i)
		if err != nil {
			return nil, err
		}
		st.W = taperWeight(i, n, cfg.Taper)
		st.D = depthPoint(st.P, st.N, r)
		st.Contact = depthPoint(st.P, st.N, r*st.W)
		if cfg.Debug {
			log.Debug("station", slog.Int("index", i), slog.Float64("t", t), slog.Float64("u", st.U),
				slog.Any("point", st.P), slog.Any("normal", st.N), slog.Any("depth", st.D), slog.Float64("weight", st.W))
		}
		stations[i] = st
	}

	rail, err := BuildRail(stations, cfg.Rail)
	if err != nil {
		return nil, err
	}
	p := &Profile{
		Start:      stations[0].P,
		Mid:        stations[mid].P,
		End:        stations[n-1].P,
		StartDepth: stations[0].D,
		MidDepth:   stations[mid].D,
		EndDepth:   stations[n-1].D,
		Stations:   stations,
		Rail:       rail,
		Circles:    make([]Circle, n),
		Radius:     r,
		Length:     length,
		Config:     cfg,
		knots:      railKnots(rail, n),
	}
	for i := range stations {
		st := &stations[i]
		// direction from the contact point toward the circle center.
		up, ok := d3.Unit(d3.Reject(st.N, st.Tangent), lengthTol)
		if !ok {
			return nil, geometryErr(i, ErrDegenerateCurve, fmt.Errorf("surface normal %v parallel to curve", st.N))
		}
		k := cfg.ToolDiameter
		if cfg.Taper && cfg.EndScale == EndScaleRadius && (i == 0 || i == n-1) {
			k = r
		}
		plane := Plane{Origin: st.Contact, Normal: st.Tangent, XAxis: up}
		circle, err := BuildTangentCircle(st.Contact, r3.Add(st.Contact, r3.Scale(k, up)), rail, plane, cfg.Tolerance)
		if err != nil {
			if ge, ok := err.(*GeometryError); ok {
				ge.Station = i
			}
			return nil, err
		}
		st.Circle = circle
		p.Circles[i] = circle
		if cfg.Debug {
			log.Debug("circle", slog.Int("index", i), slog.Any("center", circle.Center), slog.Float64("radius", circle.Radius))
		}
	}
	p.Centers, p.CenterRadii = p.ToolPath(cfg.UseRail, samplesPerSpan)
	return p, nil
}

// ToolPath returns tool ball centers and radii sampled along the cut.
// When useRail is set the ball follows the rail, keeping its surface on the
// rail point while the center direction and radius are interpolated between
// stations. Otherwise centers are lofted straight between station circle
// centers. samples is the number of samples between consecutive stations.
func (p *Profile) ToolPath(useRail bool, samples int) (centers []r3.Vec, radii []float64) {
	points, ups, fracs := p.railPath(samples)
	for k, f := range fracs {
		i := p.span(k, samples)
		c0, c1 := p.Circles[i], p.Circles[i+1]
		rad := c0.Radius + f*(c1.Radius-c0.Radius)
		if useRail {
			centers = append(centers, r3.Add(points[k], r3.Scale(rad, ups[k])))
		} else {
			centers = append(centers, d3.Lerp(c0.Center, c1.Center, f))
		}
		radii = append(radii, rad)
	}
	return centers, radii
}

// RailPath samples the rail at the same positions as ToolPath and returns
// the rail points and the unit direction from each point toward the tool
// center.
func (p *Profile) RailPath(samples int) (points, ups []r3.Vec) {
	points, ups, _ = p.railPath(samples)
	return points, ups
}

// span returns the station span of the k'th path sample.
func (p *Profile) span(k, samples int) int {
	if samples < 1 {
		samples = 1
	}
	return min(k/samples, len(p.Circles)-2)
}

// railPath returns (n-1)*samples+1 rail samples for n stations, with the
// fraction of each sample along its station span.
func (p *Profile) railPath(samples int) (points, ups []r3.Vec, fracs []float64) {
	if samples < 1 {
		samples = 1
	}
	n := len(p.Circles)
	for i := 0; i < n-1; i++ {
		c0, c1 := p.Circles[i], p.Circles[i+1]
		up0 := r3.Unit(r3.Sub(c0.Center, c0.Contact))
		up1 := r3.Unit(r3.Sub(c1.Center, c1.Contact))
		last := samples
		if i < n-2 {
			last = samples - 1 // next span emits the shared station.
		}
		for j := 0; j <= last; j++ {
			f := float64(j) / float64(samples)
			t := p.knots[i] + f*(p.knots[i+1]-p.knots[i])
			up, ok := d3.Unit(d3.Lerp(up0, up1, f), lengthTol)
			if !ok {
				up = up0
			}
			points = append(points, p.Rail.PointAt(t))
			ups = append(ups, up)
			fracs = append(fracs, f)
		}
	}
	return points, ups, fracs
}
