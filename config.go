package gouge

import (
	"fmt"
	"math"
)

// Tool diameter limits in model length units.
const (
	MinToolDiameter = 0.05
	MaxToolDiameter = 1.0
)

// RailMode selects how the rail is built through the station contact points.
type RailMode int

const (
	// RailSmooth interpolates a C1 curve through the contact points with
	// end tangents matched to the input curve.
	RailSmooth RailMode = iota
	// RailPolyline keeps the lower straight edge of the ruled strip between
	// on-curve points and contact points.
	RailPolyline
)

func (m RailMode) String() string {
	switch m {
	case RailSmooth:
		return "smooth"
	case RailPolyline:
		return "polyline"
	}
	return fmt.Sprintf("RailMode(%d)", int(m))
}

// EndScale selects the construction length of tapered endpoint circles.
type EndScale int

const (
	// EndScaleDiameter builds endpoint circles from the full tool diameter,
	// giving a circle of tool radius tangent to the surface.
	EndScaleDiameter EndScale = iota
	// EndScaleRadius builds endpoint circles from the tool radius, giving a
	// circle of half the tool radius.
	EndScaleRadius
)

func (e EndScale) String() string {
	switch e {
	case EndScaleDiameter:
		return "diameter"
	case EndScaleRadius:
		return "radius"
	}
	return fmt.Sprintf("EndScale(%d)", int(e))
}

// Config holds every option of the profile generator. It is passed by value
// and never modified by the package.
type Config struct {
	// ToolDiameter is the ball-end diameter, in [MinToolDiameter, MaxToolDiameter].
	ToolDiameter float64
	// Taper makes the groove depth fall to zero at both curve ends.
	// When false every station is cut at full tool radius depth.
	Taper bool
	// UseRail makes the cut sweep follow the rail. When false the tool
	// is lofted straight between station circles.
	UseRail bool
	// Debug logs every station at debug level.
	Debug bool
	// Rail selects how the rail is built.
	Rail RailMode
	// Stations is the number of stations sampled along the curve,
	// odd and at least 3. The middle station is the curve midpoint.
	Stations int
	// ArcLengthMidpoint selects the arc length midpoint over the
	// parametric midpoint for the middle station.
	ArcLengthMidpoint bool
	// EndScale applies to tapered endpoint circles.
	EndScale EndScale
	// Tolerance is the maximum rail to circle distance accepted as tangent.
	Tolerance float64
	// Workers bounds how many profiles are computed concurrently by Run.
	// Values below 2 compute profiles sequentially.
	Workers int
}

// DefaultConfig returns the tapered, rail following configuration with a
// quarter unit tool.
func DefaultConfig() Config {
	return Config{
		ToolDiameter:      0.25,
		Taper:             true,
		UseRail:           true,
		Rail:              RailSmooth,
		Stations:          3,
		ArcLengthMidpoint: true,
		EndScale:          EndScaleDiameter,
		Tolerance:         1e-6,
		Workers:           1,
	}
}

// ToolRadius returns half the tool diameter.
func (cfg Config) ToolRadius() float64 { return cfg.ToolDiameter / 2 }

// Validate returns an error wrapping ErrInvalidConfig if any field is out of range.
func (cfg Config) Validate() error {
	var msg string
	switch {
	case math.IsNaN(cfg.ToolDiameter) || cfg.ToolDiameter < MinToolDiameter || cfg.ToolDiameter > MaxToolDiameter:
		msg = fmt.Sprintf("tool diameter %g outside [%g, %g]", cfg.ToolDiameter, MinToolDiameter, MaxToolDiameter)
	case cfg.Stations < 3 || cfg.Stations%2 == 0:
		msg = fmt.Sprintf("station count %d must be odd and at least 3", cfg.Stations)
	case cfg.Rail != RailSmooth && cfg.Rail != RailPolyline:
		msg = "unknown rail mode " + cfg.Rail.String()
	case cfg.EndScale != EndScaleDiameter && cfg.EndScale != EndScaleRadius:
		msg = "unknown end scale " + cfg.EndScale.String()
	case !(cfg.Tolerance > 0):
		msg = fmt.Sprintf("tolerance %g must be positive", cfg.Tolerance)
	case cfg.Workers < 0:
		msg = fmt.Sprintf("negative worker count %d", cfg.Workers)
	default:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
