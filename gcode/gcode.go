// Package gcode writes 3-axis ball end mill programs that cut gouge
// profiles.
package gcode

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/soypat/gouge"
	"gonum.org/v1/gonum/spatial/r3"
)

// FeedType selects the feed rate of a move.
type FeedType int

const (
	RapidFeed FeedType = iota
	CuttingFeed
)

// Toolpoint is a tool tip position.
type Toolpoint struct {
	Pos  r3.Vec
	Feed FeedType
}

// Options configures the generated program. Feeds are in units per minute.
type Options struct {
	XYFeed    float64
	ZFeed     float64
	RapidFeed float64
	// SafeZ is the height of rapid moves between cuts.
	SafeZ float64
	// Imperial selects inches (G20) instead of millimetres (G21).
	Imperial bool
	// Offset is added to every coordinate written.
	Offset r3.Vec
}

// DefaultOptions returns conservative feeds for a small ball end mill.
func DefaultOptions() Options {
	return Options{
		XYFeed:    400,
		ZFeed:     50,
		RapidFeed: 2000,
		SafeZ:     5,
	}
}

func (opt Options) validate() error {
	switch {
	case !(opt.XYFeed > 0) || !(opt.ZFeed > 0) || !(opt.RapidFeed > 0):
		return errors.New("feed rates must be positive")
	case math.IsNaN(opt.SafeZ) || math.IsInf(opt.SafeZ, 0):
		return errors.New("invalid safe Z")
	}
	return nil
}

// FeedRate returns the feed for a cutting move from start to end. Plunging
// moves are limited by the Z feed and upward vertical moves are rapid.
func (opt Options) FeedRate(start, end r3.Vec) float64 {
	d := r3.Sub(end, start)
	xyDist := math.Hypot(d.X, d.Y)
	zDist := d.Z
	const epsilon = 0.00001
	// vertical upwards movement with no XY component: rapid feed
	if xyDist < epsilon && zDist > 0 {
		return opt.RapidFeed
	}
	if zDist >= 0 || math.Abs(xyDist/zDist) > math.Abs(opt.XYFeed/opt.ZFeed) {
		// XY feed is limiting factor
		return opt.XYFeed
	}
	// Z feed is limiting factor
	return math.Abs(r3.Norm(d)/zDist) * opt.ZFeed
}

// TipPath returns tool tip positions of a vertical ball end mill cutting
// the same groove the kernel cuts for p. The tip is the lowest point of
// each swept tool ball, so the path follows the rail or lofts between
// station circles as p.Config.UseRail selects.
func TipPath(p *gouge.Profile, samples int) []r3.Vec {
	centers, radii := p.ToolPath(p.Config.UseRail, samples)
	tips := make([]r3.Vec, len(centers))
	for i, c := range centers {
		tips[i] = r3.Sub(c, r3.Vec{Z: radii[i]})
	}
	return tips
}

// Simplify drops points lying on the straight line between their
// neighbours within tol.
func Simplify(path []r3.Vec, tol float64) []r3.Vec {
	if len(path) < 3 {
		return append([]r3.Vec(nil), path...)
	}
	out := []r3.Vec{path[0]}
	for i := 1; i < len(path)-1; i++ {
		first, cur, next := out[len(out)-1], path[i], path[i+1]
		seg := r3.Sub(next, first)
		l := r3.Norm(seg)
		// distance from cur to the line first->next.
		var dist float64
		if l == 0 {
			dist = r3.Norm(r3.Sub(cur, first))
		} else {
			dist = r3.Norm(r3.Cross(r3.Sub(cur, first), seg)) / l
		}
		if dist > tol {
			out = append(out, cur)
		}
	}
	return append(out, path[len(path)-1])
}

// Program is a sequence of cuts, each a tool tip path entered from and
// left to the safe height.
type Program struct {
	Cuts [][]r3.Vec
}

// Add appends the tip path of p to the program.
func (pg *Program) Add(p *gouge.Profile, samples int, tol float64) {
	pg.Cuts = append(pg.Cuts, Simplify(TipPath(p, samples), tol))
}

// Toolpoints returns the full tool motion of the program.
func (pg *Program) Toolpoints(opt Options) []Toolpoint {
	var pts []Toolpoint
	for _, cut := range pg.Cuts {
		if len(cut) == 0 {
			continue
		}
		start := cut[0]
		pts = append(pts, Toolpoint{Pos: r3.Vec{X: start.X, Y: start.Y, Z: opt.SafeZ}, Feed: RapidFeed})
		for _, p := range cut {
			pts = append(pts, Toolpoint{Pos: p, Feed: CuttingFeed})
		}
		end := cut[len(cut)-1]
		pts = append(pts, Toolpoint{Pos: r3.Vec{X: end.X, Y: end.Y, Z: opt.SafeZ}, Feed: RapidFeed})
	}
	return pts
}

// Write writes the program as G-code.
func (pg *Program) Write(w io.Writer, opt Options) error {
	if err := opt.validate(); err != nil {
		return err
	}
	var gcode strings.Builder
	if opt.Imperial {
		gcode.WriteString("G20\n") // inches
	} else {
		gcode.WriteString("G21\n") // mm
	}
	gcode.WriteString("G90\n") // absolute coordinates
	fmt.Fprintf(&gcode, "G1 Z%.04f F%g\n", opt.SafeZ+opt.Offset.Z, opt.RapidFeed)
	pts := pg.Toolpoints(opt)
	for i, p := range pts {
		feedRate := opt.RapidFeed
		if p.Feed == CuttingFeed && i > 0 {
			feedRate = opt.FeedRate(pts[i-1].Pos, p.Pos)
		}
		pos := r3.Add(p.Pos, opt.Offset)
		fmt.Fprintf(&gcode, "G1 X%.04f Y%.04f Z%.04f F%g\n", pos.X, pos.Y, pos.Z, feedRate)
	}
	gcode.WriteString("M5\nM2\n") // stop spindle, end program
	_, err := io.WriteString(w, gcode.String())
	return err
}
