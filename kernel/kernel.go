// Package kernel implements the gouge modeling kernel over signed
// distance function solids.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/soypat/gouge"
	"github.com/soypat/gouge/internal/d3"
	"github.com/soypat/gouge/solid"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ gouge.Kernel = (*SDF)(nil)

// defaultSamples is the number of tool samples between stations.
const defaultSamples = 24

// SDF is a modeling kernel whose bodies are SDF3 solids. Cuts are
// boolean differences with the swept ball-end tool.
type SDF struct {
	// Samples is the number of tool path samples between stations.
	// Zero selects a default.
	Samples int
	// ContactTol is how far outside the body a station contact point may
	// lie before a warning is reported. Zero selects 1e-3 tool radii.
	ContactTol float64
	// EdgeRadius rounds the rim of the groove where it meets the body
	// surface. Zero leaves a sharp edge.
	EdgeRadius float64

	features atomic.Int64
}

// New returns a kernel with default settings.
func New() *SDF {
	return &SDF{}
}

// Loft returns the ruled strip between the on-curve and contact points.
func (k *SDF) Loft(p *gouge.Profile) (*gouge.Strip, error) {
	if p == nil {
		return nil, errors.New("nil profile")
	}
	return gouge.NewStrip(p.Stations)
}

// Cut removes the swept tool of p from body. The feature health is Error
// when the tool can not be built or misses the body entirely, and Warning
// when station contact points lie outside the body.
func (k *SDF) Cut(ctx context.Context, body solid.SDF3, p *gouge.Profile, useRail bool) (gouge.Feature, error) {
	if err := ctx.Err(); err != nil {
		return gouge.Feature{}, err
	}
	if body == nil || p == nil {
		return gouge.Feature{}, errors.New("nil body or profile")
	}
	feat := gouge.Feature{Name: fmt.Sprintf("Gouge%d", k.features.Add(1))}
	samples := k.Samples
	if samples <= 0 {
		samples = defaultSamples
	}
	centers, radii := p.ToolPath(useRail, samples)
	tool, err := solid.Sweep(centers, radii)
	if err != nil {
		feat.Health = gouge.Error
		feat.Message = "invalid tool sweep: " + err.Error()
		return feat, nil
	}
	feat.Tool = tool
	if !d3.Box(tool.Bounds()).Intersects(d3.Box(body.Bounds())) || !touches(body, centers, radii) {
		feat.Health = gouge.Error
		feat.Message = "tool body does not intersect the target body"
		return feat, nil
	}
	cut := solid.Difference3D(body, tool)
	if k.EdgeRadius > 0 {
		cut.SetMax(solid.RoundMax(k.EdgeRadius))
	}
	feat.Result = cut

	tol := k.ContactTol
	if tol <= 0 {
		tol = 1e-3 * p.Radius
	}
	var outside []string
	for i, st := range p.Stations {
		if d := body.Evaluate(st.Contact); d > tol || math.IsNaN(d) {
			outside = append(outside, fmt.Sprintf("%d (%.3g)", i, d))
		}
	}
	if len(outside) > 0 {
		feat.Health = gouge.Warning
		feat.Message = "contact points outside body at stations " + strings.Join(outside, ", ")
	}
	return feat, nil
}

// touches reports whether any tool ball overlaps the body.
func touches(body solid.SDF3, centers []r3.Vec, radii []float64) bool {
	for i, c := range centers {
		if body.Evaluate(c) < radii[i] {
			return true
		}
	}
	return false
}
