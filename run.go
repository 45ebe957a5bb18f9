package gouge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/soypat/gouge/solid"
)

// Health is a kernel's classification of a feature's outcome.
type Health int

const (
	Healthy Health = iota
	Warning
	Error
)

func (h Health) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Health(%d)", int(h))
}

// Feature is the result of a kernel cut.
type Feature struct {
	Name    string
	Health  Health
	Message string
	// Tool is the swept tool volume removed from the body.
	Tool solid.SDF3
	// Result is the body after the cut. It is nil when Health is Error.
	Result solid.SDF3
}

// Kernel performs the modeling operations requested by the generator.
type Kernel interface {
	// Loft returns the non-solid ruled strip between the profile's
	// on-curve points and its contact points.
	Loft(p *Profile) (*Strip, error)
	// Cut sweeps the profile's tool along the rail (or straight between
	// station circles when useRail is false) and removes it from body.
	// A returned error means the cut could not be attempted; modeling
	// problems are reported through Feature.Health.
	Cut(ctx context.Context, body solid.SDF3, p *Profile, useRail bool) (Feature, error)
}

// Sketch is a named group of curves to gouge.
type Sketch struct {
	Name   string
	Curves []Curve
}

// Face is the selected face: the surface the curves lie on and the body
// that owns it.
type Face struct {
	Name    string
	Surface Surface
	Body    solid.SDF3
}

// Selection is the user input. Exactly one sketch and one face are accepted.
type Selection struct {
	Sketches []Sketch
	Faces    []Face
}

// Validate checks the selection counts.
func (sel Selection) Validate() error {
	switch {
	case len(sel.Sketches) != 1:
		return &SelectionError{What: "sketch", Count: len(sel.Sketches)}
	case len(sel.Faces) != 1:
		return &SelectionError{What: "face", Count: len(sel.Faces)}
	case len(sel.Sketches[0].Curves) == 0:
		return &SelectionError{What: "curve", Count: 0}
	case sel.Faces[0].Surface == nil || sel.Faces[0].Body == nil:
		return fmt.Errorf("%w: face %q has no surface or body", ErrSelection, sel.Faces[0].Name)
	}
	return nil
}

// Cut is a feature applied for one curve. Feature is zero when the
// profile was computed without cutting.
type Cut struct {
	Curve   int
	Profile *Profile
	Feature Feature
}

// Report collects the outcome of Run.
type Report struct {
	Cuts   []Cut
	Errors []error
	// Body is the face's body after every successful cut.
	Body solid.SDF3
}

// Generate gouges a single curve on face. It is shorthand for Run with a
// one curve sketch.
func Generate(ctx context.Context, c Curve, face Face, k Kernel, cfg Config) (*Report, error) {
	return Run(ctx, Selection{
		Sketches: []Sketch{{Curves: []Curve{c}}},
		Faces:    []Face{face},
	}, k, cfg)
}

// Run computes a profile for every curve of the selected sketch and cuts
// each one from the face's body in curve order. Failures of one curve are
// collected in the report and do not stop later curves. The returned error
// is non-nil only for invalid input or cancellation, in which case the
// report holds the work done so far. A nil k computes the profiles
// without cutting them, leaving the body untouched.
func Run(ctx context.Context, sel Selection, k Kernel, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	face := sel.Faces[0]
	curves := sel.Sketches[0].Curves
	log := Logger()
	report := &Report{Body: face.Body}

	profiles, errs := computeProfiles(ctx, curves, face.Surface, cfg)
	for i, p := range profiles {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if errs[i] != nil {
			log.Warn("profile failed", slog.Int("curve", i), slog.Any("err", errs[i]))
			report.Errors = append(report.Errors, errs[i])
			continue
		}
		if k == nil {
			report.Cuts = append(report.Cuts, Cut{Curve: i, Profile: p})
			log.Info("profiled curve", slog.Int("curve", i), slog.Float64("length", p.Length))
			continue
		}
		feat, err := k.Cut(ctx, report.Body, p, cfg.UseRail)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return report, ctxErr
			}
			report.Errors = append(report.Errors, fmt.Errorf("curve %d: %w", i, err))
			continue
		}
		switch feat.Health {
		case Error:
			merr := &ModelingError{Curve: i, Feature: feat.Name, Kind: ErrCutFailed, Message: feat.Message}
			log.Warn("cut failed", slog.Int("curve", i), slog.String("msg", feat.Message))
			report.Errors = append(report.Errors, merr)
			continue
		case Warning:
			merr := &ModelingError{Curve: i, Feature: feat.Name, Kind: ErrCutWarning, Message: feat.Message}
			log.Warn("cut warning", slog.Int("curve", i), slog.String("msg", feat.Message))
			report.Errors = append(report.Errors, merr)
		}
		report.Body = feat.Result
		report.Cuts = append(report.Cuts, Cut{Curve: i, Profile: p, Feature: feat})
		log.Info("gouged curve", slog.Int("curve", i), slog.String("feature", feat.Name),
			slog.String("health", feat.Health.String()), slog.Float64("length", p.Length))
	}
	return report, ctx.Err()
}

// computeProfiles computes one profile per curve, concurrently when
// cfg.Workers > 1. Results are indexed by curve. Curves not started before
// ctx is cancelled get ctx.Err().
func computeProfiles(ctx context.Context, curves []Curve, s Surface, cfg Config) ([]*Profile, []error) {
	profiles := make([]*Profile, len(curves))
	errs := make([]error, len(curves))
	compute := func(i int) {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			return
		}
		p, err := NewProfile(curves[i], s, cfg)
		if err != nil {
			var ge *GeometryError
			if errors.As(err, &ge) {
				ge.Curve = i
			} else {
				err = fmt.Errorf("curve %d: %w", i, err)
			}
		}
		profiles[i], errs[i] = p, err
	}
	if cfg.Workers < 2 || len(curves) < 2 {
		for i := range curves {
			compute(i)
		}
		return profiles, errs
	}
	var wg sync.WaitGroup
	sem := make(chan struct{}, cfg.Workers)
	for i := range curves {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			compute(idx)
		}(i)
	}
	wg.Wait()
	return profiles, errs
}
