package gouge

import (
	"errors"
	"fmt"
)

var (
	// ErrSelection is the kind of every *SelectionError.
	ErrSelection = errors.New("invalid selection")
	// ErrNormalUndefined means the surface could not report a normal at a station.
	ErrNormalUndefined = errors.New("surface normal undefined")
	// ErrDegenerateCurve means a computation divided by a vanishing length.
	ErrDegenerateCurve = errors.New("degenerate curve")
	// ErrNotTangent means the rail does not touch a profile circle.
	ErrNotTangent = errors.New("rail not tangent to profile circle")
	// ErrCutFailed means the kernel reported an error health state.
	ErrCutFailed = errors.New("cut failed")
	// ErrCutWarning means the kernel reported a warning health state.
	// It is informational and the cut is kept.
	ErrCutWarning = errors.New("cut warning")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid config")
)

// SelectionError reports a selection with the wrong number of entities.
type SelectionError struct {
	What  string // "sketch", "face" or "curve".
	Count int
}

func (e *SelectionError) Error() string {
	if e.What == "curve" {
		return fmt.Sprintf("%v: sketch has %d curves, want at least 1", ErrSelection, e.Count)
	}
	return fmt.Sprintf("%v: got %d %ss, want exactly 1", ErrSelection, e.Count, e.What)
}

func (e *SelectionError) Unwrap() error { return ErrSelection }

// GeometryError is a per-curve failure of the profile computation.
// Kind is one of ErrNormalUndefined, ErrDegenerateCurve or ErrNotTangent.
type GeometryError struct {
	Curve   int // index of the curve in the sketch, -1 if unknown.
	Station int // index of the station, -1 if not station specific.
	Kind    error
	Err     error // underlying cause, may be nil.
}

func (e *GeometryError) Error() string {
	msg := e.Kind.Error()
	if e.Station >= 0 {
		msg = fmt.Sprintf("station %d: %s", e.Station, msg)
	}
	if e.Curve >= 0 {
		msg = fmt.Sprintf("curve %d: %s", e.Curve, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GeometryError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func geometryErr(station int, kind, err error) *GeometryError {
	return &GeometryError{Curve: -1, Station: station, Kind: kind, Err: err}
}

// ModelingError carries the message of a kernel feature whose health is
// not healthy. Kind is ErrCutFailed or ErrCutWarning.
type ModelingError struct {
	Curve   int
	Feature string
	Kind    error
	Message string
}

func (e *ModelingError) Error() string {
	return fmt.Sprintf("curve %d: feature %q: %v: %s", e.Curve, e.Feature, e.Kind, e.Message)
}

func (e *ModelingError) Unwrap() error { return e.Kind }
