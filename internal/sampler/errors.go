package sampler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProportion is returned when a proportion is NaN or outside [0,1].
	ErrInvalidProportion = errors.New("proportion must be within [0,1]")
	// ErrNoFrames is returned in best-effort mode when every capture failed.
	ErrNoFrames = errors.New("no frames captured")
)

// Capture phases reported by PaintError.
const (
	PhasePaint  = "paint"
	PhaseEncode = "encode"
)

// SourceOpenError reports that the byte source could not be opened or
// resolved, before any decoding started.
type SourceOpenError struct {
	Source string
	Err    error
}

func (e *SourceOpenError) Error() string {
	return fmt.Sprintf("open source %s: %v", e.Source, e.Err)
}

func (e *SourceOpenError) Unwrap() error { return e.Err }

// MediaLoadError reports that metadata never resolved.
type MediaLoadError struct {
	Source string
	Err    error
}

func (e *MediaLoadError) Error() string {
	return fmt.Sprintf("load media %s: %v", e.Source, e.Err)
}

func (e *MediaLoadError) Unwrap() error { return e.Err }

// SeekError reports a seek that never positioned.
type SeekError struct {
	Index  int
	Target float64
	Err    error
}

func (e *SeekError) Error() string {
	return fmt.Sprintf("seek frame %d to %.3fs: %v", e.Index, e.Target, e.Err)
}

func (e *SeekError) Unwrap() error { return e.Err }

// PaintError reports a failure drawing or encoding a positioned frame.
type PaintError struct {
	Index int
	Phase string
	Err   error
}

func (e *PaintError) Error() string {
	return fmt.Sprintf("%s frame %d: %v", e.Phase, e.Index, e.Err)
}

func (e *PaintError) Unwrap() error { return e.Err }
