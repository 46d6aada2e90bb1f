package mediasource

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
)

// Metadata is what a source reports once it becomes ready.
type Metadata struct {
	// Duration in seconds; 0 when the container does not declare one.
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Codec    string  `json:"codec,omitempty"`
}

// Frame is the decoded picture at a positioned seek.
type Frame struct {
	// Time is the presentation time the decoder actually landed on, in seconds.
	Time  float64
	Image image.Image
}

// Decoder is a decoding backend. Calls are never made concurrently:
// the Handle serializes Probe and every DecodeAt on one goroutine.
type Decoder interface {
	// Probe loads container metadata.
	Probe(ctx context.Context) (Metadata, error)
	// DecodeAt positions the decoder at (or nearest to) t seconds and
	// returns the frame available there.
	DecodeAt(ctx context.Context, t float64) (Frame, error)
	// Close releases decoder resources. It does not remove the source file.
	Close() error
}

var (
	// ErrSeekInProgress is returned when SeekTo is called while another seek
	// on the same handle has not been positioned yet.
	ErrSeekInProgress = errors.New("seek already in progress")
	// ErrClosed is returned by operations on a closed handle.
	ErrClosed = errors.New("media handle closed")
	// ErrNotReady is returned by SeekTo before metadata has loaded.
	ErrNotReady = errors.New("media handle not ready")
	// ErrNoVideoStream is returned by Probe for sources without a video stream.
	ErrNoVideoStream = errors.New("no video stream")
	// ErrEmptyFrame is returned when the decoder produced no picture.
	ErrEmptyFrame = errors.New("decoder produced no frame")
)

// LoadError reports that metadata never resolved.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load metadata: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// sanitize turns undeclared or nonsense values into zero.
func (m Metadata) sanitize() Metadata {
	if math.IsNaN(m.Duration) || math.IsInf(m.Duration, 0) || m.Duration < 0 {
		m.Duration = 0
	}
	if m.Width < 0 {
		m.Width = 0
	}
	if m.Height < 0 {
		m.Height = 0
	}
	return m
}
