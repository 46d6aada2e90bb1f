package sampler

import (
	"context"
	"errors"
	"time"

	"frame-sampler/internal/logging"
	"frame-sampler/internal/mediasource"
	"frame-sampler/internal/mediatypes"
	"frame-sampler/internal/metrics"
	"frame-sampler/internal/source"
	"frame-sampler/internal/surface"
)

// CapturedFrame is one extracted thumbnail.
type CapturedFrame struct {
	// Index is the position of the proportion in the request.
	Index      int     `json:"index"`
	Proportion float64 `json:"proportion"`
	// Target is the clamped seek target in seconds.
	Target float64 `json:"target"`
	// Time is where the decoder actually landed, in seconds.
	Time        float64 `json:"time"`
	Image       []byte  `json:"-"`
	ContentType string  `json:"contentType"`
}

// DecoderFactory builds the decoding backend for a local file.
type DecoderFactory func(path string) (mediasource.Decoder, mediatypes.Decoder, error)

// Resolver turns a reference (path, URL, object key) into a local file.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (*source.Source, error)
}

// Options configure a Sampler. The zero value is usable.
type Options struct {
	// Quality on a 0..1 scale; 0 selects surface.DefaultQuality.
	Quality float64
	// Encoder defaults to JPEG via surface.ImagingEncoder.
	Encoder surface.Encoder
	// BestEffort skips captures that fail instead of failing the run.
	BestEffort bool
	// Timeout bounds a whole run when positive.
	Timeout time.Duration
	// Decoder configures the default DecoderFactory.
	Decoder mediasource.Options
	// NewDecoder overrides backend selection.
	NewDecoder DecoderFactory
	// Resolver is required by ExtractFromRef.
	Resolver Resolver
}

// Sampler extracts thumbnails at proportional positions. It holds only
// configuration and is safe for concurrent use; every call runs its own
// session with its own decoder and surface.
type Sampler struct {
	opts Options
}

// New creates a Sampler.
func New(opts Options) *Sampler {
	if opts.Quality <= 0 {
		opts.Quality = surface.DefaultQuality
	}
	if opts.Encoder == nil {
		opts.Encoder = surface.ImagingEncoder{}
	}
	if opts.NewDecoder == nil {
		decOpts := opts.Decoder
		opts.NewDecoder = func(path string) (mediasource.Decoder, mediatypes.Decoder, error) {
			return mediasource.NewDecoder(path, decOpts)
		}
	}
	return &Sampler{opts: opts}
}

// ExtractFrames captures one frame per proportion from the video at path and
// returns them in input order. An empty proportions list selects
// DefaultProportions.
//
// Unless BestEffort is set, the run is all or nothing: any failure returns a
// typed error and no frames.
func (s *Sampler) ExtractFrames(ctx context.Context, path string, proportions []float64) ([]CapturedFrame, error) {
	props, err := normalizeProportions(proportions)
	if err != nil {
		metrics.ExtractionRunsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.extract(ctx, path, props)
}

// withTimeout applies Options.Timeout to ctx when set.
func (s *Sampler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return ctx, func() {}
}

// extract runs one session over already validated proportions.
func (s *Sampler) extract(ctx context.Context, path string, props []float64) (frames []CapturedFrame, err error) {
	start := time.Now()
	metrics.ExtractionsInProgress.Inc()
	defer func() {
		metrics.ExtractionsInProgress.Dec()
		metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
		metrics.ExtractionRunsTotal.WithLabelValues(runStatus(err, len(frames), len(props))).Inc()
	}()

	dec, backend, err := s.opts.NewDecoder(path)
	if err != nil {
		return nil, &SourceOpenError{Source: path, Err: err}
	}
	metrics.DecoderOpensTotal.WithLabelValues(string(backend)).Inc()
	logging.Debug("Extracting %d frames from %s with %s decoder", len(props), path, backend)

	sess, err := s.openSession(ctx, path, dec)
	if err != nil {
		return nil, err
	}
	defer sess.release()

	frames = make([]CapturedFrame, 0, len(props))
	for i, p := range props {
		frame, err := sess.capture(ctx, i, p)
		if err != nil {
			if !s.opts.BestEffort || ctx.Err() != nil {
				return nil, err
			}
			logging.Warn("Skipping frame %d of %s: %v", i, path, err)
			metrics.CapturesSkippedTotal.WithLabelValues(errorPhase(err)).Inc()
			continue
		}
		frames = append(frames, frame)
	}

	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	logging.Debug("Extracted %d/%d frames from %s in %v", len(frames), len(props), path, time.Since(start))
	return frames, nil
}

// ExtractFromRef resolves ref through the configured Resolver and extracts
// frames from it. Options.Timeout covers the fetch and the extraction
// together. The resolved source is released before returning.
func (s *Sampler) ExtractFromRef(ctx context.Context, ref string, proportions []float64) ([]CapturedFrame, error) {
	if s.opts.Resolver == nil {
		return nil, &SourceOpenError{Source: ref, Err: errors.New("no resolver configured")}
	}
	props, err := normalizeProportions(proportions)
	if err != nil {
		metrics.ExtractionRunsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	src, err := s.opts.Resolver.Resolve(ctx, ref)
	if err != nil {
		metrics.ExtractionRunsTotal.WithLabelValues("source_error").Inc()
		return nil, &SourceOpenError{Source: ref, Err: err}
	}
	defer func() {
		if err := src.Release(); err != nil {
			logging.Warn("failed to release source %s: %v", ref, err)
		}
	}()

	return s.extract(ctx, src.Path, props)
}

// runStatus labels a finished run for metrics.
func runStatus(err error, captured, requested int) string {
	var (
		openErr  *SourceOpenError
		loadErr  *MediaLoadError
		seekErr  *SeekError
		paintErr *PaintError
	)
	switch {
	case err == nil && captured < requested:
		return "partial"
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &openErr):
		return "source_error"
	case errors.As(err, &loadErr):
		return "load_error"
	case errors.As(err, &seekErr):
		return "seek_error"
	case errors.As(err, &paintErr):
		return "paint_error"
	case errors.Is(err, ErrNoFrames):
		return "no_frames"
	default:
		return "error"
	}
}

func errorPhase(err error) string {
	var paintErr *PaintError
	if errors.As(err, &paintErr) {
		return paintErr.Phase
	}
	return "seek"
}
