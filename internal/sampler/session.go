package sampler

import (
	"context"
	"time"

	"frame-sampler/internal/mediasource"
	"frame-sampler/internal/metrics"
	"frame-sampler/internal/surface"
)

// session owns the handle and surface of one run.
type session struct {
	handle   *mediasource.Handle
	surface  *surface.Surface
	duration float64
	quality  float64
}

// openSession opens dec and waits for its metadata. On failure nothing is
// left open.
func (s *Sampler) openSession(ctx context.Context, path string, dec mediasource.Decoder) (*session, error) {
	h := mediasource.Open(ctx, dec)

	start := time.Now()
	meta, err := h.Ready(ctx)
	metrics.CapturePhaseDuration.WithLabelValues("probe").Observe(time.Since(start).Seconds())
	if err != nil {
		h.Close()
		return nil, &MediaLoadError{Source: path, Err: err}
	}

	w, hgt := surface.Size(meta.Width, meta.Height)
	return &session{
		handle:   h,
		surface:  surface.New(w, hgt, s.opts.Encoder),
		duration: SanitizeDuration(meta.Duration),
		quality:  s.opts.Quality,
	}, nil
}

func (s *session) release() {
	s.surface.Release()
	s.handle.Close()
}

// capture seeks to proportion p of the duration, then paints and encodes
// the positioned frame. Seeks are strictly sequential.
func (s *session) capture(ctx context.Context, index int, p float64) (CapturedFrame, error) {
	target := Clamp(s.duration*p, s.duration)

	start := time.Now()
	at, err := s.handle.SeekTo(ctx, target)
	metrics.CapturePhaseDuration.WithLabelValues("seek").Observe(time.Since(start).Seconds())
	if err != nil {
		return CapturedFrame{}, &SeekError{Index: index, Target: target, Err: err}
	}

	start = time.Now()
	err = s.surface.Paint(s.handle.CurrentFrame())
	metrics.CapturePhaseDuration.WithLabelValues("paint").Observe(time.Since(start).Seconds())
	if err != nil {
		return CapturedFrame{}, &PaintError{Index: index, Phase: PhasePaint, Err: err}
	}

	start = time.Now()
	data, err := s.surface.Encode(s.quality)
	metrics.CapturePhaseDuration.WithLabelValues("encode").Observe(time.Since(start).Seconds())
	if err != nil {
		return CapturedFrame{}, &PaintError{Index: index, Phase: PhaseEncode, Err: err}
	}

	metrics.FramesCapturedTotal.Inc()
	metrics.EncodedFrameBytes.Observe(float64(len(data)))

	return CapturedFrame{
		Index:       index,
		Proportion:  p,
		Target:      target,
		Time:        clampActual(at, s.duration),
		Image:       data,
		ContentType: s.surface.ContentType(),
	}, nil
}
