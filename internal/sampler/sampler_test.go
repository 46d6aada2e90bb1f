package sampler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"frame-sampler/internal/mediasource"
	"frame-sampler/internal/mediatypes"
	"frame-sampler/internal/source"
	"frame-sampler/internal/surface"
)

// fakeVideo describes a synthetic source. Decoders created from it snap
// targets down to keyframe boundaries when keyframe > 0.
type fakeVideo struct {
	meta      mediasource.Metadata
	probeErr  error
	keyframe  float64
	overshoot float64
	failSeek  func(t float64) error
	block     bool

	opened atomic.Int32
	closed atomic.Int32
}

func (v *fakeVideo) factory() DecoderFactory {
	return func(string) (mediasource.Decoder, mediatypes.Decoder, error) {
		v.opened.Add(1)
		return &fakeDecoder{video: v}, mediatypes.DecoderFFmpeg, nil
	}
}

type fakeDecoder struct {
	video *fakeVideo
}

func (d *fakeDecoder) Probe(ctx context.Context) (mediasource.Metadata, error) {
	return d.video.meta, d.video.probeErr
}

func (d *fakeDecoder) DecodeAt(ctx context.Context, t float64) (mediasource.Frame, error) {
	v := d.video
	if err := ctx.Err(); err != nil {
		return mediasource.Frame{}, err
	}
	if v.block {
		<-ctx.Done()
		return mediasource.Frame{}, ctx.Err()
	}
	if v.failSeek != nil {
		if err := v.failSeek(t); err != nil {
			return mediasource.Frame{}, err
		}
	}

	at := t
	if v.keyframe > 0 {
		at = math.Floor(t/v.keyframe) * v.keyframe
	}
	at += v.overshoot
	// past the last frame: fall back to the first
	if v.meta.Duration > 0 && at > v.meta.Duration {
		at = 0
	}

	w, h := v.meta.Width, v.meta.Height
	if w == 0 || h == 0 {
		w, h = 32, 18
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	shade := uint8(int(at*10) % 256)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = shade, 255-shade, 128, 255
	}
	return mediasource.Frame{Time: at, Image: img}, nil
}

func (d *fakeDecoder) Close() error {
	d.video.closed.Add(1)
	return nil
}

func waitClosed(t *testing.T, v *fakeVideo, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for v.closed.Load() < want {
		if time.Now().After(deadline) {
			t.Fatalf("decoders closed = %d, want %d", v.closed.Load(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func times(frames []CapturedFrame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f.Time
	}
	return out
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		t        float64
		duration float64
		want     float64
	}{
		{"inside window", 12, 100, 12},
		{"start edge", 0, 100, 0.05},
		{"end edge", 100, 100, 99.95},
		{"degenerate duration", 0.04, 0.08, 0.05},
		{"exactly two margins", 0.1, 0.1, 0.05},
		{"zero duration", 0, 0, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.t, tt.duration); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Clamp(%v, %v) = %v, want %v", tt.t, tt.duration, got, tt.want)
			}
		})
	}
}

func TestClampInvariant(t *testing.T) {
	for _, d := range []float64{0.11, 0.5, 1, 7.3, 100, 3600} {
		for p := 0.0; p <= 1.0; p += 0.01 {
			got := Clamp(d*p, d)
			if got < EdgeMargin || got > d-EdgeMargin {
				t.Fatalf("Clamp(%v*%v) = %v outside [%v, %v]", d, p, got, EdgeMargin, d-EdgeMargin)
			}
		}
	}
}

func TestSanitizeDuration(t *testing.T) {
	for _, d := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -5} {
		if got := SanitizeDuration(d); got != 0 {
			t.Errorf("SanitizeDuration(%v) = %v, want 0", d, got)
		}
	}
	if got := SanitizeDuration(12.5); got != 12.5 {
		t.Errorf("SanitizeDuration(12.5) = %v", got)
	}
}

func TestClampActual(t *testing.T) {
	tests := []struct {
		at, duration, want float64
	}{
		{12, 100, 12},
		{100.4, 100, 99.95},
		{0, 100, 0.05},
		{-1, 0.08, 0},
		{0.09, 0.08, 0.08},
		{3.2, 0, 3.2},
		{math.NaN(), 10, 0.05},
	}

	for _, tt := range tests {
		if got := clampActual(tt.at, tt.duration); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("clampActual(%v, %v) = %v, want %v", tt.at, tt.duration, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{12, "0:12"},
		{59.9, "0:59"},
		{60, "1:00"},
		{754.2, "12:34"},
		{3725, "62:05"},
		{-3, "0:00"},
		{math.NaN(), "0:00"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestExtractFrames(t *testing.T) {
	video := &fakeVideo{meta: mediasource.Metadata{Duration: 100, Width: 1920, Height: 1080}}
	s := New(Options{NewDecoder: video.factory()})

	frames, err := s.ExtractFrames(context.Background(), "clip.mp4", []float64{0.12, 0.5, 0.9})
	if err != nil {
		t.Fatalf("ExtractFrames() error = %v", err)
	}

	want := []float64{12, 50, 90}
	if len(frames) != len(want) {
		t.Fatalf("got %d frames, want %d", len(frames), len(want))
	}
	for i, f := range frames {
		if f.Index != i {
			t.Errorf("frame %d Index = %d", i, f.Index)
		}
		if math.Abs(f.Target-want[i]) > 1e-9 || math.Abs(f.Time-want[i]) > 1e-9 {
			t.Errorf("frame %d target/time = %v/%v, want %v", i, f.Target, f.Time, want[i])
		}
		if f.ContentType != "image/jpeg" {
			t.Errorf("frame %d ContentType = %q", i, f.ContentType)
		}
		img, err := jpeg.Decode(bytes.NewReader(f.Image))
		if err != nil {
			t.Fatalf("frame %d is not a JPEG: %v", i, err)
		}
		if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 360 {
			t.Errorf("frame %d size = %v, want 640x360", i, b)
		}
	}

	waitClosed(t, video, 1)
}

func TestExtractFramesDefaultProportions(t *testing.T) {
	video := &fakeVideo{meta: mediasource.Metadata{Duration: 50, Width: 320, Height: 240}}
	s := New(Options{NewDecoder: video.factory()})

	frames, err := s.ExtractFrames(context.Background(), "clip.mp4", nil)
	if err != nil {
		t.Fatalf("ExtractFrames() error = %v", err)
	}
	if len(frames) != len(DefaultProportions) {
		t.Fatalf("got %d frames, want %d", len(frames), len(DefaultProportions))
	}
	for i, f := range frames {
		if f.Proportion != DefaultProportions[i] {
			t.Errorf("frame %d proportion = %v, want %v", i, f.Proportion, DefaultProportions[i])
		}
	}
}

func TestExtractFramesOrderAndClampInvariant(t *testing.T) {
	video := &fakeVideo{
		meta:     mediasource.Metadata{Duration: 37.4, Width: 640, Height: 360},
		keyframe: 2,
	}
	s := New(Options{NewDecoder: video.factory()})

	props := []float64{1, 0.9, 0, 0.5, 0.25, 1, 0}
	frames, err := s.ExtractFrames(context.Background(), "clip.mp4", props)
	if err != nil {
		t.Fatalf("ExtractFrames() error = %v", err)
	}
	if len(frames) != len(props) {
		t.Fatalf("got %d frames, want %d", len(frames), len(props))
	}
	for i, f := range frames {
		if f.Index != i || f.Proportion != props[i] {
			t.Errorf("frame %d out of order: %+v", i, f)
		}
		if f.Time < EdgeMargin || f.Time > 37.4-EdgeMargin {
			t.Errorf("frame %d time %v violates the clamp window", i, f.Time)
		}
	}
}

func TestExtractFramesKeyframeOvershoot(t *testing.T) {
	video := &fakeVideo{
		meta:      mediasource.Metadata{Duration: 10},
		overshoot: 0.04,
	}
	s := New(Options{NewDecoder: video.factory()})

	frames, err := s.ExtractFrames(context.Background(), "clip.mp4", []float64{1})
	if err != nil {
		t.Fatalf("ExtractFrames() error = %v", err)
	}
	// target 9.95 lands on 9.99, reported inside the window
	if got := frames[0].Time; math.Abs(got-9.95) > 1e-9 {
		t.Errorf("time = %v, want 9.95", got)
	}
}

func TestExtractFramesShortSource(t *testing.T) {
	video := &fakeVideo{meta: mediasource.Metadata{Duration: 0.08, Width: 160, Height: 90}}
	s := New(Options{NewDecoder: video.factory()})

	frames, err := s.ExtractFrames(context.Background(), "tiny.mp4", []float64{0.5})
	if err != nil {
		t.Fatalf("ExtractFrames() error = %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Target != EdgeMargin {
		t.Errorf("target = %v, want %v", frames[0].Target, EdgeMargin)
	}
	if tm := frames[0].Time; tm < 0 || tm > 0.08 {
		t.Errorf("time = %v, want within [0, 0.08]", tm)
	}
}

func TestExtractFramesUnknownDuration(t *testing.T) {
	for _, d := range []float64{0, math.NaN(), math.Inf(1)} {
		video := &fakeVideo{meta: mediasource.Metadata{Duration: d}}
		s := New(Options{NewDecoder: video.factory()})

		frames, err := s.ExtractFrames(context.Background(), "live.ts", []float64{0.2, 0.8})
		if err != nil {
			t.Fatalf("duration %v: ExtractFrames() error = %v", d, err)
		}
		if len(frames) != 2 {
			t.Fatalf("duration %v: got %d frames, want 2", d, len(frames))
		}
		for _, f := range frames {
			if f.Target != EdgeMargin {
				t.Errorf("duration %v: target = %v, want %v", d, f.Target, EdgeMargin)
			}
		}
	}
}

func TestExtractFramesIdempotent(t *testing.T) {
	video := &fakeVideo{
		meta:     mediasource.Metadata{Duration: 93.7, Width: 1280, Height: 720},
		keyframe: 1.5,
	}
	s := New(Options{NewDecoder: video.factory()})
	props := []float64{0.12, 0.32, 0.55, 0.75, 0.92}

	first, err := s.ExtractFrames(context.Background(), "clip.mp4", props)
	if err != nil {
		t.Fatalf("first ExtractFrames() error = %v", err)
	}
	second, err := s.ExtractFrames(context.Background(), "clip.mp4", props)
	if err != nil {
		t.Fatalf("second ExtractFrames() error = %v", err)
	}

	a, b := times(first), times(second)
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			t.Errorf("frame %d time %v != %v", i, a[i], b[i])
		}
	}
}

func TestExtractFramesInvalidProportion(t *testing.T) {
	video := &fakeVideo{meta: mediasource.Metadata{Duration: 10}}
	s := New(Options{NewDecoder: video.factory()})

	for _, props := range [][]float64{{0.5, 1.2}, {-0.1}, {math.NaN()}} {
		frames, err := s.ExtractFrames(context.Background(), "clip.mp4", props)
		if !errors.Is(err, ErrInvalidProportion) {
			t.Errorf("ExtractFrames(%v) error = %v, want ErrInvalidProportion", props, err)
		}
		if frames != nil {
			t.Errorf("ExtractFrames(%v) returned frames on error", props)
		}
	}
	if video.opened.Load() != 0 {
		t.Error("source must not be opened for invalid proportions")
	}
}

func TestExtractFramesLoadFailure(t *testing.T) {
	cause := errors.New("invalid data found when processing input")
	video := &fakeVideo{probeErr: cause}
	s := New(Options{NewDecoder: video.factory(), BestEffort: true})

	frames, err := s.ExtractFrames(context.Background(), "broken.mp4", []float64{0.5})
	var loadErr *MediaLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("ExtractFrames() error = %v, want *MediaLoadError", err)
	}
	if loadErr.Source != "broken.mp4" {
		t.Errorf("MediaLoadError.Source = %q", loadErr.Source)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error chain lost the cause: %v", err)
	}
	if frames != nil {
		t.Errorf("got %d frames on load failure, want none", len(frames))
	}
	waitClosed(t, video, 1)
}

func TestExtractFramesSourceOpenFailure(t *testing.T) {
	s := New(Options{Decoder: mediasource.DefaultOptions()})

	missing := filepath.Join(t.TempDir(), "missing.mp4")
	frames, err := s.ExtractFrames(context.Background(), missing, nil)
	var openErr *SourceOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("ExtractFrames() error = %v, want *SourceOpenError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error chain should reach os.ErrNotExist: %v", err)
	}
	if frames != nil {
		t.Error("frames returned on source open failure")
	}
}

func TestExtractFramesSeekFailure(t *testing.T) {
	cause := errors.New("decode error")
	newVideo := func() *fakeVideo {
		return &fakeVideo{
			meta: mediasource.Metadata{Duration: 100},
			failSeek: func(t float64) error {
				if t == 50 {
					return cause
				}
				return nil
			},
		}
	}
	props := []float64{0.1, 0.5, 0.9}

	video := newVideo()
	frames, err := New(Options{NewDecoder: video.factory()}).ExtractFrames(context.Background(), "clip.mp4", props)
	var seekErr *SeekError
	if !errors.As(err, &seekErr) {
		t.Fatalf("ExtractFrames() error = %v, want *SeekError", err)
	}
	if seekErr.Index != 1 || seekErr.Target != 50 {
		t.Errorf("SeekError = %+v", seekErr)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error chain lost the cause: %v", err)
	}
	if frames != nil {
		t.Error("all-or-nothing run returned partial frames")
	}

	video = newVideo()
	frames, err = New(Options{NewDecoder: video.factory(), BestEffort: true}).ExtractFrames(context.Background(), "clip.mp4", props)
	if err != nil {
		t.Fatalf("best-effort ExtractFrames() error = %v", err)
	}
	if len(frames) != 2 || frames[0].Index != 0 || frames[1].Index != 2 {
		t.Errorf("best-effort frames = %+v, want indexes 0 and 2", frames)
	}
}

func TestExtractFramesBestEffortNothingCaptured(t *testing.T) {
	video := &fakeVideo{
		meta:     mediasource.Metadata{Duration: 100},
		failSeek: func(float64) error { return errors.New("corrupt") },
	}
	s := New(Options{NewDecoder: video.factory(), BestEffort: true})

	frames, err := s.ExtractFrames(context.Background(), "clip.mp4", []float64{0.2, 0.4})
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("ExtractFrames() error = %v, want ErrNoFrames", err)
	}
	if frames != nil {
		t.Error("frames returned with ErrNoFrames")
	}
}

type failingEncoder struct{}

func (failingEncoder) Encode(image.Image, int) ([]byte, error) {
	return nil, errors.New("encoder exploded")
}

func (failingEncoder) ContentType() string { return "image/jpeg" }

func TestExtractFramesEncodeFailure(t *testing.T) {
	video := &fakeVideo{meta: mediasource.Metadata{Duration: 10}}
	s := New(Options{NewDecoder: video.factory(), Encoder: failingEncoder{}})

	_, err := s.ExtractFrames(context.Background(), "clip.mp4", []float64{0.5})
	var paintErr *PaintError
	if !errors.As(err, &paintErr) {
		t.Fatalf("ExtractFrames() error = %v, want *PaintError", err)
	}
	if paintErr.Phase != PhaseEncode || paintErr.Index != 0 {
		t.Errorf("PaintError = %+v", paintErr)
	}
}

func TestExtractFramesTimeout(t *testing.T) {
	video := &fakeVideo{meta: mediasource.Metadata{Duration: 10}, block: true}
	s := New(Options{NewDecoder: video.factory(), Timeout: 30 * time.Millisecond, BestEffort: true})

	frames, err := s.ExtractFrames(context.Background(), "clip.mp4", []float64{0.5, 0.6})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ExtractFrames() error = %v, want deadline exceeded", err)
	}
	var seekErr *SeekError
	if !errors.As(err, &seekErr) {
		t.Errorf("deadline during seek should surface as *SeekError: %v", err)
	}
	if frames != nil {
		t.Error("frames returned after timeout")
	}
	waitClosed(t, video, 1)
}

func TestExtractFramesCanceled(t *testing.T) {
	video := &fakeVideo{meta: mediasource.Metadata{Duration: 10}}
	s := New(Options{NewDecoder: video.factory()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ExtractFrames(ctx, "clip.mp4", []float64{0.5}); !errors.Is(err, context.Canceled) {
		t.Errorf("ExtractFrames() error = %v, want context.Canceled", err)
	}
}

func TestExtractFramesConcurrentRuns(t *testing.T) {
	videos := make(map[string]*fakeVideo)
	for i := 1; i <= 8; i++ {
		videos[fmt.Sprintf("clip-%d.mp4", i)] = &fakeVideo{
			meta: mediasource.Metadata{Duration: float64(i * 10), Width: 64, Height: 36},
		}
	}

	// one Sampler shared by every run
	s := New(Options{NewDecoder: func(path string) (mediasource.Decoder, mediatypes.Decoder, error) {
		return videos[path].factory()(path)
	}})

	var wg sync.WaitGroup
	errs := make(chan error, len(videos))
	for path, video := range videos {
		wg.Add(1)
		go func(path string, duration float64) {
			defer wg.Done()
			frames, err := s.ExtractFrames(context.Background(), path, []float64{0.25, 0.5})
			if err != nil {
				errs <- err
				return
			}
			for i, p := range []float64{0.25, 0.5} {
				if want := Clamp(duration*p, duration); math.Abs(frames[i].Time-want) > 1e-9 {
					errs <- fmt.Errorf("%s frame %d time = %v, want %v", path, i, frames[i].Time, want)
				}
			}
		}(path, video.meta.Duration)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

type fakeResolver struct {
	path     string
	err      error
	delay    time.Duration
	released atomic.Int32
}

func (r *fakeResolver) Resolve(ctx context.Context, ref string) (*source.Source, error) {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return source.New(r.path, filepath.Base(r.path), "http", 0, func() error {
		r.released.Add(1)
		return nil
	}), nil
}

func TestExtractFromRef(t *testing.T) {
	video := &fakeVideo{meta: mediasource.Metadata{Duration: 20}}
	resolver := &fakeResolver{path: "/tmp/download.mp4"}
	s := New(Options{NewDecoder: video.factory(), Resolver: resolver})

	frames, err := s.ExtractFromRef(context.Background(), "https://example.com/clip.mp4", []float64{0.5})
	if err != nil {
		t.Fatalf("ExtractFromRef() error = %v", err)
	}
	if len(frames) != 1 || frames[0].Time != 10 {
		t.Errorf("frames = %+v", frames)
	}
	if resolver.released.Load() != 1 {
		t.Errorf("source released %d times, want 1", resolver.released.Load())
	}

	// load failures still release the download
	video.probeErr = errors.New("not a video")
	if _, err := s.ExtractFromRef(context.Background(), "https://example.com/clip.mp4", nil); err == nil {
		t.Fatal("ExtractFromRef() expected error")
	}
	if resolver.released.Load() != 2 {
		t.Errorf("source released %d times, want 2", resolver.released.Load())
	}
}

func TestExtractFromRefUnreachable(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	s := New(Options{Resolver: &fakeResolver{err: cause}})

	frames, err := s.ExtractFromRef(context.Background(), "https://unreachable.invalid/clip.mp4", nil)
	var openErr *SourceOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("ExtractFromRef() error = %v, want *SourceOpenError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error chain lost the cause: %v", err)
	}
	if frames != nil {
		t.Error("frames returned for unreachable source")
	}

	if _, err := New(Options{}).ExtractFromRef(context.Background(), "x", nil); !errors.As(err, &openErr) {
		t.Errorf("ExtractFromRef() without resolver error = %v, want *SourceOpenError", err)
	}
}

func TestExtractFromRefTimeoutCoversFetch(t *testing.T) {
	video := &fakeVideo{meta: mediasource.Metadata{Duration: 10}, block: true}
	resolver := &fakeResolver{path: "/tmp/download.mp4", delay: 150 * time.Millisecond}
	s := New(Options{NewDecoder: video.factory(), Resolver: resolver, Timeout: 200 * time.Millisecond})

	start := time.Now()
	_, err := s.ExtractFromRef(context.Background(), "https://example.com/clip.mp4", []float64{0.5})
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ExtractFromRef() error = %v, want deadline exceeded", err)
	}
	// one budget for fetch and decode, not one each
	if elapsed >= 300*time.Millisecond {
		t.Errorf("ExtractFromRef() took %v, want about 200ms", elapsed)
	}
	if resolver.released.Load() != 1 {
		t.Errorf("source released %d times, want 1", resolver.released.Load())
	}
	waitClosed(t, video, 1)
}

func TestExtractFromRefInvalidProportion(t *testing.T) {
	resolver := &fakeResolver{path: "/tmp/download.mp4"}
	s := New(Options{Resolver: resolver})

	if _, err := s.ExtractFromRef(context.Background(), "https://example.com/clip.mp4", []float64{1.5}); !errors.Is(err, ErrInvalidProportion) {
		t.Errorf("ExtractFromRef() error = %v, want ErrInvalidProportion", err)
	}
	if resolver.released.Load() != 0 {
		t.Error("source fetched for an invalid request")
	}
}

func TestRunStatus(t *testing.T) {
	tests := []struct {
		err  error
		got  int
		want string
	}{
		{nil, 3, "success"},
		{nil, 2, "partial"},
		{&SourceOpenError{Err: errors.New("x")}, 0, "source_error"},
		{&MediaLoadError{Err: errors.New("x")}, 0, "load_error"},
		{&SeekError{Err: errors.New("x")}, 0, "seek_error"},
		{&PaintError{Err: errors.New("x")}, 0, "paint_error"},
		{&SeekError{Err: context.DeadlineExceeded}, 0, "canceled"},
		{ErrNoFrames, 0, "no_frames"},
		{errors.New("unexpected"), 0, "error"},
	}

	for _, tt := range tests {
		if got := runStatus(tt.err, tt.got, 3); got != tt.want {
			t.Errorf("runStatus(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	err := &PaintError{Index: 2, Phase: PhaseEncode, Err: surface.ErrReleased}
	if got := err.Error(); got != "encode frame 2: surface released" {
		t.Errorf("PaintError.Error() = %q", got)
	}
	if !errors.Is(err, surface.ErrReleased) {
		t.Error("PaintError should unwrap")
	}

	seek := &SeekError{Index: 0, Target: 12, Err: mediasource.ErrSeekInProgress}
	if got := seek.Error(); got != "seek frame 0 to 12.000s: seek already in progress" {
		t.Errorf("SeekError.Error() = %q", got)
	}
}
