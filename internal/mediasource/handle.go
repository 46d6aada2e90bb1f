package mediasource

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"frame-sampler/internal/logging"
)

type seekRequest struct {
	ctx    context.Context
	target float64
	// result has one slot so the loop never blocks on an abandoned caller.
	result chan seekResult
}

type seekResult struct {
	frame Frame
	err   error
}

// Handle is an opened media source. It becomes ready exactly once, then
// accepts one seek at a time. All decoder calls run on the handle's own
// goroutine; callers suspend on Ready and SeekTo.
type Handle struct {
	dec Decoder

	ready   chan struct{}
	meta    Metadata
	loadErr error

	seeks     chan seekRequest
	done      chan struct{}
	released  chan struct{}
	closeOnce sync.Once
	seeking   atomic.Bool

	mu      sync.Mutex
	current image.Image
}

// Open starts loading metadata for dec in the background and returns
// immediately. ctx bounds the metadata load only.
func Open(ctx context.Context, dec Decoder) *Handle {
	h := &Handle{
		dec:      dec,
		ready:    make(chan struct{}),
		seeks:    make(chan seekRequest),
		done:     make(chan struct{}),
		released: make(chan struct{}),
	}
	go h.run(ctx)
	return h
}

func (h *Handle) run(ctx context.Context) {
	defer func() {
		if err := h.dec.Close(); err != nil {
			logging.Warn("failed to close decoder: %v", err)
		}
		close(h.released)
	}()

	meta, err := h.dec.Probe(ctx)
	if err != nil {
		h.loadErr = &LoadError{Err: err}
	} else {
		h.meta = meta.sanitize()
	}
	close(h.ready)
	if err != nil {
		return
	}

	for {
		select {
		case <-h.done:
			return
		case req := <-h.seeks:
			frame, err := h.dec.DecodeAt(req.ctx, req.target)
			req.result <- seekResult{frame: frame, err: err}
		}
	}
}

// Ready suspends until metadata has loaded or failed. Load failures are
// returned as *LoadError.
func (h *Handle) Ready(ctx context.Context) (Metadata, error) {
	select {
	case <-h.ready:
		return h.meta, h.loadErr
	case <-h.done:
		return Metadata{}, ErrClosed
	case <-ctx.Done():
		return Metadata{}, ctx.Err()
	}
}

// SeekTo moves the decode position to t seconds and suspends until the
// frame there is available. It returns the time the decoder landed on.
// Overlapping calls fail with ErrSeekInProgress.
func (h *Handle) SeekTo(ctx context.Context, t float64) (float64, error) {
	select {
	case <-h.ready:
	default:
		return 0, ErrNotReady
	}
	if h.loadErr != nil {
		return 0, h.loadErr
	}
	if !h.seeking.CompareAndSwap(false, true) {
		return 0, ErrSeekInProgress
	}
	defer h.seeking.Store(false)

	req := seekRequest{ctx: ctx, target: t, result: make(chan seekResult, 1)}
	select {
	case h.seeks <- req:
	case <-h.done:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case res := <-req.result:
		if res.err != nil {
			return 0, res.err
		}
		if res.frame.Image == nil {
			return 0, ErrEmptyFrame
		}
		h.mu.Lock()
		h.current = res.frame.Image
		h.mu.Unlock()
		return res.frame.Time, nil
	case <-h.done:
		return 0, ErrClosed
	case <-ctx.Done():
		// the decoder may still finish; its result lands in the buffered
		// channel and is dropped
		return 0, ctx.Err()
	}
}

// CurrentFrame returns the frame of the last positioned seek, or nil.
func (h *Handle) CurrentFrame() image.Image {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Close stops the handle. It does not wait for an in-flight decode; the
// decoder is closed as soon as the handle goroutine is free. Safe to call
// more than once.
func (h *Handle) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		h.current = nil
		h.mu.Unlock()
	})
}

// decoderClosed is closed once the decoder has been closed.
func (h *Handle) decoderClosed() <-chan struct{} {
	return h.released
}
