package handlers

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"frame-sampler/internal/metadata"
	"frame-sampler/internal/sampler"
	"frame-sampler/internal/source"
	"frame-sampler/internal/startup"
	"frame-sampler/internal/workers"

	"golang.org/x/sync/semaphore"
)

// maxConcurrentExtractions caps the mixed CPU/IO worker count for extractions.
const maxConcurrentExtractions = 8

// FrameExtractor is the part of *sampler.Sampler the handlers use.
type FrameExtractor interface {
	ExtractFrames(ctx context.Context, path string, proportions []float64) ([]sampler.CapturedFrame, error)
	ExtractFromRef(ctx context.Context, ref string, proportions []float64) ([]sampler.CapturedFrame, error)
}

// Uploader spools request bodies to local files.
type Uploader interface {
	FromUpload(name string, body io.Reader) (*source.Source, error)
}

// MetadataGenerator is the part of *metadata.Client the handlers use.
type MetadataGenerator interface {
	Generate(ctx context.Context, req metadata.Request) (*metadata.Response, error)
}

// PressureGauge reports memory pressure; *memory.Monitor implements it.
type PressureGauge interface {
	IsPaused() bool
}

type Handlers struct {
	sampler  FrameExtractor
	uploads  Uploader
	metadata MetadataGenerator

	proportions    []float64
	maxUploadBytes int64

	limiter  *semaphore.Weighted
	pressure PressureGauge
	active   atomic.Int64
	ready    atomic.Bool
	started  time.Time
}

// New creates the handlers. meta may be nil when no collaborator is configured.
func New(s FrameExtractor, uploads Uploader, meta MetadataGenerator, config *startup.Config) *Handlers {
	h := &Handlers{
		sampler:        s,
		uploads:        uploads,
		metadata:       meta,
		proportions:    config.SampleProportions,
		maxUploadBytes: config.MaxUploadBytes,
		limiter:        semaphore.NewWeighted(int64(workers.ForMixed(maxConcurrentExtractions))),
		started:        time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetPressureGauge makes extraction requests fail fast with 503 while g
// reports pressure.
func (h *Handlers) SetPressureGauge(g PressureGauge) {
	h.pressure = g
}

// SetReady flips the readiness probe, e.g. to drain traffic during shutdown.
func (h *Handlers) SetReady(ready bool) {
	h.ready.Store(ready)
}
