package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frame_sampler_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frame_sampler_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frame_sampler_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Extraction metrics
var (
	ExtractionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frame_sampler_extraction_runs_total",
			Help: "Total number of frame extraction runs by outcome",
		},
		// status: see RunStatuses
		[]string{"status"},
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "frame_sampler_extraction_duration_seconds",
			Help:    "Wall time of a complete extraction run",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	ExtractionsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frame_sampler_extractions_in_progress",
			Help: "Number of extraction runs currently holding a media handle",
		},
	)

	CapturePhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frame_sampler_capture_phase_duration_seconds",
			Help:    "Duration of each capture phase",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		// phase: probe, seek, paint, encode
		[]string{"phase"},
	)

	FramesCapturedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "frame_sampler_frames_captured_total",
			Help: "Total number of frames captured and encoded",
		},
	)

	CapturesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frame_sampler_captures_skipped_total",
			Help: "Captures skipped in best-effort mode",
		},
		[]string{"phase"},
	)

	EncodedFrameBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "frame_sampler_encoded_frame_bytes",
			Help:    "Size of encoded frames in bytes",
			Buckets: prometheus.ExponentialBuckets(4*1024, 2, 8), // 4KB .. 512KB
		},
	)

	DecoderOpensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frame_sampler_decoder_opens_total",
			Help: "Media handles opened, by decoding backend",
		},
		[]string{"backend"},
	)
)

// Source metrics
var (
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frame_sampler_source_fetch_total",
			Help: "Source resolutions by scheme and outcome",
		},
		[]string{"scheme", "status"},
	)

	SourceFetchBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frame_sampler_source_fetch_bytes_total",
			Help: "Bytes copied into temporary files for remote sources",
		},
		[]string{"scheme"},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frame_sampler_filesystem_retry_attempts_total",
			Help: "Retry attempts for stale NFS file handles",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frame_sampler_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frame_sampler_filesystem_retry_failures_total",
			Help: "Operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frame_sampler_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frame_sampler_filesystem_retry_duration_seconds",
			Help:    "Total time spent in a retried filesystem operation",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Memory metrics
var (
	GoMemLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frame_sampler_go_memlimit_bytes",
			Help: "GOMEMLIMIT applied at startup, 0 when unset",
		},
	)

	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frame_sampler_memory_usage_ratio",
			Help: "Heap allocation as a ratio of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frame_sampler_memory_paused",
			Help: "1 while new extractions are refused because of memory pressure",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "frame_sampler_memory_gc_pauses_total",
			Help: "Times admission was paused for memory pressure",
		},
	)
)

// AppInfo carries build information as labels
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "frame_sampler_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)
