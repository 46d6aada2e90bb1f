// Package metrics provides Prometheus instrumentation for the frame sampler.
//
// All metrics are prefixed with "frame_sampler_" and registered with the
// default registry through promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of requests by method, route template, and status
//   - HTTPRequestDuration: Histogram of request duration by method and route template
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Extraction Metrics
//
//   - ExtractionRunsTotal: Counter of extraction runs by outcome (see [RunStatuses])
//   - ExtractionDuration: Histogram of whole-run wall time
//   - ExtractionsInProgress: Gauge of runs currently holding a media handle
//   - CapturePhaseDuration: Histogram by phase (probe, seek, paint, encode)
//   - FramesCapturedTotal: Counter of encoded frames
//   - CapturesSkippedTotal: Counter of best-effort skips by phase
//   - EncodedFrameBytes: Histogram of encoded frame sizes
//   - DecoderOpensTotal: Counter of opened handles by backend
//
// ## Source Metrics
//
//   - SourceFetchTotal: Counter of source resolutions by scheme and status
//   - SourceFetchBytes: Counter of bytes spooled to temporary files by scheme
//
// ## Filesystem Metrics
//
// Recorded through the observer returned by [NewFilesystemObserver]:
//   - FilesystemRetryAttempts, FilesystemRetrySuccess, FilesystemRetryFailures
//   - FilesystemStaleErrors
//   - FilesystemRetryDuration
//
// ## Memory Metrics
//
//   - GoMemLimit: Gauge of the GOMEMLIMIT applied at startup
//   - MemoryUsageRatio: Gauge of heap allocation relative to the limit
//   - MemoryPaused: Gauge set while extractions are refused
//   - MemoryGCPauses: Counter of pressure pauses
//
// ## Application Info
//
//   - AppInfo: Gauge with version, commit, and Go version labels
//
// # Usage
//
// Call [InitializeMetrics] once at startup so every label combination is
// exported with a zero value, then mount promhttp.Handler():
//
//	metrics.InitializeMetrics()
//	mux.Handle("/metrics", promhttp.Handler())
//
// # Prometheus Queries
//
// Extraction failure ratio:
//
//	sum(rate(frame_sampler_extraction_runs_total{status!~"success|partial"}[5m])) /
//	sum(rate(frame_sampler_extraction_runs_total[5m]))
//
// P95 seek latency:
//
//	histogram_quantile(0.95, sum(rate(frame_sampler_capture_phase_duration_seconds_bucket{phase="seek"}[5m])) by (le))
package metrics
