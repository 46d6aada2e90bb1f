package metrics

// Label values shared with the packages that record them.
var (
	RunStatuses     = []string{"success", "partial", "source_error", "load_error", "seek_error", "paint_error", "no_frames", "canceled", "invalid", "error"}
	CapturePhases   = []string{"probe", "seek", "paint", "encode"}
	DecoderBackends = []string{"ffmpeg", "mpeg1"}
	SourceSchemes   = []string{"file", "http", "https", "s3", "upload"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
func InitializeMetrics() {
	for _, status := range RunStatuses {
		ExtractionRunsTotal.WithLabelValues(status)
	}

	for _, phase := range CapturePhases {
		CapturePhaseDuration.WithLabelValues(phase)
		CapturesSkippedTotal.WithLabelValues(phase)
	}

	for _, backend := range DecoderBackends {
		DecoderOpensTotal.WithLabelValues(backend)
	}

	for _, scheme := range SourceSchemes {
		SourceFetchTotal.WithLabelValues(scheme, "success")
		SourceFetchTotal.WithLabelValues(scheme, "error")
		SourceFetchBytes.WithLabelValues(scheme)
	}

	for _, op := range []string{"stat", "open"} {
		for _, vol := range []string{"local", "download"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}

// SetAppInfo publishes build information once at startup.
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
