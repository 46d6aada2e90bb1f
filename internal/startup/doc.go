// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - SAMPLE_PROPORTIONS: Comma separated capture positions in [0,1] (default: 0.12,0.32,0.55,0.75,0.92)
//   - SAMPLE_TIMEOUT: Deadline for one extraction run as Go duration (default: 2m)
//   - SAMPLE_BEST_EFFORT: Skip failed captures instead of failing the run (default: false)
//   - ENCODER: imaging, png or vips (default: imaging)
//   - JPEG_QUALITY: Encoder quality in (0,1] (default: 0.85)
//   - PREFER_PURE_GO_MPEG: Decode MPEG-1 in-process even when ffmpeg exists (default: false)
//   - MAX_UPLOAD_BYTES: Size cap for uploads and downloads (default: 200 MiB)
//   - FETCH_TIMEOUT: Deadline for fetching a remote source (default: 60s)
//   - TEMP_DIR: Where uploads and downloads are spooled (default: system temp dir)
//   - S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY, S3_USE_SSL: S3/MinIO source access
//   - METADATA_URL: Metadata collaborator endpoint
//   - SAMPLER_WORKERS: Fixed worker count (default: derived from GOMAXPROCS)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//	startup.LogDecoderInit(config.PreferPureGoMPEG)
//	startup.LogEncoderInit(config.Encoder, config.JPEGQuality)
//	startup.LogServerStarted(startup.ServerConfig{...})
//	startup.LogShutdownInitiated("SIGTERM")
//	startup.LogShutdownComplete()
package startup
