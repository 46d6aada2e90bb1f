package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"frame-sampler/internal/filesystem"
	"frame-sampler/internal/handlers"
	"frame-sampler/internal/logging"
	"frame-sampler/internal/mediasource"
	"frame-sampler/internal/memory"
	"frame-sampler/internal/metadata"
	"frame-sampler/internal/metrics"
	"frame-sampler/internal/middleware"
	"frame-sampler/internal/sampler"
	"frame-sampler/internal/source"
	"frame-sampler/internal/startup"
	"frame-sampler/internal/surface"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	memory.ConfigureLimit()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	startup.LogDecoderInit(config.PreferPureGoMPEG)

	if strings.EqualFold(config.Encoder, "vips") {
		if err := surface.InitVips(); err != nil {
			startup.LogFatal("Failed to initialize libvips: %v", err)
		}
		defer surface.ShutdownVips()
	}
	encoder, err := surface.EncoderByName(config.Encoder)
	if err != nil {
		startup.LogFatal("Encoder error: %v", err)
	}
	startup.LogEncoderInit(config.Encoder, config.JPEGQuality)

	resolver, err := source.NewResolver(source.Config{
		TempDir:      config.TempDir,
		MaxBytes:     config.MaxUploadBytes,
		FetchTimeout: config.FetchTimeout,
		S3: source.S3Config{
			Endpoint:  config.S3Endpoint,
			AccessKey: config.S3AccessKey,
			SecretKey: config.S3SecretKey,
			UseSSL:    config.S3UseSSL,
		},
		Retry: filesystem.DefaultRetryConfig(),
	})
	if err != nil {
		startup.LogFatal("Failed to initialize source resolver: %v", err)
	}

	decoderOpts := mediasource.DefaultOptions()
	decoderOpts.PreferPureGo = config.PreferPureGoMPEG

	s := sampler.New(sampler.Options{
		Quality:    config.JPEGQuality,
		Encoder:    encoder,
		BestEffort: config.SampleBestEffort,
		Timeout:    config.SampleTimeout,
		Decoder:    decoderOpts,
		Resolver:   resolver,
	})

	var meta handlers.MetadataGenerator
	if config.MetadataURL != "" {
		meta = metadata.NewClient(config.MetadataURL, nil)
		logging.Info("  Metadata collaborator: %s", config.MetadataURL)
	}

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	h := handlers.New(s, resolver, meta, config)
	h.SetPressureGauge(monitor)

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// uploads and extractions are bounded by MAX_UPLOAD_BYTES and SAMPLE_TIMEOUT
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	shutdownDone := make(chan struct{})
	go func() {
		handleShutdown(srv, metricsSrv, h, monitor)
		close(shutdownDone)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	// ListenAndServe returns as soon as Shutdown starts; wait for the drain.
	<-shutdownDone
}

func handleShutdown(srv, metricsSrv *http.Server, h *handlers.Handlers, monitor *memory.Monitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	startup.LogShutdownStep("Marking service not ready")
	h.SetReady(false)
	startup.LogShutdownStepComplete("Readiness probe failing")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	startup.LogShutdownComplete()
}
