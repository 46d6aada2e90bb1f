package handlers

import (
	"net/http"
	"runtime"
	"time"

	"frame-sampler/internal/mediasource"
	"frame-sampler/internal/startup"
	"frame-sampler/internal/surface"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
	statusDraining = "draining"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Decoding backends
	FFmpeg bool `json:"ffmpeg"`
	Vips   bool `json:"vips"`

	ActiveExtractions int64 `json:"activeExtractions"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// Ping answers {"ok":true,"ts":<unix ms>}.
func (h *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, http.StatusOK, map[string]any{
		"ok": true,
		"ts": time.Now().UnixMilli(),
	})
}

// HealthCheck returns the health status of the service. Without ffmpeg
// only MPEG-1 sources can be sampled, which is reported as degraded.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	ready := h.ready.Load()
	response := HealthResponse{
		Ready:             ready,
		Version:           startup.Version,
		Uptime:            time.Since(h.started).Round(time.Second).String(),
		FFmpeg:            mediasource.FFmpegAvailable(),
		Vips:              surface.IsVipsAvailable(),
		ActiveExtractions: h.active.Load(),
		GoVersion:         runtime.Version(),
		NumCPU:            runtime.NumCPU(),
		NumGoroutine:      runtime.NumGoroutine(),
	}

	switch {
	case !ready:
		response.Status = statusDraining
	case !response.FFmpeg:
		response.Status = statusDegraded
	default:
		response.Status = statusHealthy
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	writeJSONStatus(w, code, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 until SetReady(false) is called.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.ready.Load() {
		writeJSONStatus(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
}
