package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the API and probe endpoints on r.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	// API routes live on the root router so a wrong method is a 405, not a 404.
	r.HandleFunc("/api/ping", h.Ping).Methods(http.MethodGet)
	r.HandleFunc("/api/frames", h.ExtractFrames).Methods(http.MethodPost)
	r.HandleFunc("/api/metadata", h.GenerateMetadata).Methods(http.MethodPost)
}
