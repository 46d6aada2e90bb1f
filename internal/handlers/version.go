package handlers

import (
	"net/http"

	"frame-sampler/internal/startup"
)

// GetVersion returns the build information with caching disabled.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSONStatus(w, http.StatusOK, startup.GetBuildInfo())
}
