package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"frame-sampler/internal/logging"
	"frame-sampler/internal/metadata"
)

type metadataRequest struct {
	Filename   string `json:"filename"`
	Language   string `json:"language"`
	ExtraNotes string `json:"extraNotes"`
}

// GenerateMetadata forwards {filename, language, extraNotes} to the metadata
// collaborator and relays its reply.
func (h *Handlers) GenerateMetadata(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		writeJSONError(w, "metadata service not configured", http.StatusServiceUnavailable)
		return
	}

	var req metadataRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		writeJSONError(w, "filename required", http.StatusBadRequest)
		return
	}

	resp, err := h.metadata.Generate(r.Context(), metadata.Request{
		Filename:   req.Filename,
		Language:   metadata.ParseLanguage(req.Language),
		ExtraNotes: req.ExtraNotes,
	})
	if err != nil {
		logging.Warn("metadata generation for %s failed: %v", req.Filename, err)
		writeJSONStatus(w, http.StatusBadGateway, errorResponse{Error: "metadata service error", Detail: err.Error()})
		return
	}

	resp.OK = true
	writeJSONStatus(w, http.StatusOK, resp)
}
