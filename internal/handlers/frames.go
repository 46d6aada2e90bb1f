package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"frame-sampler/internal/logging"
	"frame-sampler/internal/sampler"
	"frame-sampler/internal/source"
)

// maxFormFieldBytes caps non-file multipart fields.
const maxFormFieldBytes = 4 << 10

// multipartOverhead is allowed on top of MaxUploadBytes for part headers.
const multipartOverhead = 1 << 20

var errMissingFile = errors.New("file field required")

// FrameJSON is one frame in the API response.
type FrameJSON struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`
	Label string  `json:"label"`
	// Image is a data URL.
	Image string `json:"image"`
}

// FramesResponse is the body of a successful extraction.
type FramesResponse struct {
	OK       bool        `json:"ok"`
	Filename string      `json:"filename"`
	Frames   []FrameJSON `json:"frames"`
}

type framesRequest struct {
	URL         string    `json:"url"`
	Proportions []float64 `json:"proportions"`
}

// ExtractFrames samples thumbnails from an uploaded file (multipart field
// "file", optional comma separated "proportions") or from a reference given
// as JSON {"url": "...", "proportions": [...]}. References must be http,
// https or s3; server-local paths are refused.
func (h *Handlers) ExtractFrames(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		writeJSONError(w, "Content-Type must be multipart/form-data or application/json", http.StatusUnsupportedMediaType)
		return
	}

	switch mediaType {
	case "multipart/form-data":
		h.extractFromUpload(w, r)
	case "application/json":
		h.extractFromURL(w, r)
	default:
		writeJSONError(w, "Content-Type must be multipart/form-data or application/json", http.StatusUnsupportedMediaType)
	}
}

func (h *Handlers) extractFromUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	src, proportions, err := h.readUpload(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr), errors.Is(err, source.ErrTooLarge):
			writeJSONError(w, "upload too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, errMissingFile), errors.Is(err, sampler.ErrInvalidProportion):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			logging.Warn("failed to read upload: %v", err)
			writeJSONError(w, "invalid upload", http.StatusBadRequest)
		}
		return
	}
	defer func() {
		if err := src.Release(); err != nil {
			logging.Warn("failed to remove upload %s: %v", src.Path, err)
		}
	}()

	h.runExtraction(w, r, src.Name, func(ctx context.Context) ([]sampler.CapturedFrame, error) {
		return h.sampler.ExtractFrames(ctx, src.Path, proportions)
	})
}

// readUpload streams the multipart body so the file is spooled only once.
// Fields may arrive in any order.
func (h *Handlers) readUpload(r *http.Request) (*source.Source, []float64, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil, err
	}

	var (
		src         *source.Source
		proportions []float64
	)
	fail := func(err error) (*source.Source, []float64, error) {
		if src != nil {
			_ = src.Release()
		}
		return nil, nil, err
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fail(err)
		}

		switch part.FormName() {
		case "file":
			if src != nil {
				_ = part.Close()
				return fail(errors.New("only one file may be uploaded"))
			}
			src, err = h.uploads.FromUpload(part.FileName(), part)
			if err != nil {
				_ = part.Close()
				return fail(err)
			}
		case "proportions":
			raw, err := io.ReadAll(io.LimitReader(part, maxFormFieldBytes))
			if err != nil {
				return fail(err)
			}
			if proportions, err = parseProportions(string(raw)); err != nil {
				return fail(err)
			}
		}
		_ = part.Close()
	}

	if src == nil {
		return nil, nil, errMissingFile
	}
	if len(proportions) == 0 {
		proportions = h.proportions
	}
	return src, proportions, nil
}

func (h *Handlers) extractFromURL(w http.ResponseWriter, r *http.Request) {
	var req framesRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	ref := strings.TrimSpace(req.URL)
	if ref == "" {
		writeJSONError(w, "url required", http.StatusBadRequest)
		return
	}
	if err := source.RequireRemote(ref); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	proportions := req.Proportions
	if len(proportions) == 0 {
		proportions = h.proportions
	}

	h.runExtraction(w, r, displayName(ref), func(ctx context.Context) ([]sampler.CapturedFrame, error) {
		return h.sampler.ExtractFromRef(ctx, ref, proportions)
	})
}

// runExtraction waits for an extraction slot, runs extract and writes the
// response. The slot wait is bounded by the request context.
func (h *Handlers) runExtraction(w http.ResponseWriter, r *http.Request, filename string, extract func(context.Context) ([]sampler.CapturedFrame, error)) {
	if h.pressure != nil && h.pressure.IsPaused() {
		w.Header().Set("Retry-After", "5")
		writeJSONError(w, "server under memory pressure", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	if err := h.limiter.Acquire(ctx, 1); err != nil {
		writeJSONError(w, "server busy", http.StatusServiceUnavailable)
		return
	}
	defer h.limiter.Release(1)

	h.active.Add(1)
	frames, err := extract(ctx)
	h.active.Add(-1)

	if err != nil {
		code := statusForError(err)
		if code >= http.StatusInternalServerError {
			logging.Error("Frame extraction for %s failed: %v", filename, err)
		} else {
			logging.Debug("Frame extraction for %s rejected: %v", filename, err)
		}
		writeJSONError(w, err.Error(), code)
		return
	}

	writeJSONStatus(w, http.StatusOK, FramesResponse{
		OK:       true,
		Filename: filename,
		Frames:   toFrameJSON(frames),
	})
}

func toFrameJSON(frames []sampler.CapturedFrame) []FrameJSON {
	out := make([]FrameJSON, len(frames))
	for i, f := range frames {
		out[i] = FrameJSON{
			Index: f.Index,
			Time:  f.Time,
			Label: sampler.FormatTime(f.Time),
			Image: dataURL(f.ContentType, f.Image),
		}
	}
	return out
}

func dataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// statusForError maps sampler errors onto HTTP status codes.
func statusForError(err error) int {
	var (
		openErr *sampler.SourceOpenError
		loadErr *sampler.MediaLoadError
	)
	switch {
	case errors.Is(err, sampler.ErrInvalidProportion):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, source.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, source.ErrUnsupportedScheme):
		return http.StatusBadRequest
	case errors.As(err, &openErr), errors.As(err, &loadErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// parseProportions parses a comma separated list. Blank input yields nil.
func parseProportions(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		p, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", sampler.ErrInvalidProportion, f)
		}
		out = append(out, p)
	}
	return out, nil
}

// displayName returns the last path segment of a reference.
func displayName(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		ref = u.Path
	}
	name := path.Base(ref)
	if name == "." || name == "/" {
		return ref
	}
	return name
}
