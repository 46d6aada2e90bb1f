package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"frame-sampler/internal/logging"
)

// DefaultTimeout bounds one Generate call.
const DefaultTimeout = 60 * time.Second

// maxResponseBytes caps how much of a reply is read.
const maxResponseBytes = 1 << 20

// Client calls a metadata collaborator over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client posting to endpoint, the full URL of the
// collaborator's generate route. A nil httpClient uses one with DefaultTimeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

// Generate requests metadata for req.Filename. A reply carrying only raw
// text is returned as is, with Result filled in when the text parses.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return nil, errors.New("filename required")
	}
	if req.Language == "" {
		req.Language = LanguageMixed
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("metadata request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Debug("failed to close metadata response body: %v", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata response: %w", err)
	}

	var out Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("metadata service returned status %d with invalid body: %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || (!out.OK && out.Error != "") {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if out.Detail != "" {
			msg += ": " + out.Detail
		}
		return nil, fmt.Errorf("metadata service error (status %d): %s", resp.StatusCode, msg)
	}

	if out.Result != nil {
		out.Result.Normalize()
	} else if out.Raw != "" {
		if r, ok := ParseResult(out.Raw); ok {
			out.Result = r
		} else {
			logging.Debug("metadata reply for %s was not structured JSON", req.Filename)
		}
	}

	return &out, nil
}
