package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"frame-sampler/internal/filesystem"
	"frame-sampler/internal/logging"
	"frame-sampler/internal/mediatypes"
	"frame-sampler/internal/metrics"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	// DefaultMaxBytes caps downloads and uploads.
	DefaultMaxBytes = 200 * 1024 * 1024
	// DefaultFetchTimeout bounds a single remote fetch.
	DefaultFetchTimeout = 60 * time.Second
)

// S3Config addresses an S3-compatible object store.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Config configures a Resolver.
type Config struct {
	// TempDir holds downloads and uploads; empty uses os.TempDir.
	TempDir      string
	MaxBytes     int64
	FetchTimeout time.Duration
	HTTPClient   *http.Client
	S3           S3Config
	Retry        filesystem.RetryConfig
}

// Resolver turns references into local files.
type Resolver struct {
	cfg  Config
	http *http.Client
	s3   *miniogo.Client
}

// NewResolver creates a Resolver. The S3 client is only created when an
// endpoint is configured.
func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.InitialBackoff == 0 {
		cfg.Retry = filesystem.DefaultRetryConfig()
	}

	r := &Resolver{cfg: cfg, http: cfg.HTTPClient}
	if r.http == nil {
		r.http = &http.Client{}
	}

	if cfg.S3.Endpoint != "" {
		client, err := miniogo.New(cfg.S3.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
			Secure: cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		r.s3 = client
	}

	return r, nil
}

// SchemeOf returns the lower-cased scheme of ref. Bare paths are "file".
func SchemeOf(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.Index(ref, "://"); i > 0 {
		return strings.ToLower(ref[:i])
	}
	return "file"
}

// RequireRemote rejects references that would read the local filesystem.
// Only http, https and s3 references pass.
func RequireRemote(ref string) error {
	switch scheme := SchemeOf(ref); scheme {
	case "http", "https", "s3":
		return nil
	default:
		return fmt.Errorf("%w: %s (only http, https and s3 are accepted)", ErrUnsupportedScheme, scheme)
	}
}

// Resolve accepts a local path, a file:// URL, an http(s) URL or an
// s3://bucket/key reference.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("empty source reference")
	}

	scheme := SchemeOf(ref)

	var (
		src *Source
		err error
	)
	switch scheme {
	case "file":
		src, err = r.local(strings.TrimPrefix(ref, "file://"))
	case "http", "https":
		src, err = r.fetchHTTP(ctx, ref, scheme)
	case "s3":
		src, err = r.fetchS3(ctx, ref)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SourceFetchTotal.WithLabelValues(scheme, status).Inc()
	if err == nil && scheme != "file" {
		metrics.SourceFetchBytes.WithLabelValues(scheme).Add(float64(src.Size))
	}
	return src, err
}

func (r *Resolver) local(p string) (*Source, error) {
	info, err := filesystem.StatWithRetry(p, r.cfg.Retry)
	if err != nil {
		return nil, fmt.Errorf("file not accessible: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", p)
	}
	return New(p, filepath.Base(p), "file", info.Size(), nil), nil
}

func (r *Resolver) fetchHTTP(ctx context.Context, ref, scheme string) (*Source, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Debug("failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed: unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > r.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = ""
	}
	ext := extensionFor(name, resp.Header.Get("Content-Type"))
	if name == "" {
		name = "video" + ext
	}

	src, err := r.spool(name, ext, scheme, resp.Body)
	if err != nil {
		return nil, err
	}
	logging.Debug("Downloaded %s (%d bytes) to %s", ref, src.Size, src.Path)
	return src, nil
}

// parseS3Ref splits s3://bucket/key.
func parseS3Ref(ref string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(ref, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 reference %q: want s3://bucket/key", ref)
	}
	return bucket, key, nil
}

func (r *Resolver) fetchS3(ctx context.Context, ref string) (*Source, error) {
	bucket, key, err := parseS3Ref(ref)
	if err != nil {
		return nil, err
	}
	if r.s3 == nil {
		return nil, ErrS3NotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	info, err := r.s3.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("stat object %s: %w", ref, err)
	}
	if info.Size > r.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size)
	}

	ext := extensionFor(key, info.ContentType)

	dest, cleanup, err := r.tempPath(ext)
	if err != nil {
		return nil, err
	}
	if err := r.s3.FGetObject(ctx, bucket, key, dest, miniogo.GetObjectOptions{}); err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("download object %s: %w", ref, err)
	}

	return New(dest, path.Base(key), "s3", info.Size, cleanup), nil
}

// FromUpload spools an uploaded body to a temp file, keeping the extension
// of name so the decoder can pick a backend.
func (r *Resolver) FromUpload(name string, body io.Reader) (*Source, error) {
	name = filepath.Base(name)
	ext := extensionFor(name, "")
	src, err := r.spool(name, ext, "upload", body)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SourceFetchTotal.WithLabelValues("upload", status).Inc()
	if err == nil {
		metrics.SourceFetchBytes.WithLabelValues("upload").Add(float64(src.Size))
	}
	return src, err
}

func (r *Resolver) tempPath(ext string) (string, func() error, error) {
	f, err := os.CreateTemp(r.cfg.TempDir, "frame-sampler-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	p := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return "", nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	return p, removeFunc(p), nil
}

// spool copies at most MaxBytes of body into a temp file.
func (r *Resolver) spool(name, ext, scheme string, body io.Reader) (*Source, error) {
	f, err := os.CreateTemp(r.cfg.TempDir, "frame-sampler-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := removeFunc(f.Name())

	n, err := io.Copy(f, io.LimitReader(body, r.cfg.MaxBytes+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		_ = cleanup()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	case closeErr != nil:
		_ = cleanup()
		return nil, fmt.Errorf("failed to close temp file: %w", closeErr)
	case n > r.cfg.MaxBytes:
		_ = cleanup()
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, r.cfg.MaxBytes)
	case n == 0:
		_ = cleanup()
		return nil, errors.New("empty source")
	}

	return New(f.Name(), name, scheme, n, cleanup), nil
}

// extensionFor picks the temp file extension from the name, then the
// content type, then DefaultExtension.
func extensionFor(name, contentType string) string {
	if ext := mediatypes.Ext(name); mediatypes.IsVideo(ext) {
		return ext
	}
	if ext := mediatypes.ExtensionForMime(contentType); ext != "" {
		return ext
	}
	return mediatypes.DefaultExtension
}

func removeFunc(p string) func() error {
	return func() error {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
}
