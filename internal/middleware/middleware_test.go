package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"frame-sampler/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// captureLog redirects the standard logger for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(io.Discard)
		log.SetFlags(flags)
	})
	return &buf
}

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newStatusRecorder(w)

	if rw.statusCode != http.StatusOK {
		t.Errorf("default status = %d, want 200", rw.statusCode)
	}

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusTeapot || w.Code != http.StatusTeapot {
		t.Errorf("status = %d/%d, want first WriteHeader to win", rw.statusCode, w.Code)
	}

	n, err := rw.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	rw.Write([]byte(" world"))
	if rw.bytesWritten != 11 {
		t.Errorf("bytesWritten = %d, want 11", rw.bytesWritten)
	}
	if rw.Unwrap() != w {
		t.Error("Unwrap() should return the wrapped writer")
	}
}

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		config        LoggingConfig
		expectLogging bool
	}{
		{
			name:          "logs frame requests",
			path:          "/api/frames",
			config:        DefaultLoggingConfig(),
			expectLogging: true,
		},
		{
			name:          "skips configured prefixes",
			path:          "/metrics",
			config:        DefaultLoggingConfig(),
			expectLogging: false,
		},
		{
			name:          "logs health checks when enabled",
			path:          "/health",
			config:        LoggingConfig{LogHealthChecks: true},
			expectLogging: true,
		},
		{
			name:          "skips health checks when disabled",
			path:          "/readyz",
			config:        LoggingConfig{LogHealthChecks: false},
			expectLogging: false,
		},
		{
			name:          "ping counts as a health check",
			path:          "/api/ping",
			config:        LoggingConfig{LogHealthChecks: false},
			expectLogging: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)

			handler := Logger(tt.config)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("ok"))
			}))
			buf.Reset() // drop the #Software/#Fields header

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
			logged := strings.Contains(buf.String(), tt.path)
			if logged != tt.expectLogging {
				t.Errorf("logged = %v, want %v (output %q)", logged, tt.expectLogging, buf.String())
			}
		})
	}
}

func TestLoggerHeader(t *testing.T) {
	buf := captureLog(t)
	Logger(LoggingConfig{})

	out := buf.String()
	if !strings.Contains(out, "#Software: FrameSampler/1.0") {
		t.Errorf("missing software directive: %q", out)
	}
	if !strings.Contains(out, "#Fields: date time c-ip") {
		t.Errorf("missing fields directive: %q", out)
	}
}

func TestFormatW3C(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/frames?debug=1", http.NoBody)
	req.RemoteAddr = "10.0.0.5:51234"
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	req.Header.Set("User-Agent", "curl/8.0 (linux)")

	rw := newStatusRecorder(httptest.NewRecorder())
	rw.WriteHeader(http.StatusCreated)
	rw.Write([]byte("12345"))

	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	got := formatW3C(now, req, rw, 42*time.Millisecond)
	want := `2025-03-04 05:06:07 10.0.0.5 POST /api/frames debug=1 201 5 42 multipart/form-data "curl/8.0 (linux)"`
	if got != want {
		t.Errorf("formatW3C() =\n%q\nwant\n%q", got, want)
	}

	bare := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	bare.Header.Del("User-Agent")
	got = formatW3C(now, bare, newStatusRecorder(httptest.NewRecorder()), 0)
	if !strings.HasSuffix(got, " 200 0 0 - -") {
		t.Errorf("formatW3C() empty fields = %q", got)
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a\nb\rc", "a b c"},
		{"nul\x00byte", "nulbyte"},
		{"\x1b[31mred", "[31mred"},
		{"tab\tkept", "tab\tkept"},
		{"bell\x07", "bell"},
	}
	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.168.1.2:4000", "192.168.1.2"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, "3.3.3.3:1", "1.1.1.1"},
		{"forwarded single", map[string]string{"X-Forwarded-For": " 4.4.4.4 "}, "3.3.3.3:1", "4.4.4.4"},
		{"real ip", map[string]string{"X-Real-IP": "5.5.5.5"}, "3.3.3.3:1", "5.5.5.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"/", "/"},
		{"/api/frames", "/api/frames"},
		{"/api/frames/extra/segments", "/api/frames/{path}"},
		{"/unknown", "/unknown"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics(DefaultMetricsConfig()))
	r.HandleFunc("/api/jobs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}).Methods(http.MethodGet)

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/jobs/{id}", "202")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+id, http.NoBody)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("route counter delta = %v, want 3", got)
	}
}

func TestMetricsMiddlewareSkipPaths(t *testing.T) {
	called := false
	handler := Metrics(MetricsConfig{SkipPaths: []string{"/metrics"}})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/metrics", "200")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if !called {
		t.Error("handler was not called for skipped path")
	}
	if got := testutil.ToFloat64(counter) - before; got != 0 {
		t.Errorf("skipped path recorded %v requests", got)
	}
}

func TestMetricsMiddlewareStatusCode(t *testing.T) {
	handler := Metrics(MetricsConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/api/status-test", "400")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/status-test", http.NoBody))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("400 counter delta = %v, want 1", got)
	}
}

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
	})
}

func TestCompressionMiddleware(t *testing.T) {
	large := `{"frames":"` + strings.Repeat("QUJD", 1024) + `"}`

	tests := []struct {
		name           string
		acceptEncoding string
		handler        http.Handler
		wantGzip       bool
	}{
		{"large json", "gzip, deflate", jsonHandler(large), true},
		{"no accept header", "", jsonHandler(large), false},
		{"gzip refused", "gzip;q=0", jsonHandler(large), false},
		{"small json", "gzip", jsonHandler(`{"ok":true}`), false},
		{
			name:           "binary body",
			acceptEncoding: "gzip",
			handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				w.Write(bytes.Repeat([]byte{0xff}, 4096))
			}),
			wantGzip: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/frames", http.NoBody)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()

			Compression(DefaultCompressionConfig())(tt.handler).ServeHTTP(w, req)

			gzipped := w.Header().Get("Content-Encoding") == "gzip"
			if gzipped != tt.wantGzip {
				t.Fatalf("gzipped = %v, want %v", gzipped, tt.wantGzip)
			}
			if !gzipped {
				return
			}

			zr, err := gzip.NewReader(w.Body)
			if err != nil {
				t.Fatalf("gzip.NewReader() error = %v", err)
			}
			body, err := io.ReadAll(zr)
			if err != nil {
				t.Fatalf("reading gzip body: %v", err)
			}
			if string(body) != large {
				t.Error("decompressed body does not match")
			}
		})
	}
}

func TestCompressionPreservesStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"ok":false}`)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/frames", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	Compression(DefaultCompressionConfig())(handler).ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	if w.Body.String() != `{"ok":false}` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestCompressionMultipleWrites(t *testing.T) {
	chunk := strings.Repeat("x", 600)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for range 4 {
			io.WriteString(w, chunk)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	Compression(DefaultCompressionConfig())(handler).ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("expected gzip encoding")
	}
	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(zr)
	if string(body) != strings.Repeat(chunk, 4) {
		t.Errorf("decompressed length = %d, want %d", len(body), 4*len(chunk))
	}
}

func TestAcceptsGzip(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"gzip", true},
		{"deflate, gzip;q=0.5", true},
		{"gzip; q=0", false},
		{"br", false},
		{"x-gzip", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.Header.Set("Accept-Encoding", tt.header)
		if got := acceptsGzip(req); got != tt.want {
			t.Errorf("acceptsGzip(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
