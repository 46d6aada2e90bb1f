package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"frame-sampler/internal/logging"
	"frame-sampler/internal/mediasource"
	"frame-sampler/internal/memory"
	"frame-sampler/internal/metadata"
	"frame-sampler/internal/sampler"
	"frame-sampler/internal/source"
	"frame-sampler/internal/surface"
	"frame-sampler/internal/workers"

	"github.com/caarlos0/env/v11"
	"golang.org/x/term"
)

const (
	defaultTimeout = 2 * time.Minute
	// Concurrent sources; each run holds one decoder.
	maxParallel = 4
)

// envConfig carries the settings shared with the server that make no sense
// as flags.
type envConfig struct {
	TempDir     string `env:"TEMP_DIR"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3UseSSL    bool   `env:"S3_USE_SSL" envDefault:"false"`
	PureGoMPEG  bool   `env:"PREFER_PURE_GO_MPEG" envDefault:"false"`
}

type options struct {
	outDir      string
	jsonOut     bool
	proportions []float64
	timeout     time.Duration
	bestEffort  bool
	encoder     string
	quality     float64
	metadataURL string
	language    string
	verbose     bool
	refs        []string
}

// refExtractor is the part of sampler.Sampler the CLI needs.
type refExtractor interface {
	ExtractFromRef(ctx context.Context, ref string, proportions []float64) ([]sampler.CapturedFrame, error)
}

type metadataGenerator interface {
	Generate(ctx context.Context, req metadata.Request) (*metadata.Response, error)
}

// manifestFrame describes one written thumbnail.
type manifestFrame struct {
	Index      int     `json:"index"`
	Proportion float64 `json:"proportion"`
	Time       float64 `json:"time"`
	Label      string  `json:"label"`
	File       string  `json:"file"`
}

// manifestEntry is the outcome for one source.
type manifestEntry struct {
	Source   string          `json:"source"`
	Frames   []manifestFrame `json:"frames"`
	Metadata string          `json:"metadata,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logging.SetOutput(stderr)
	if opts.verbose {
		logging.SetLevel(logging.LevelDebug)
	} else {
		logging.SetLevel(logging.LevelWarn)
	}

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(stderr, "Error: invalid environment: %v\n", err)
		return 2
	}

	if strings.EqualFold(opts.encoder, "vips") {
		if err := surface.InitVips(); err != nil {
			fmt.Fprintf(stderr, "Error: failed to initialize libvips: %v\n", err)
			return 1
		}
		defer surface.ShutdownVips()
	}
	encoder, err := surface.EncoderByName(opts.encoder)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	resolver, err := source.NewResolver(source.Config{
		TempDir: cfg.TempDir,
		S3: source.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		},
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		fmt.Fprintf(stderr, "Error: cannot create output directory: %v\n", err)
		return 1
	}

	decoderOpts := mediasource.DefaultOptions()
	decoderOpts.PreferPureGo = cfg.PureGoMPEG

	s := sampler.New(sampler.Options{
		Quality:    opts.quality,
		Encoder:    encoder,
		BestEffort: opts.bestEffort,
		Timeout:    opts.timeout,
		Decoder:    decoderOpts,
		Resolver:   resolver,
	})

	var meta metadataGenerator
	if opts.metadataURL != "" {
		meta = metadata.NewClient(opts.metadataURL, nil)
	}

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	defer monitor.Stop()

	p := &processor{
		extractor: s,
		meta:      meta,
		gate:      monitor,
		opts:      opts,
		progress:  progressWriter(stderr),
	}
	entries := p.processAll(ctx, opts.refs)

	failed := 0
	for _, e := range entries {
		if e.Error != "" {
			failed++
			fmt.Fprintf(stderr, "%s: %s\n", e.Source, e.Error)
		}
	}

	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			fmt.Fprintf(stderr, "Error: failed to write manifest: %v\n", err)
			return 1
		}
	} else {
		for _, e := range entries {
			for _, f := range e.Frames {
				fmt.Fprintf(stdout, "%s\t%s\t%s\n", e.Source, f.Label, f.File)
			}
			if e.Metadata != "" {
				fmt.Fprintf(stdout, "%s\tmetadata\t%s\n", e.Source, e.Metadata)
			}
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("framegrab", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: framegrab [flags] <file|url|s3://bucket/key>...")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Extracts thumbnails at proportional positions of each video.")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	opts := &options{}
	var proportions string
	fs.StringVar(&opts.outDir, "out", ".", "directory for thumbnails")
	fs.BoolVar(&opts.jsonOut, "json", false, "print a JSON manifest to stdout")
	fs.StringVar(&proportions, "p", "", "comma separated proportions in [0,1] (default 0.12,0.32,0.55,0.75,0.92)")
	fs.DurationVar(&opts.timeout, "timeout", defaultTimeout, "per-source extraction timeout")
	fs.BoolVar(&opts.bestEffort, "best-effort", false, "skip frames that fail instead of failing the source")
	fs.StringVar(&opts.encoder, "encoder", "imaging", "thumbnail encoder: imaging or vips")
	fs.Float64Var(&opts.quality, "quality", surface.DefaultQuality, "JPEG quality in (0,1]")
	fs.StringVar(&opts.metadataURL, "metadata-url", "", "metadata service endpoint; also writes <base>-meta.json and <base>-meta.txt")
	fs.StringVar(&opts.language, "lang", "hi-en", "metadata language: hi, en or hi-en")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.refs = fs.Args()
	if len(opts.refs) == 0 {
		fs.Usage()
		return nil, errors.New("at least one source is required")
	}
	if opts.quality <= 0 || opts.quality > 1 {
		return nil, fmt.Errorf("-quality must be in (0,1], got %v", opts.quality)
	}
	if opts.timeout < 0 {
		return nil, fmt.Errorf("-timeout must not be negative, got %v", opts.timeout)
	}

	ps, err := parseProportions(proportions)
	if err != nil {
		return nil, err
	}
	opts.proportions = ps
	return opts, nil
}

// parseProportions parses a comma separated list. Blank input yields nil so
// the sampler applies its defaults.
func parseProportions(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []float64
	for _, field := range strings.Split(s, ",") {
		p, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", sampler.ErrInvalidProportion, field)
		}
		out = append(out, p)
	}
	return out, nil
}

// gate blocks while memory pressure is high.
type gate interface {
	Wait(ctx context.Context) error
}

type processor struct {
	extractor refExtractor
	meta      metadataGenerator
	gate      gate
	opts      *options
	progress  io.Writer
	done      atomic.Int64
}

func (p *processor) processAll(ctx context.Context, refs []string) []manifestEntry {
	total := len(refs)
	results := workers.RunBatch(ctx, workers.ForMixed(maxParallel), refs, func(ctx context.Context, ref string) (manifestEntry, error) {
		entry := p.process(ctx, ref)
		if p.progress != nil {
			n := p.done.Add(1)
			status := fmt.Sprintf("%d frames", len(entry.Frames))
			if entry.Error != "" {
				status = "failed"
			}
			fmt.Fprintf(p.progress, "[%d/%d] %s: %s\n", n, total, entry.Source, status)
		}
		return entry, nil
	})

	entries := make([]manifestEntry, len(results))
	for i, r := range results {
		entries[i] = r.Value
		if r.Err != nil {
			entries[i] = manifestEntry{Source: refs[i], Frames: []manifestFrame{}, Error: r.Err.Error()}
		}
	}
	return entries
}

// process extracts one source and writes its thumbnails. Failures are
// reported in the entry.
func (p *processor) process(ctx context.Context, ref string) manifestEntry {
	entry := manifestEntry{Source: ref, Frames: []manifestFrame{}}

	if p.gate != nil {
		if err := p.gate.Wait(ctx); err != nil {
			entry.Error = err.Error()
			return entry
		}
	}

	logging.Debug("Extracting %s", ref)
	frames, err := p.extractor.ExtractFromRef(ctx, ref, p.opts.proportions)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}

	base := baseName(ref)
	for _, f := range frames {
		name := frameFileName(base, f.Index, f.ContentType)
		file := filepath.Join(p.opts.outDir, name)
		if err := os.WriteFile(file, f.Image, 0o644); err != nil {
			entry.Error = fmt.Sprintf("write %s: %v", name, err)
			return entry
		}
		entry.Frames = append(entry.Frames, manifestFrame{
			Index:      f.Index,
			Proportion: f.Proportion,
			Time:       f.Time,
			Label:      sampler.FormatTime(f.Time),
			File:       file,
		})
	}

	if p.meta != nil {
		file, err := p.writeMetadata(ctx, base)
		if err != nil {
			entry.Error = fmt.Sprintf("metadata: %v", err)
			return entry
		}
		entry.Metadata = file
	}
	return entry
}

func (p *processor) writeMetadata(ctx context.Context, base string) (string, error) {
	resp, err := p.meta.Generate(ctx, metadata.Request{
		Filename: base,
		Language: metadata.ParseLanguage(p.opts.language),
	})
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", err
	}
	file := filepath.Join(p.opts.outDir, base+"-meta.json")
	if err := os.WriteFile(file, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	// plain text copy for pasting into an upload form
	if resp.Result != nil {
		text := filepath.Join(p.opts.outDir, base+"-meta.txt")
		if err := os.WriteFile(text, []byte(resp.Result.Text()+"\n"), 0o644); err != nil {
			return "", err
		}
	}
	return file, nil
}

// baseName derives the output prefix from a reference: the last path
// segment without its extension.
func baseName(ref string) string {
	ref = strings.TrimRight(ref, "/")
	if i := strings.IndexAny(ref, "?#"); i >= 0 && strings.Contains(ref, "://") {
		ref = ref[:i]
	}
	name := ref
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." {
		return "frame"
	}
	return name
}

// frameFileName numbers thumbnails from 1.
func frameFileName(base string, index int, contentType string) string {
	ext := ".jpg"
	if contentType == "image/png" {
		ext = ".png"
	}
	return fmt.Sprintf("%s-%d%s", base, index+1, ext)
}

// progressWriter returns w only when stderr is a terminal.
func progressWriter(w io.Writer) io.Writer {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return w
}
