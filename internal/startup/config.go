package startup

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"frame-sampler/internal/logging"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Port            string `env:"PORT"              envDefault:"8080"`
	MetricsPort     string `env:"METRICS_PORT"      envDefault:"9090"`
	MetricsEnabled  bool   `env:"METRICS_ENABLED"   envDefault:"true"`
	LogHealthChecks bool   `env:"LOG_HEALTH_CHECKS" envDefault:"true"`

	// SampleProportions overrides the default capture positions.
	SampleProportions []float64     `env:"SAMPLE_PROPORTIONS" envSeparator:","`
	SampleTimeout     time.Duration `env:"SAMPLE_TIMEOUT"     envDefault:"2m"`
	SampleBestEffort  bool          `env:"SAMPLE_BEST_EFFORT" envDefault:"false"`

	Encoder          string  `env:"ENCODER"             envDefault:"imaging"`
	JPEGQuality      float64 `env:"JPEG_QUALITY"        envDefault:"0.85"`
	PreferPureGoMPEG bool    `env:"PREFER_PURE_GO_MPEG" envDefault:"false"`

	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"209715200"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT"    envDefault:"60s"`
	TempDir        string        `env:"TEMP_DIR"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3UseSSL    bool   `env:"S3_USE_SSL" envDefault:"false"`

	MetadataURL string `env:"METADATA_URL"`

	// SamplerWorkers is read by the workers package; kept here for logging.
	SamplerWorkers int `env:"SAMPLER_WORKERS"`
}

// LoadConfig prints the startup banner and loads configuration from the
// environment.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	cfg, err := parseConfig()
	if err != nil {
		return nil, err
	}
	cfg.log()

	if cfg.TempDir != "" {
		logging.Info("")
		logging.Info("------------------------------------------------------------")
		logging.Info("DIRECTORY SETUP")
		logging.Info("------------------------------------------------------------")

		if err := ensureDirectory(cfg.TempDir, "temp"); err != nil {
			return nil, fmt.Errorf("temp directory error: %w", err)
		}
		if err := testWriteAccess(cfg.TempDir); err != nil {
			return nil, fmt.Errorf("temp directory is not writable: %w", err)
		}
		logging.Info("  [OK] Temp directory is writable: %s", cfg.TempDir)
	}

	return cfg, nil
}

func parseConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.TempDir != "" {
		abs, err := filepath.Abs(cfg.TempDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve temp directory path: %w", err)
		}
		cfg.TempDir = abs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges that the environment parser cannot.
func (c *Config) Validate() error {
	for i, p := range c.SampleProportions {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("SAMPLE_PROPORTIONS[%d] = %v: must be within [0,1]", i, p)
		}
	}
	if math.IsNaN(c.JPEGQuality) || c.JPEGQuality <= 0 || c.JPEGQuality > 1 {
		return fmt.Errorf("JPEG_QUALITY = %v: must be within (0,1]", c.JPEGQuality)
	}
	if c.SampleTimeout < 0 {
		return fmt.Errorf("SAMPLE_TIMEOUT must not be negative")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	switch strings.ToLower(c.Encoder) {
	case "imaging", "jpeg", "jpg", "png", "vips":
	default:
		return fmt.Errorf("ENCODER = %q: want imaging, png or vips", c.Encoder)
	}
	return nil
}

func (c *Config) log() {
	logging.Info("  PORT:                %s", c.Port)
	logging.Info("  METRICS_PORT:        %s", c.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", c.MetricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", c.LogHealthChecks)
	logging.Info("  SAMPLE_PROPORTIONS:  %s", formatProportions(c.SampleProportions))
	logging.Info("  SAMPLE_TIMEOUT:      %v", c.SampleTimeout)
	logging.Info("  SAMPLE_BEST_EFFORT:  %v", c.SampleBestEffort)
	logging.Info("  ENCODER:             %s", c.Encoder)
	logging.Info("  JPEG_QUALITY:        %.2f", c.JPEGQuality)
	logging.Info("  PREFER_PURE_GO_MPEG: %v", c.PreferPureGoMPEG)
	logging.Info("  MAX_UPLOAD_BYTES:    %d", c.MaxUploadBytes)
	logging.Info("  FETCH_TIMEOUT:       %v", c.FetchTimeout)
	logging.Info("  TEMP_DIR:            %s", orDefault(c.TempDir, "(system default)"))
	logging.Info("  S3_ENDPOINT:         %s", orDefault(c.S3Endpoint, "(disabled)"))
	if c.S3Endpoint != "" {
		logging.Info("  S3_ACCESS_KEY:       %s", mask(c.S3AccessKey))
		logging.Info("  S3_USE_SSL:          %v", c.S3UseSSL)
	}
	logging.Info("  METADATA_URL:        %s", orDefault(c.MetadataURL, "(disabled)"))
	if c.SamplerWorkers > 0 {
		logging.Info("  SAMPLER_WORKERS:     %d", c.SamplerWorkers)
	} else {
		logging.Info("  SAMPLER_WORKERS:     (auto)")
	}
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
}

func formatProportions(ps []float64) string {
	if len(ps) == 0 {
		return "(default)"
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = fmt.Sprintf("%g", p)
	}
	return strings.Join(parts, ",")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// mask keeps the first characters of a credential for log output.
func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}
