package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"frame-sampler/internal/logging"
	"frame-sampler/internal/metrics"

	"github.com/caarlos0/env/v11"
)

// DefaultMemoryRatio is the share of the container limit given to the Go
// heap. ffmpeg runs as a child process in the same cgroup and needs the rest.
const DefaultMemoryRatio = 0.6

// Limit sources reported in Limit.Source.
const (
	SourceGoMemLimit  = "GOMEMLIMIT"
	SourceMemoryLimit = "MEMORY_LIMIT"
	SourceCgroup      = "cgroup"
	SourceNone        = "none"
)

// cgroupLimitFiles are checked in order: cgroup v2, then v1.
var cgroupLimitFiles = []string{
	"/sys/fs/cgroup/memory.max",
	"/sys/fs/cgroup/memory/memory.limit_in_bytes",
}

// Limit describes what ConfigureLimit did.
type Limit struct {
	// Configured reports whether a Go memory limit is in effect.
	Configured bool
	Source     string
	// ContainerLimit is the container memory limit in bytes, 0 if unknown.
	ContainerLimit int64
	// GoMemLimit is the applied GOMEMLIMIT in bytes, 0 if unset.
	GoMemLimit int64
	Ratio      float64
}

type limitEnv struct {
	GoMemLimit  string  `env:"GOMEMLIMIT"`
	MemoryLimit int64   `env:"MEMORY_LIMIT"`
	MemoryRatio float64 `env:"MEMORY_RATIO" envDefault:"0.6"`
}

// ConfigureLimit sets GOMEMLIMIT from the container memory limit. Call it
// early in main, before large allocations.
//
// Environment variables:
//   - GOMEMLIMIT: if set, the runtime already applied it and nothing changes
//   - MEMORY_LIMIT: container limit in bytes (Kubernetes Downward API)
//   - MEMORY_RATIO: share of the limit for the Go heap (default 0.6)
//
// Without MEMORY_LIMIT the cgroup limit is read from /sys/fs/cgroup.
func ConfigureLimit() Limit {
	return configureLimit(cgroupLimitFiles)
}

func configureLimit(cgroupFiles []string) Limit {
	var cfg limitEnv
	if err := env.Parse(&cfg); err != nil {
		logging.Warn("Ignoring memory limit settings: %v", err)
		return Limit{Source: SourceNone}
	}

	if cfg.GoMemLimit != "" {
		result := Limit{Source: SourceGoMemLimit}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.GoMemLimit = limit
			metrics.GoMemLimit.Set(float64(limit))
		}
		logging.Info("GOMEMLIMIT set via environment: %s", cfg.GoMemLimit)
		return result
	}

	ratio := cfg.MemoryRatio
	if ratio <= 0 || ratio > 1 {
		logging.Warn("MEMORY_RATIO %v out of range (0.0-1.0], using default %.2f", ratio, DefaultMemoryRatio)
		ratio = DefaultMemoryRatio
	}

	containerLimit, source := cfg.MemoryLimit, SourceMemoryLimit
	if containerLimit <= 0 {
		containerLimit, source = readCgroupLimit(cgroupFiles), SourceCgroup
	}
	if containerLimit <= 0 {
		logging.Debug("No container memory limit found, GOMEMLIMIT left unset")
		return Limit{Source: SourceNone}
	}

	goMemLimit := int64(float64(containerLimit) * ratio)
	debug.SetMemoryLimit(goMemLimit)
	metrics.GoMemLimit.Set(float64(goMemLimit))

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s %s limit)",
		formatBytes(goMemLimit), ratio*100, formatBytes(containerLimit), source)

	return Limit{
		Configured:     true,
		Source:         source,
		ContainerLimit: containerLimit,
		GoMemLimit:     goMemLimit,
		Ratio:          ratio,
	}
}

// readCgroupLimit returns the first finite limit found in files, or 0.
func readCgroupLimit(files []string) int64 {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		s := strings.TrimSpace(string(data))
		if s == "max" {
			return 0
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			logging.Debug("Unreadable cgroup memory limit in %s: %q", f, s)
			continue
		}
		// cgroup v1 reports a page-rounded MaxInt64 when unlimited
		if n <= 0 || n >= 1<<60 {
			return 0
		}
		return n
	}
	return 0
}

// formatBytes formats bytes into a human-readable string
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
