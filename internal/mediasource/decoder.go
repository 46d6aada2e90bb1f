package mediasource

import (
	"fmt"
	"time"

	"frame-sampler/internal/filesystem"
	"frame-sampler/internal/mediatypes"
)

// Options selects and configures the decoding backend.
type Options struct {
	FFmpegPath   string
	ProbeTimeout time.Duration
	// PreferPureGo routes MPEG-1 files to the in-process decoder even when ffmpeg exists.
	PreferPureGo bool
	Retry        filesystem.RetryConfig
}

// DefaultOptions returns options using ffmpeg from PATH.
func DefaultOptions() Options {
	return Options{
		ProbeTimeout: DefaultProbeTimeout,
		Retry:        filesystem.DefaultRetryConfig(),
	}
}

// NewDecoder checks that path is a readable regular file and returns the
// backend that should decode it, along with the backend name.
func NewDecoder(path string, opts Options) (Decoder, mediatypes.Decoder, error) {
	info, err := filesystem.StatWithRetry(path, opts.Retry)
	if err != nil {
		return nil, "", fmt.Errorf("file not accessible: %w", err)
	}
	if info.IsDir() {
		return nil, "", fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, "", fmt.Errorf("%s is empty", path)
	}

	available := opts.FFmpegPath != "" || FFmpegAvailable()
	backend := mediatypes.DecoderFor(path, available, opts.PreferPureGo)

	switch backend {
	case mediatypes.DecoderMPEG1:
		return NewMPEGDecoder(path, opts.Retry), backend, nil
	default:
		if !available {
			return nil, "", fmt.Errorf("ffmpeg not found in PATH")
		}
		return NewFFmpegDecoder(path, opts.FFmpegPath, opts.ProbeTimeout), backend, nil
	}
}
