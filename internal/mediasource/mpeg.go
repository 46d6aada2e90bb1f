package mediasource

import (
	"context"
	"fmt"
	"os"
	"time"

	"frame-sampler/internal/filesystem"
	"frame-sampler/internal/logging"

	"github.com/gen2brain/mpeg"
)

// MPEGDecoder decodes MPEG-1 program streams in-process. It needs no
// external binaries, which makes it the fallback when ffmpeg is missing.
type MPEGDecoder struct {
	path  string
	retry filesystem.RetryConfig

	file *os.File
	mpg  *mpeg.MPEG
}

// NewMPEGDecoder creates a decoder for the MPEG-1 file at path.
func NewMPEGDecoder(path string, retry filesystem.RetryConfig) *MPEGDecoder {
	return &MPEGDecoder{path: path, retry: retry}
}

// Probe opens the file and reads the sequence headers.
func (d *MPEGDecoder) Probe(ctx context.Context) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}

	f, err := filesystem.OpenWithRetry(d.path, d.retry)
	if err != nil {
		return Metadata{}, err
	}

	mpg, err := mpeg.New(f)
	if err != nil {
		_ = f.Close()
		return Metadata{}, fmt.Errorf("failed to read mpeg stream: %w", err)
	}
	mpg.SetAudioEnabled(false)

	if mpg.Width() == 0 || mpg.Height() == 0 {
		_ = f.Close()
		return Metadata{}, ErrNoVideoStream
	}

	d.file = f
	d.mpg = mpg

	return Metadata{
		Duration: mpg.Duration().Seconds(),
		Width:    mpg.Width(),
		Height:   mpg.Height(),
		Codec:    "mpeg1video",
	}, nil
}

// DecodeAt seeks to the nearest keyframe at or before t and decodes it.
// The returned picture aliases decoder buffers and stays valid until the
// next DecodeAt.
func (d *MPEGDecoder) DecodeAt(ctx context.Context, t float64) (Frame, error) {
	if d.mpg == nil {
		return Frame{}, fmt.Errorf("mpeg decoder used before probe")
	}
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	frame := d.mpg.SeekFrame(time.Duration(t*float64(time.Second)), false)
	if frame == nil {
		logging.Debug("No frame at %.3fs in %s, falling back to first frame", t, d.path)
		d.mpg.Rewind()
		frame = d.mpg.DecodeVideo()
	}
	if frame == nil {
		return Frame{}, ErrEmptyFrame
	}

	return Frame{Time: frame.Time, Image: frame.YCbCr()}, nil
}

// Close closes the underlying file.
func (d *MPEGDecoder) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	d.mpg = nil
	return err
}
