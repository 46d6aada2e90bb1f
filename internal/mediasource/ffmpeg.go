package mediasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"frame-sampler/internal/logging"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// DefaultProbeTimeout bounds ffprobe when the caller's context has no deadline.
const DefaultProbeTimeout = 30 * time.Second

var (
	ffmpegOnce      sync.Once
	ffmpegAvailable bool
)

// FFmpegAvailable reports whether both ffmpeg and ffprobe are on PATH.
// The lookup runs once per process.
func FFmpegAvailable() bool {
	ffmpegOnce.Do(func() {
		_, errFFmpeg := exec.LookPath("ffmpeg")
		_, errProbe := exec.LookPath("ffprobe")
		ffmpegAvailable = errFFmpeg == nil && errProbe == nil
	})
	return ffmpegAvailable
}

// FFmpegDecoder positions and decodes single frames by running one ffmpeg
// process per seek. It keeps no process alive between seeks.
type FFmpegDecoder struct {
	path         string
	ffmpegPath   string
	probeTimeout time.Duration
}

// NewFFmpegDecoder creates a decoder for the file at path.
func NewFFmpegDecoder(path string, ffmpegPath string, probeTimeout time.Duration) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &FFmpegDecoder{
		path:         path,
		ffmpegPath:   ffmpegPath,
		probeTimeout: probeTimeout,
	}
}

// probeOutput is the subset of `ffprobe -of json -show_format -show_streams` we read.
type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe and reads duration and dimensions of the first video stream.
func (d *FFmpegDecoder) Probe(ctx context.Context) (Metadata, error) {
	timeout := d.probeTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return Metadata{}, context.DeadlineExceeded
		}
	}
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}

	out, err := ffmpeg.ProbeWithTimeout(d.path, timeout, ffmpeg.KwArgs{})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Metadata{}, ctxErr
		}
		return Metadata{}, fmt.Errorf("ffprobe error: %w", err)
	}

	return parseProbe(out)
}

func parseProbe(out string) (Metadata, error) {
	var probe probeOutput
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	for _, s := range probe.Streams {
		if s.CodecType != "video" {
			continue
		}
		meta := Metadata{
			Width:  s.Width,
			Height: s.Height,
			Codec:  s.CodecName,
		}
		meta.Duration = parseSeconds(probe.Format.Duration)
		if meta.Duration == 0 {
			meta.Duration = parseSeconds(s.Duration)
		}
		return meta, nil
	}

	return Metadata{}, ErrNoVideoStream
}

// parseSeconds reads ffprobe's decimal seconds; "N/A" and garbage become 0.
func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

var ptsTimePattern = regexp.MustCompile(`pts_time:\s*(-?[0-9]+(?:\.[0-9]+)?)`)

// parsePTSTime extracts the first frame time printed by the showinfo filter.
func parsePTSTime(stderr string) (float64, bool) {
	m := ptsTimePattern.FindStringSubmatch(stderr)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// decodeArgs builds the ffmpeg arguments for a single-frame grab at t seconds.
// -copyts keeps source timestamps so showinfo reports the real position.
func (d *FFmpegDecoder) decodeArgs(t float64) []string {
	input := ffmpeg.KwArgs{"copyts": ""}
	if t > 0 {
		input["ss"] = strconv.FormatFloat(t, 'f', 3, 64)
	}
	return ffmpeg.Input(d.path, input).
		Filter("showinfo", ffmpeg.Args{}).
		Output("pipe:", ffmpeg.KwArgs{
			"frames:v": 1,
			"f":        "image2pipe",
			"vcodec":   "png",
		}).
		GetArgs()
}

func (d *FFmpegDecoder) grab(ctx context.Context, t float64) (Frame, error) {
	cmd := exec.CommandContext(ctx, d.ffmpegPath, d.decodeArgs(t)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Frame{}, ctxErr
		}
		return Frame{}, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, lastLines(stderr.String(), 5))
	}

	if stdout.Len() == 0 {
		return Frame{}, ErrEmptyFrame
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}

	at, ok := parsePTSTime(stderr.String())
	if !ok {
		at = t
	}
	return Frame{Time: at, Image: img}, nil
}

// DecodeAt grabs the frame at t. If nothing is decodable at t (a target past
// the last frame of a very short clip), it falls back to the first frame.
func (d *FFmpegDecoder) DecodeAt(ctx context.Context, t float64) (Frame, error) {
	frame, err := d.grab(ctx, t)
	if err == nil || t <= 0 || ctx.Err() != nil {
		return frame, err
	}

	logging.Debug("No frame at %.3fs in %s (%v), falling back to first frame", t, d.path, err)
	frame, fallbackErr := d.grab(ctx, 0)
	if fallbackErr != nil {
		return Frame{}, errors.Join(err, fallbackErr)
	}
	return frame, nil
}

// Close is a no-op; every seek runs its own process.
func (d *FFmpegDecoder) Close() error {
	return nil
}

// lastLines trims ffmpeg's verbose stderr to its tail for error messages.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
