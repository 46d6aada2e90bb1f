package surface

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"golang.org/x/image/draw"
)

const (
	// MaxWidth and MaxHeight cap the capture raster.
	MaxWidth  = 640
	MaxHeight = 360

	// DefaultQuality is the encoder quality on a 0..1 scale.
	DefaultQuality = 0.85
)

var (
	// ErrReleased is returned by Paint and Encode after Release.
	ErrReleased = errors.New("surface released")
	// ErrNoFrame is returned by Paint when there is no current frame to draw.
	ErrNoFrame = errors.New("no frame to paint")
)

// Size returns the raster dimensions for a source of the given natural size.
// Each side is capped independently; a zero or negative side falls back to
// the cap. Aspect ratio is not preserved.
func Size(naturalW, naturalH int) (int, int) {
	w, h := naturalW, naturalH
	if w <= 0 || w > MaxWidth {
		w = MaxWidth
	}
	if h <= 0 || h > MaxHeight {
		h = MaxHeight
	}
	return w, h
}

// Surface is an offscreen raster reused for every capture of one run.
// It is not safe for concurrent use.
type Surface struct {
	mu     sync.Mutex
	raster *image.RGBA
	enc    Encoder
}

// New allocates a w x h surface. A nil enc uses JPEG via ImagingEncoder.
func New(w, h int, enc Encoder) *Surface {
	if enc == nil {
		enc = ImagingEncoder{}
	}
	return &Surface{
		raster: image.NewRGBA(image.Rect(0, 0, w, h)),
		enc:    enc,
	}
}

// Bounds returns the raster bounds, or an empty rectangle once released.
func (s *Surface) Bounds() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raster == nil {
		return image.Rectangle{}
	}
	return s.raster.Bounds()
}

// Paint scales img to fill the whole raster, replacing previous content.
func (s *Surface) Paint(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.raster == nil {
		return ErrReleased
	}
	if img == nil {
		return ErrNoFrame
	}
	src := img.Bounds()
	if src.Empty() {
		return fmt.Errorf("%w: empty frame bounds %v", ErrNoFrame, src)
	}

	draw.ApproxBiLinear.Scale(s.raster, s.raster.Bounds(), img, src, draw.Src, nil)
	return nil
}

// Encode serializes the raster. quality is on a 0..1 scale and is clamped.
// The returned slice is owned by the caller.
func (s *Surface) Encode(quality float64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.raster == nil {
		return nil, ErrReleased
	}
	return s.enc.Encode(s.raster, QualityPercent(quality))
}

// ContentType reports the MIME type produced by Encode.
func (s *Surface) ContentType() string {
	return s.enc.ContentType()
}

// Release drops the raster. It is safe to call more than once.
func (s *Surface) Release() {
	s.mu.Lock()
	s.raster = nil
	s.mu.Unlock()
}

// QualityPercent maps a 0..1 quality onto the 1..100 scale used by encoders.
// NaN selects DefaultQuality.
func QualityPercent(q float64) int {
	if math.IsNaN(q) {
		q = DefaultQuality
	}
	p := int(math.Round(q * 100))
	if p < 1 {
		return 1
	}
	if p > 100 {
		return 100
	}
	return p
}
