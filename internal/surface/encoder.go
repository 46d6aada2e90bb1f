package surface

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

// Encoder turns a painted raster into image bytes.
type Encoder interface {
	// Encode serializes img at quality 1..100. Lossless formats ignore quality.
	Encode(img image.Image, quality int) ([]byte, error)
	ContentType() string
}

// ImagingEncoder encodes with the pure-Go imaging library.
type ImagingEncoder struct {
	// Format is imaging.JPEG (the zero value) or imaging.PNG.
	Format imaging.Format
}

func (e ImagingEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var opts []imaging.EncodeOption
	switch e.Format {
	case imaging.JPEG:
		opts = append(opts, imaging.JPEGQuality(quality))
	case imaging.PNG:
		opts = append(opts, imaging.PNGCompressionLevel(png.DefaultCompression))
	default:
		return nil, fmt.Errorf("unsupported output format: %v", e.Format)
	}

	if err := imaging.Encode(&buf, img, e.Format, opts...); err != nil {
		return nil, fmt.Errorf("failed to encode %v: %w", e.Format, err)
	}
	return buf.Bytes(), nil
}

func (e ImagingEncoder) ContentType() string {
	if e.Format == imaging.PNG {
		return "image/png"
	}
	return "image/jpeg"
}

// VipsEncoder encodes JPEG through libvips. InitVips must have succeeded.
type VipsEncoder struct{}

func (VipsEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("libvips not available")
	}

	// hand the raster to vips as uncompressed PNG
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.NoCompression)); err != nil {
		return nil, fmt.Errorf("failed to stage raster for vips: %w", err)
	}

	ref, err := vips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("vips failed to load raster: %w", err)
	}
	defer ref.Close()

	out, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        quality,
		StripMetadata:  true,
		OptimizeCoding: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}
	return out, nil
}

func (VipsEncoder) ContentType() string {
	return "image/jpeg"
}

// EncoderByName resolves an encoder name from configuration or flags.
func EncoderByName(name string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "imaging", "jpeg", "jpg":
		return ImagingEncoder{Format: imaging.JPEG}, nil
	case "png":
		return ImagingEncoder{Format: imaging.PNG}, nil
	case "vips":
		return VipsEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown encoder %q (want imaging, png or vips)", name)
	}
}
