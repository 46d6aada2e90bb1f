// Package surface provides the offscreen raster that captured frames are
// painted onto before being encoded.
//
// One Surface is allocated per extraction run and reused for every capture:
//
//	w, h := surface.Size(meta.Width, meta.Height)
//	s := surface.New(w, h, surface.ImagingEncoder{})
//	defer s.Release()
//	if err := s.Paint(frame); err != nil { ... }
//	jpg, err := s.Encode(surface.DefaultQuality)
//
// Frames are stretched to fill the raster with bilinear scaling. Encoding goes
// through an Encoder: ImagingEncoder is pure Go, VipsEncoder uses libvips and
// requires InitVips at startup.
package surface
