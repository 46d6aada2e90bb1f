// Package sampler extracts representative thumbnails from a video at
// proportional positions of its duration.
//
// A run opens the source, waits for its metadata, then for each proportion
// seeks, waits until positioned, paints the frame onto a reused surface and
// encodes it:
//
//	s := sampler.New(sampler.Options{})
//	frames, err := s.ExtractFrames(ctx, "/videos/clip.mp4", []float64{0.12, 0.5, 0.9})
//
// Seek targets are clamped to [0.05, duration-0.05]; for sources of 0.1s or
// less every target collapses to 0.05 and the run still succeeds.
//
// Errors are typed: *SourceOpenError, *MediaLoadError, *SeekError and
// *PaintError each wrap their cause. Runs are all or nothing unless
// Options.BestEffort is set.
package sampler
