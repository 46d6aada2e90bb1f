// Package mediasource opens video sources and positions them frame by frame.
//
// A Handle wraps a Decoder and turns its blocking calls into the media
// lifecycle the sampler awaits:
//
//	h := mediasource.Open(ctx, dec)
//	defer h.Close()
//	meta, err := h.Ready(ctx)        // fires exactly once: ready or *LoadError
//	at, err := h.SeekTo(ctx, 12.0)   // suspends until positioned
//	img := h.CurrentFrame()
//
// Only one seek may be in flight per handle. A caller that gives up on a seek
// (context done) or closes the handle leaves the decoder to finish on its own;
// the late result is discarded.
//
// Two backends are provided:
//   - FFmpegDecoder: ffprobe for metadata and one ffmpeg process per seek,
//     reading the achieved time from the showinfo filter
//   - MPEGDecoder: in-process MPEG-1 decoding, used for .mpg files when ffmpeg
//     is unavailable or PreferPureGo is set
package mediasource
