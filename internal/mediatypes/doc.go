// Package mediatypes describes the video containers the sampler accepts.
//
// It maps file extensions to MIME types, maps Content-Type headers of remote
// sources back to extensions, and decides which decoding backend opens a file:
//
//	mediatypes.DecoderFor("clip.mpg", false, false) // DecoderMPEG1
//	mediatypes.DecoderFor("clip.mp4", true, false)  // DecoderFFmpeg
//
// Anything not in VideoFormats is still handed to ffmpeg, which decides for
// itself whether it can decode the stream.
package mediatypes
