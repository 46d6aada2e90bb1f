package mediatypes

import (
	"mime"
	"path/filepath"
	"strings"
)

// Decoder identifies which decoding backend can open a container.
type Decoder string

const (
	// DecoderFFmpeg decodes through an external ffmpeg process.
	DecoderFFmpeg Decoder = "ffmpeg"
	// DecoderMPEG1 decodes MPEG-1 program streams in-process.
	DecoderMPEG1 Decoder = "mpeg1"
)

// VideoFormat describes a supported video container.
type VideoFormat struct {
	Ext  string
	Mime string
	// PureGo reports whether the in-process MPEG-1 decoder can open it.
	PureGo bool
}

// VideoFormats maps lowercase extensions (with the leading dot) to formats.
var VideoFormats = map[string]VideoFormat{
	".mp4":  {Ext: ".mp4", Mime: "video/mp4"},
	".m4v":  {Ext: ".m4v", Mime: "video/x-m4v"},
	".mkv":  {Ext: ".mkv", Mime: "video/x-matroska"},
	".webm": {Ext: ".webm", Mime: "video/webm"},
	".mov":  {Ext: ".mov", Mime: "video/quicktime"},
	".avi":  {Ext: ".avi", Mime: "video/x-msvideo"},
	".wmv":  {Ext: ".wmv", Mime: "video/x-ms-wmv"},
	".flv":  {Ext: ".flv", Mime: "video/x-flv"},
	".ogv":  {Ext: ".ogv", Mime: "video/ogg"},
	".3gp":  {Ext: ".3gp", Mime: "video/3gpp"},
	".ts":   {Ext: ".ts", Mime: "video/mp2t"},
	".mpg":  {Ext: ".mpg", Mime: "video/mpeg", PureGo: true},
	".mpeg": {Ext: ".mpeg", Mime: "video/mpeg", PureGo: true},
	".m1v":  {Ext: ".m1v", Mime: "video/mpeg", PureGo: true},
}

// mimePreference is the lookup order for ExtensionForMime, so that
// "video/mpeg" maps to ".mpg" rather than whichever map entry comes first.
var mimePreference = []string{
	".mp4", ".webm", ".mov", ".mkv", ".mpg", ".avi", ".ogv", ".flv", ".wmv", ".3gp", ".ts", ".m4v",
}

// DefaultExtension is used when neither a name nor a content type reveals the container.
const DefaultExtension = ".mp4"

// Ext returns the lowercase extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsVideo returns true if the extension is a known video container.
func IsVideo(ext string) bool {
	_, ok := VideoFormats[strings.ToLower(ext)]
	return ok
}

// GetMimeType returns the MIME type for an extension, or
// "application/octet-stream" if it is not a known video container.
func GetMimeType(ext string) string {
	if f, ok := VideoFormats[strings.ToLower(ext)]; ok {
		return f.Mime
	}
	return "application/octet-stream"
}

// ExtensionForMime maps a Content-Type header value to a container extension.
// Parameters such as "; codecs=..." are ignored. Returns "" if unknown.
func ExtensionForMime(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	for _, ext := range mimePreference {
		if VideoFormats[ext].Mime == mediaType {
			return ext
		}
	}
	return ""
}

// DecoderFor picks the backend for a file. MPEG-1 containers use the in-process
// decoder when ffmpeg is missing or when preferPureGo is set.
func DecoderFor(name string, ffmpegAvailable, preferPureGo bool) Decoder {
	f, ok := VideoFormats[Ext(name)]
	if ok && f.PureGo && (preferPureGo || !ffmpegAvailable) {
		return DecoderMPEG1
	}
	return DecoderFFmpeg
}
