// Command framegrab extracts thumbnails from videos on the command line.
//
// Each source is a local path, a file://, http:// or https:// URL, or an
// s3://bucket/key reference. One thumbnail is captured per proportion and
// written as <base>-<n>.jpg into the output directory, numbered from 1.
//
// Usage:
//
//	framegrab [flags] <source>...
//
// Flags:
//
//	-out dir          directory for thumbnails (default ".")
//	-json             print a JSON manifest to stdout instead of one line per frame
//	-p list           comma separated proportions in [0,1]
//	-timeout d        per-source extraction timeout (default 2m)
//	-best-effort      skip frames that fail instead of failing the source
//	-encoder name     imaging (pure Go) or vips
//	-quality q        JPEG quality in (0,1] (default 0.85)
//	-metadata-url u   also ask the metadata service and write <base>-meta.json
//	                  (plus <base>-meta.txt when the reply parsed)
//	-lang l           metadata language: hi, en or hi-en
//	-v                verbose logging
//
// Environment:
//
//	TEMP_DIR                                         where remote sources are spooled
//	S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY        object store for s3:// sources
//	S3_USE_SSL                                       use TLS for the object store
//	PREFER_PURE_GO_MPEG                              decode .mpg files without ffmpeg
//
// Sources are processed concurrently. New extractions wait while the heap is
// above the memory monitor's high-water mark. The exit status is 1 when any
// source failed and 2 for usage errors.
package main
