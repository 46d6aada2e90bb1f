package source

import (
	"errors"
	"sync"
)

var (
	// ErrTooLarge is returned when a download or upload exceeds the size cap.
	ErrTooLarge = errors.New("source exceeds maximum size")
	// ErrUnsupportedScheme is returned for references the resolver cannot fetch.
	ErrUnsupportedScheme = errors.New("unsupported source scheme")
	// ErrS3NotConfigured is returned for s3:// references without an endpoint.
	ErrS3NotConfigured = errors.New("s3 endpoint not configured")
)

// Source is a video available as a local file for the duration of one run.
type Source struct {
	// Path is the local file to decode.
	Path string
	// Name is the display name (the original file name).
	Name string
	// Scheme is where the bytes came from: file, http, https, s3 or upload.
	Scheme string
	// Size in bytes, when known.
	Size int64

	release     func() error
	releaseOnce sync.Once
	releaseErr  error
}

// New wraps an already local file. release, if non-nil, runs once on Release.
func New(path, name, scheme string, size int64, release func() error) *Source {
	return &Source{Path: path, Name: name, Scheme: scheme, Size: size, release: release}
}

// Release removes anything the resolver created for this source. Local
// files are never removed. Safe to call more than once.
func (s *Source) Release() error {
	s.releaseOnce.Do(func() {
		if s.release != nil {
			s.releaseErr = s.release()
		}
	})
	return s.releaseErr
}
