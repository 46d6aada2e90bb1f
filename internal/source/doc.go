// Package source resolves video references into local files.
//
// Supported references:
//   - local paths and file:// URLs, checked with stale NFS handle retry
//   - http:// and https:// URLs, downloaded to a temp file
//   - s3://bucket/key, downloaded from an S3-compatible store (MinIO)
//
// Uploads are spooled the same way through FromUpload. Every Source must be
// released; released temp files are removed, local files are left alone.
package source
