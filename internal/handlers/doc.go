// Package handlers provides the HTTP API of the frame sampler.
//
// Routes (see [Handlers.RegisterRoutes]):
//   - GET  /api/ping: liveness with a server timestamp
//   - POST /api/frames: thumbnail extraction from an upload or a URL
//   - POST /api/metadata: proxy to the metadata collaborator
//   - GET  /health, /livez, /readyz, /version
//
// Errors are returned as {"ok":false,"error":"..."}. Extraction failures map
// to 400 for bad input, 413 for oversized sources, 422 when the source
// cannot be opened or decoded, 504 when the run deadline passes and 500 for
// failed captures.
package handlers
