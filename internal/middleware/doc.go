// Package middleware provides HTTP middleware for the frame sampler server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by mux route template
//   - gzip compression of JSON responses
package middleware
