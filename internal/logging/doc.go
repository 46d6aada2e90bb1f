// Package logging provides a small leveled logger for the frame sampler.
//
// Levels, from most to least verbose:
//   - DEBUG: per-capture seek and encode details
//   - INFO: run summaries and startup output
//   - WARN: skipped captures, fallbacks
//   - ERROR: failed runs
//
// The level comes from DEBUG or LOG_LEVEL and can be overridden with SetLevel.
package logging
