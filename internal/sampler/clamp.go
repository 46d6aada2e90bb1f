package sampler

import (
	"fmt"
	"math"
)

// EdgeMargin keeps seek targets away from the first and last instant of a
// source, where decoders often have no displayable frame.
const EdgeMargin = 0.05

// DefaultProportions are used when a request names none.
var DefaultProportions = []float64{0.12, 0.32, 0.55, 0.75, 0.92}

// Clamp maps a raw target t onto [EdgeMargin, duration-EdgeMargin]. For
// durations of 2*EdgeMargin or less the window is empty and every target
// collapses to EdgeMargin.
func Clamp(t, duration float64) float64 {
	return math.Max(EdgeMargin, math.Min(duration-EdgeMargin, t))
}

// SanitizeDuration turns NaN, infinite and negative durations into 0.
func SanitizeDuration(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}

// clampActual bounds the time a decoder reports. Decoders snap to keyframes
// and may land outside the requested window.
func clampActual(at, duration float64) float64 {
	if math.IsNaN(at) || at < 0 {
		at = 0
	}
	switch {
	case duration > 2*EdgeMargin:
		return math.Max(EdgeMargin, math.Min(duration-EdgeMargin, at))
	case duration > 0:
		return math.Min(at, duration)
	default:
		// undeclared duration: nothing to bound against
		return at
	}
}

// normalizeProportions validates ps and returns a private copy. An empty
// list selects DefaultProportions.
func normalizeProportions(ps []float64) ([]float64, error) {
	if len(ps) == 0 {
		return append([]float64(nil), DefaultProportions...), nil
	}
	out := make([]float64, len(ps))
	for i, p := range ps {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("%w: proportions[%d] = %v", ErrInvalidProportion, i, p)
		}
		out[i] = p
	}
	return out, nil
}

// FormatTime renders seconds as m:ss for frame labels.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	m := int(seconds / 60)
	s := int(math.Mod(seconds, 60))
	return fmt.Sprintf("%d:%02d", m, s)
}
