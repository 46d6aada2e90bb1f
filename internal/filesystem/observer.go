package filesystem

// Observer records retry metrics. The metrics package provides the
// Prometheus implementation so this package does not import it.
type Observer interface {
	// ObserveRetryAttempt is called before each backoff sleep.
	ObserveRetryAttempt(op, volume string)
	ObserveRetrySuccess(op, volume string)
	ObserveRetryFailure(op, volume string)
	ObserveStaleError(op, volume string)
	ObserveRetryDuration(op, volume string, durationSeconds float64)
}

type nopObserver struct{}

func (nopObserver) ObserveRetryAttempt(string, string)           {}
func (nopObserver) ObserveRetrySuccess(string, string)           {}
func (nopObserver) ObserveRetryFailure(string, string)           {}
func (nopObserver) ObserveStaleError(string, string)             {}
func (nopObserver) ObserveRetryDuration(string, string, float64) {}

// defaultObserver is replaced once at startup; tests run with the no-op.
var defaultObserver Observer = nopObserver{}

// SetObserver sets the package-level metrics observer. Passing nil restores the no-op.
func SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	defaultObserver = o
}
