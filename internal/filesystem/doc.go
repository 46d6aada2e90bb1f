/*
Package filesystem wraps os.Stat and os.Open with retry logic for NFS stale
file handle errors (ESTALE).

Video sources often live on network mounts. A stale handle during the
initial stat or open would otherwise surface as a source open failure even
though a second attempt a few milliseconds later succeeds.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

Only ESTALE triggers a retry; every other error is returned immediately.
Defaults: 3 retries, 50ms initial backoff doubling up to 500ms.

Retry metrics are reported through an Observer installed with SetObserver;
the metrics package provides the Prometheus implementation.
*/
package filesystem
