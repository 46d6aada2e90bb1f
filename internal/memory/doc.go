// Package memory sizes the Go heap for containers and applies backpressure
// to frame extraction when the heap nears its limit.
//
// # Configuration
//
// Call [ConfigureLimit] early in main, before significant allocations:
//
//	func main() {
//	    memory.ConfigureLimit()
//	    // ...
//	}
//
// GOMEMLIMIT, when set, is left alone. Otherwise MEMORY_LIMIT (bytes, e.g.
// from the Kubernetes Downward API) or the cgroup limit is multiplied by
// MEMORY_RATIO (default 0.6) and applied with debug.SetMemoryLimit. The
// ratio is lower than usual for Go services because ffmpeg decodes in child
// processes charged to the same cgroup.
//
// # Backpressure
//
// A [Monitor] samples heap allocation and pauses once usage crosses the
// critical water mark, resuming below the high water mark:
//
//	mon := memory.NewMonitor(memory.DefaultConfig())
//	mon.Start()
//	defer mon.Stop()
//
//	if mon.IsPaused() {
//	    // refuse new work
//	}
//	if err := mon.Wait(ctx); err != nil {
//	    // canceled or stopped
//	}
package memory
