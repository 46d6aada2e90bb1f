/*
Package workers sizes worker pools and runs bounded batches of independent
extraction runs.

# Sizing

Count, ForCPU and ForMixed derive a worker count from GOMAXPROCS, which Go
sets from the container CPU limit, rather than runtime.NumCPU:

	n := workers.ForMixed(8) // 1.5 per CPU, at most 8

Operators can fix the count with SAMPLER_WORKERS:

	env:
	- name: SAMPLER_WORKERS
	  value: "4"

# Batches

RunBatch runs one function per item on a bounded errgroup. Each item's
error is kept in its Result; a failure never cancels sibling items:

	results := workers.RunBatch(ctx, n, refs, func(ctx context.Context, ref string) ([]sampler.CapturedFrame, error) {
		return s.ExtractFromRef(ctx, ref, nil)
	})
*/
package workers
