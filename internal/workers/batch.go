package workers

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one batch item.
type Result[T any] struct {
	Value T
	Err   error
}

// RunBatch calls fn for every item with at most n calls in flight and
// returns results in item order. A failing item does not cancel the others;
// items not yet started when ctx is done report ctx.Err().
func RunBatch[I, O any](ctx context.Context, n int, items []I, fn func(context.Context, I) (O, error)) []Result[O] {
	results := make([]Result[O], len(items))
	if n < 1 {
		n = 1
	}

	var g errgroup.Group
	g.SetLimit(n)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			v, err := fn(ctx, item)
			results[i] = Result[O]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
