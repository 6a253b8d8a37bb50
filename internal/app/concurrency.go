package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PartialResult holds a value or an error for one of several independent calls.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// ParallelPartial runs fns concurrently and collects every outcome. A failing
// call does not cancel the others. limit bounds concurrency; zero or less
// means unbounded.
//
// Example:
//
//	results := ParallelPartial(ctx, 0, loadColors, loadHero)
//	for i, r := range results {
//	    if r.Err != nil { ... keep defaults for i ... }
//	}
func ParallelPartial[T any](ctx context.Context, limit int, fns ...func(context.Context) (T, error)) []PartialResult[T] {
	results := make([]PartialResult[T], len(fns))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, fn := range fns {
		g.Go(func() error {
			value, err := fn(ctx)
			results[i] = PartialResult[T]{Value: value, Err: err}

			return nil
		})
	}

	_ = g.Wait()

	return results
}
