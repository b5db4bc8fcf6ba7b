// Package settle runs independent tasks concurrently and waits for every one of
// them, collecting each outcome instead of stopping at the first failure.
package settle

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one task.
type Result[T any] struct {
	Value T
	Err   error
}

// All runs fn for each index in [0, n) concurrently and returns the outcomes
// in index order. A failing or panicking task never affects its siblings.
func All[T any](ctx context.Context, n int, fn func(ctx context.Context, i int) (T, error)) []Result[T] {
	results := make([]Result[T], n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			results[i] = run(ctx, i, fn)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // tasks report through results
	return results
}

func run[T any](ctx context.Context, i int, fn func(context.Context, int) (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[T]{Err: fmt.Errorf("task panicked: %v", r)}
		}
	}()
	v, err := fn(ctx, i)
	return Result[T]{Value: v, Err: err}
}
