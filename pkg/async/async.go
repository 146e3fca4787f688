package async

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Await blocks until the computation completes and returns its result and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// IsComplete reports whether the computation has finished without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async runs fn(ctx, param) in its own goroutine and returns a Future for it.
// A context that is already done completes the Future with ctx.Err()
// without calling fn.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// WaitAll waits for every future and returns the results in argument order.
// Unlike a fail-fast join it never stops at the first error: all futures are
// awaited and their errors are joined.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))
	var errs []error

	for i, future := range futures {
		result, err := future.Await()
		results[i] = result
		if err != nil {
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}

// Map applies fn to every item with at most limit calls in flight and returns
// the outputs in input order. A non-positive limit runs all items at once.
//
// fn is called exactly once per item. If ctx is done before a slot frees up,
// fn still runs with the done context so it can report its own failure for
// that item.
func Map[T any, U any](ctx context.Context, items []T, limit int, fn func(context.Context, T) U) []U {
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}
	if limit == 0 {
		return []U{}
	}

	sem := semaphore.NewWeighted(int64(limit))
	futures := make([]*Future[U], len(items))
	for i, item := range items {
		futures[i] = Async(context.WithoutCancel(ctx), item, func(_ context.Context, item T) (U, error) {
			if err := sem.Acquire(ctx, 1); err != nil {
				return fn(ctx, item), nil
			}
			defer sem.Release(1)
			return fn(ctx, item), nil
		})
	}

	results, _ := WaitAll(futures...)
	return results
}
