// Package scheduler runs per-record remote operations with bounded
// concurrency, preserving input order in the collected results and honoring
// cooperative cancellation through the context.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrCancelled is returned when cancellation was observed mid-batch. Partial
// results are discarded; callers must report the batch as cancelled, never as
// complete.
var ErrCancelled = errors.New("batch cancelled")

// DefaultConcurrency bounds in-flight probes when the caller does not say
// otherwise.
const DefaultConcurrency = 4

// MapBatched runs fn for indexes 0..n-1 in chunks of batchSize, draining each
// chunk completely before starting the next. Results are indexed by input
// position regardless of completion order. The context is checked before each
// chunk and before each task; once cancellation is observed no further tasks
// start and ErrCancelled is returned.
func MapBatched[T any](ctx context.Context, batchSize, n int, fn func(ctx context.Context, i int) T) ([]T, error) {
	if batchSize <= 0 {
		batchSize = DefaultConcurrency
	}

	results := make([]T, n)
	for start := 0; start < n; start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, ErrCancelled
		}

		end := start + batchSize
		if end > n {
			end = n
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				break
			}
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = fn(ctx, idx)
			}(i)
		}
		wg.Wait()

		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
	}
	return results, nil
}

// FanOut runs fn for indexes 0..n-1 with at most limit in flight (limit <= 0
// means unbounded), collecting results by input position. fn folds per-item
// failures into its result; FanOut itself fails only on cancellation.
func FanOut[T any](ctx context.Context, limit, n int, fn func(ctx context.Context, i int) T) ([]T, error) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]T, n)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := fn(gctx, i)
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, ErrCancelled
	}
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}
	return results, nil
}

// Tracker is a mutex-guarded progress counter shared across concurrent
// probes. All mutation goes through Increment; concurrent tasks never touch
// raw shared counters.
type Tracker struct {
	mu    sync.Mutex
	done  int
	total int
}

// NewTracker creates a tracker for total operations.
func NewTracker(total int) *Tracker {
	return &Tracker{total: total}
}

// Increment records one completed operation and returns the updated counts.
func (t *Tracker) Increment() (done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done++
	return t.done, t.total
}

// Snapshot returns the current counts without mutating them.
func (t *Tracker) Snapshot() (done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done, t.total
}
