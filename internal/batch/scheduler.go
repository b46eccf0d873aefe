package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Run processes items through op with at most the configured number of
// invocations in flight at once. The pool refills continuously: a freed slot
// immediately pulls the next queued item, so throughput never stalls on the
// slowest member of an arbitrary wave.
//
// Every item settles exactly once. A failing item never cancels, blocks, or
// retries the others; retry policy belongs to the caller. The only error Run
// itself returns is a pool construction failure. Per-item errors are always
// reported structurally in Result.Errors, never re-raised.
func Run[R any](ctx context.Context, items []Item, op Operation[R], cfg Config[R]) (*Result[R], error) {
	res := &Result[R]{Total: len(items)}
	if len(items) == 0 {
		return res, nil
	}

	if cfg.Timeout > 0 {
		op = WithTimeout(op, cfg.Timeout)
	}

	workers := clampConcurrency(cfg.Concurrency, probeOrDefault(cfg.Probe))
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	type slot struct {
		value R
		ok    bool
	}
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		completed int
		slots     = make([]slot, len(items))
	)

	settle := func(item Item, out outcome[R]) {
		// One critical section per settled item: the completed counter,
		// the index-addressed success slot and the append-ordered error
		// list all move together, and callbacks observe them in real
		// completion order.
		mu.Lock()
		defer mu.Unlock()
		completed++
		if out.err != nil {
			f := Failure{
				Item:      item,
				Index:     item.Index,
				Err:       out.err,
				Completed: completed,
				Total:     res.Total,
				Duration:  out.elapsed,
			}
			res.Errors = append(res.Errors, f)
			if cfg.OnError != nil {
				cfg.OnError(f)
			}
			return
		}
		slots[item.Index] = slot{value: out.value, ok: true}
		if cfg.OnProgress != nil {
			cfg.OnProgress(Progress[R]{
				Item:       item,
				Index:      item.Index,
				Completed:  completed,
				Total:      res.Total,
				Result:     out.value,
				Percentage: float64(completed) / float64(res.Total) * 100,
				Duration:   out.elapsed,
			})
		}
	}

	for i := range items {
		item := items[i]
		item.Index = i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			settle(item, runTask(ctx, item, op))
		})
		if submitErr != nil {
			// Pool rejected the task (released or overloaded); the item
			// still settles exactly once, as a failure.
			settle(item, outcome[R]{err: fmt.Errorf("submit: %w", submitErr)})
			wg.Done()
		}
	}
	wg.Wait()

	// Successes come back in original input order regardless of when each
	// item finished; failed positions are omitted, not padded.
	for i := range slots {
		if slots[i].ok {
			res.Results = append(res.Results, slots[i].value)
		}
	}
	res.Successful = len(res.Results)
	res.Failed = len(res.Errors)
	return res, nil
}

// clampConcurrency resolves the requested slot count into
// [1, host parallelism]. Requests of zero or less clamp to 1; callers that
// want a host-derived default resolve one first via Recommend.
func clampConcurrency(requested int, probe Probe) int {
	units := probe.Parallelism()
	if units < 1 {
		units = fallbackParallelism
	}
	if requested < 1 {
		return 1
	}
	if requested > units {
		return units
	}
	return requested
}
