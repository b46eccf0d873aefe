// Package batch runs ordered lists of work items through a caller-supplied
// operation with bounded concurrency.
//
// Successes are returned in original input order so callers can zip results
// back to their inputs; failures are reported in the order they actually
// occurred, which is the useful order for diagnostics. This asymmetry is
// deliberate.
package batch

import (
	"context"
	"time"
)

// Item is one unit of work: an identifier (usually a file path) plus its
// position in the original input sequence.
type Item struct {
	Path  string
	Index int
}

// MakeItems pairs each path with its position.
func MakeItems(paths []string) []Item {
	items := make([]Item, len(paths))
	for i, p := range paths {
		items[i] = Item{Path: p, Index: i}
	}
	return items
}

// Operation processes a single item. It may block; it must eventually settle.
// A returned error (or a panic) fails that item only, never the batch.
type Operation[R any] func(ctx context.Context, item Item) (R, error)

// Progress describes one successfully settled item. Completed counts every
// settled item so far, success or failure. Percentage carries full float
// precision. Duration is the item's measured wall-clock time.
type Progress[R any] struct {
	Item       Item
	Index      int
	Completed  int
	Total      int
	Result     R
	Percentage float64
	Duration   time.Duration
}

// Failure describes one failed item, annotated with how many items had
// settled when it occurred and how long the attempt took.
type Failure struct {
	Item      Item
	Index     int
	Err       error
	Completed int
	Total     int
	Duration  time.Duration
}

// Result aggregates every outcome of one batch run.
//
// Results holds success values ordered by original input index, with failed
// items omitted (no placeholders). Errors holds failures in completion
// order. Successful+Failed always equals Total.
type Result[R any] struct {
	Results    []R
	Errors     []Failure
	Total      int
	Successful int
	Failed     int
}

// Config controls one batch run.
type Config[R any] struct {
	// Concurrency is the requested slot count. Values <= 0 clamp to 1;
	// values above the probe's parallelism clamp to that. Callers that
	// want a workload-derived default should resolve one with Recommend.
	Concurrency int

	// Probe supplies host facts. Nil uses a runtime-backed default.
	Probe Probe

	// Timeout, when positive, fails any single item that runs longer.
	// The underlying operation is abandoned, not interrupted.
	Timeout time.Duration

	// OnProgress fires once per successful item, in completion order.
	OnProgress func(Progress[R])

	// OnError fires once per failed item, in completion order.
	OnError func(Failure)
}

// outcome is the settled result of running one item, produced exactly once
// per input item.
type outcome[R any] struct {
	value   R
	err     error
	elapsed time.Duration
}
