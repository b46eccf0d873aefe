package batch

import "runtime"

// fallbackParallelism is used when the host's parallel-execution unit count
// cannot be determined.
const fallbackParallelism = 4

// Probe reports host facts the scheduler and sizing heuristic depend on.
// Injecting it keeps batch runs reproducible in tests on any machine.
type Probe interface {
	// Parallelism is the number of parallel-execution units available.
	Parallelism() int
	// AvailableMemoryBytes estimates free memory, or 0 when unknown.
	AvailableMemoryBytes() uint64
}

type runtimeProbe struct{}

func (runtimeProbe) Parallelism() int             { return runtime.NumCPU() }
func (runtimeProbe) AvailableMemoryBytes() uint64 { return 0 }

func probeOrDefault(p Probe) Probe {
	if p == nil {
		return runtimeProbe{}
	}
	return p
}

// Sizing bounds the concurrency recommendation. The zero value means
// "no explicit bounds, no memory cap".
type Sizing struct {
	// MinConcurrency floors the recommendation. Defaults to 1.
	MinConcurrency int
	// MaxConcurrency caps the recommendation. Defaults to the host's
	// parallelism. When it conflicts with MinConcurrency, the floor wins.
	MaxConcurrency int
	// MemoryPerItem estimates the resource cost of one in-flight item.
	// When set, the recommendation is capped so the whole pool fits in
	// available memory, never below 1.
	MemoryPerItem uint64
	// Probe supplies host facts. Nil uses a runtime-backed default.
	Probe Probe
}

// Recommend suggests a concurrency level for a workload of itemCount items:
// the host's parallelism, never more workers than there is work, capped
// further under memory pressure, then clamped into the caller's bounds.
func Recommend(itemCount int, opts Sizing) int {
	probe := probeOrDefault(opts.Probe)
	units := probe.Parallelism()
	if units < 1 {
		units = fallbackParallelism
	}

	rec := units
	if itemCount < rec {
		rec = itemCount
	}
	if rec < 1 {
		rec = 1
	}

	if opts.MemoryPerItem > 0 {
		if avail := probe.AvailableMemoryBytes(); avail > 0 {
			byMemory := int(avail / opts.MemoryPerItem)
			if byMemory < 1 {
				byMemory = 1
			}
			if byMemory < rec {
				rec = byMemory
			}
		}
	}

	lo := opts.MinConcurrency
	if lo < 1 {
		lo = 1
	}
	hi := opts.MaxConcurrency
	if hi < 1 {
		hi = units
	}
	if hi < lo {
		hi = lo
	}
	if rec < lo {
		rec = lo
	}
	if rec > hi {
		rec = hi
	}
	return rec
}
