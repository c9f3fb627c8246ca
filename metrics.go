package workqueue

import (
	"sync/atomic"
	"time"
)

// MetricsPolicy defines hooks used by the worker system to report queueing
// and execution activity per class.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking; IncQueued is
// called on the submit path.
type MetricsPolicy interface {
	// IncQueued counts an item inserted into the class queue.
	IncQueued(c Class)

	// DecQueued counts an item removed from the class queue by a worker.
	DecQueued(c Class)

	// ObserveExecuted records a finished routine and how long it ran.
	ObserveExecuted(c Class, d time.Duration)

	// IncPanicked counts a routine that panicked.
	IncPanicked(c Class)

	// IncSaturated counts a wake-up dropped by a saturated counting signal.
	IncSaturated(c Class)
}

type classCounters struct {
	executed  atomic.Uint64
	panicked  atomic.Uint64
	saturated atomic.Uint64
	busy      atomic.Int64
	_         cachePad

	queued atomic.Int64
	_      cachePad
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	classes [NumClasses]classCounters
}

// Executed returns the number of routines of class c that finished.
func (m *AtomicMetrics) Executed(c Class) uint64 { return m.classes[c].executed.Load() }

// Queued returns the current number of queued items of class c.
func (m *AtomicMetrics) Queued(c Class) int64 { return m.classes[c].queued.Load() }

// Panicked returns the number of routines of class c that panicked.
func (m *AtomicMetrics) Panicked(c Class) uint64 { return m.classes[c].panicked.Load() }

// Saturated returns the number of dropped wake-ups of class c.
func (m *AtomicMetrics) Saturated(c Class) uint64 { return m.classes[c].saturated.Load() }

// Busy returns the total time routines of class c spent running.
func (m *AtomicMetrics) Busy(c Class) time.Duration {
	return time.Duration(m.classes[c].busy.Load())
}

func (m *AtomicMetrics) IncQueued(c Class) { m.classes[c].queued.Add(1) }
func (m *AtomicMetrics) DecQueued(c Class) { m.classes[c].queued.Add(-1) }

func (m *AtomicMetrics) ObserveExecuted(c Class, d time.Duration) {
	m.classes[c].executed.Add(1)
	m.classes[c].busy.Add(int64(d))
}

func (m *AtomicMetrics) IncPanicked(c Class)  { m.classes[c].panicked.Add(1) }
func (m *AtomicMetrics) IncSaturated(c Class) { m.classes[c].saturated.Add(1) }

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (NoopMetrics) IncQueued(Class)                      {}
func (NoopMetrics) DecQueued(Class)                      {}
func (NoopMetrics) ObserveExecuted(Class, time.Duration) {}
func (NoopMetrics) IncPanicked(Class)                    {}
func (NoopMetrics) IncSaturated(Class)                   {}
