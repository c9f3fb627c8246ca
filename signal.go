package workqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DefaultSignalCapacity bounds the number of outstanding wake-ups per class.
const DefaultSignalCapacity = 256

// ErrSignalOverflow reports a release beyond the counting signal capacity.
var ErrSignalOverflow = errors.New("workqueue: counting signal overflow")

// OverflowPolicy decides what a release beyond capacity does.
//
// The capacity is a configuration bound, not backpressure: Submit never
// blocks on it.
type OverflowPolicy int

const (
	// OverflowSaturate drops the extra wake-up. No item is stranded, since a
	// woken worker drains its queue until it is empty before waiting again.
	OverflowSaturate OverflowPolicy = iota

	// OverflowPanic treats the overflow as fatal and panics with
	// ErrSignalOverflow in the submitting goroutine. The panic is raised
	// after the item was queued, so that item still runs.
	OverflowPanic
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowSaturate:
		return "saturate"
	case OverflowPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ParseOverflowPolicy accepts "saturate" or "panic" (case-insensitive).
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(s) {
	case "saturate", "":
		return OverflowSaturate, nil
	case "panic", "fatal":
		return OverflowPanic, nil
	default:
		return 0, fmt.Errorf("workqueue: unknown overflow policy %q", s)
	}
}

// countingSignal counts items available but not yet claimed. Consumers park
// in wait while the count is zero; producers release one unit per insert.
//
// It is a weighted semaphore whose whole weight is taken at construction:
// releasing a unit makes it available, waiting takes it back.
// count is reserved before a unit is released and dropped after one is
// taken, so the semaphore is never released beyond what it holds.
type countingSignal struct {
	sem      *semaphore.Weighted
	capacity int64
	count    atomic.Int64
	policy   OverflowPolicy
}

func newCountingSignal(capacity int64, policy OverflowPolicy) *countingSignal {
	if capacity <= 0 {
		capacity = DefaultSignalCapacity
	}
	s := &countingSignal{
		sem:      semaphore.NewWeighted(capacity),
		capacity: capacity,
		policy:   policy,
	}
	// fresh semaphore, cannot fail
	s.sem.TryAcquire(capacity)
	return s
}

// release makes one unit available and wakes at most one waiter. It reports
// false when the unit was dropped by OverflowSaturate.
func (s *countingSignal) release() bool {
	for {
		n := s.count.Load()
		if n >= s.capacity {
			if s.policy == OverflowPanic {
				panic(fmt.Errorf("%w: capacity %d", ErrSignalOverflow, s.capacity))
			}
			return false
		}
		if s.count.CompareAndSwap(n, n+1) {
			break
		}
	}
	s.sem.Release(1)
	return true
}

// wait parks until a unit is available and takes it.
func (s *countingSignal) wait(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	s.count.Add(-1)
	return nil
}

// tryWait takes a unit if one is available, without parking.
func (s *countingSignal) tryWait() bool {
	if !s.sem.TryAcquire(1) {
		return false
	}
	s.count.Add(-1)
	return true
}

// Count returns the number of released units not yet taken.
func (s *countingSignal) Count() int64 { return s.count.Load() }

// Capacity returns the configured bound.
func (s *countingSignal) Capacity() int64 { return s.capacity }
