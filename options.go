package workqueue

import (
	"fmt"
	"time"
)

// DefaultPoolSize is the number of workers started for every class.
const DefaultPoolSize = 5

// Bounds of the nice scale used for class priorities.
const (
	minNice = -20
	maxNice = 19
)

// DefaultPriorities are the per-class thread priorities, as Linux nice
// values (lower is more urgent). They keep Normal < Critical < HyperCritical
// in urgency without requiring CAP_SYS_NICE.
var DefaultPriorities = [NumClasses]int{
	Normal:        10,
	Critical:      5,
	HyperCritical: 0,
}

// Options configure a WorkerSystem.
//
// All zero values are replaced with defaults in FillDefaults.
type Options struct {
	// PoolSize is the fixed number of workers per class.
	PoolSize int

	// SignalCapacity bounds each class's counting signal.
	SignalCapacity int64

	// Overflow decides what a release beyond SignalCapacity does.
	Overflow OverflowPolicy

	// Priorities holds one nice value per class, indexed by Class.
	// A slice of the wrong length is replaced by DefaultPriorities.
	Priorities []int

	// DisablePriority leaves worker threads at the inherited priority.
	DisablePriority bool

	// StrictPriority makes a failure to set a worker's priority a start
	// failure. Otherwise the failure is logged and reported as an internal
	// error.
	StrictPriority bool

	// PinWorkers pins every worker thread to one CPU, round-robin.
	PinWorkers bool

	// SpinLimit, LockBackoffInitial and LockBackoffMax tune the queue locks.
	SpinLimit          int
	LockBackoffInitial time.Duration
	LockBackoffMax     time.Duration

	// OnInternalError receives failures that do not stop the system:
	// priority or pinning failures and saturated wake-ups.
	OnInternalError func(error)

	// OnCallbackPanic receives the value recovered from a panicking routine.
	OnCallbackPanic func(Class, any)

	// onDequeue observes every item a worker removes, in queue order.
	// It runs under the queue lock and must not block.
	onDequeue func(Class, *WorkItem)
}

func (o *Options) FillDefaults() {
	if o.PoolSize <= 0 {
		o.PoolSize = DefaultPoolSize
	}
	if o.SignalCapacity <= 0 {
		o.SignalCapacity = DefaultSignalCapacity
	}
	if len(o.Priorities) != int(NumClasses) {
		o.Priorities = append([]int(nil), DefaultPriorities[:]...)
	}
	if o.SpinLimit <= 0 {
		o.SpinLimit = defaultSpinLimit
	}
	if o.LockBackoffInitial <= 0 {
		o.LockBackoffInitial = defaultBackoffInitial
	}
	if o.LockBackoffMax < o.LockBackoffInitial {
		o.LockBackoffMax = max(defaultBackoffMax, o.LockBackoffInitial)
	}
}

// Priority returns the configured nice value for c.
func (o *Options) Priority(c Class) int {
	if !c.Valid() {
		return DefaultPriorities[Normal]
	}
	if len(o.Priorities) == int(NumClasses) {
		return o.Priorities[c]
	}
	return DefaultPriorities[c]
}

func (o *Options) validate() error {
	for c := Normal; c < NumClasses; c++ {
		if p := o.Priorities[c]; p < minNice || p > maxNice {
			return fmt.Errorf("workqueue: %s priority %d outside [%d, %d]", c, p, minNice, maxNice)
		}
	}
	if o.Overflow != OverflowSaturate && o.Overflow != OverflowPanic {
		return fmt.Errorf("workqueue: unknown overflow policy %d", o.Overflow)
	}
	return nil
}
