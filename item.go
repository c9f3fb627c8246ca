package workqueue

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrNilItem is returned when Submit is called with a nil item.
	ErrNilItem = errors.New("workqueue: work item is nil")

	// ErrNotInitialized is returned when a submitted item has no routine.
	ErrNotInitialized = errors.New("workqueue: work item is not initialized")

	// ErrItemQueued is returned when an item is submitted again before a
	// worker has removed it from its queue.
	ErrItemQueued = errors.New("workqueue: work item is already queued")

	// ErrInvalidClass is returned for a class outside Normal..HyperCritical.
	ErrInvalidClass = errors.New("workqueue: invalid class")
)

// Routine is the function a worker runs for a work item. arg is the value
// given to InitializeWorkItem, passed through unchanged.
type Routine func(arg any)

// WorkItem is a unit of deferred work: a routine and its argument.
//
// The caller allocates and owns the item for its whole lifetime. Between
// Submit and the moment a worker removes it, the queue holds the only
// reference it needs and the item must not be submitted again. Once the
// routine has started the item may be reinitialized and resubmitted,
// including from inside its own routine.
type WorkItem struct {
	routine Routine
	arg     any

	// queued is true exactly while a queue owns the item.
	queued atomic.Bool
}

// InitializeWorkItem writes routine and arg into item and marks it unowned.
// It never blocks and never allocates.
func InitializeWorkItem(item *WorkItem, routine Routine, arg any) {
	item.Init(routine, arg)
}

// Init is the method form of InitializeWorkItem.
func (w *WorkItem) Init(routine Routine, arg any) {
	w.routine = routine
	w.arg = arg
	w.queued.Store(false)
}

// NewWorkItem allocates an initialized item.
func NewWorkItem(routine Routine, arg any) *WorkItem {
	w := &WorkItem{}
	w.Init(routine, arg)
	return w
}

// Arg returns the argument the item was initialized with.
func (w *WorkItem) Arg() any { return w.arg }

// Queued reports whether a queue currently owns the item.
func (w *WorkItem) Queued() bool { return w.queued.Load() }

// claim moves ownership of the item to a queue. It fails if another queue
// already owns it.
func (w *WorkItem) claim() bool {
	return w.queued.CompareAndSwap(false, true)
}

// release hands ownership back to the caller. Called by the worker after
// removing the item and before running its routine.
func (w *WorkItem) release() {
	w.queued.Store(false)
}
