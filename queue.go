package workqueue

import (
	"sync/atomic"

	"github.com/eapache/queue"
	"golang.org/x/sys/cpu"
)

// cachePad keeps the hot counters of one class off the lock's cache line.
type cachePad = cpu.CacheLinePad

// workQueue is the per-class queue: a FIFO of owned items guarded by a
// spin lock, paired with a counting signal of unclaimed items.
//
// items is mutated only under lock. The signal is released after the insert
// has been published and outside the lock.
type workQueue struct {
	class Class

	lock  SpinLock
	items *queue.Queue
	_     cachePad

	signal *countingSignal

	workers []*workerThread

	// onDequeue observes removals in queue order, under lock.
	onDequeue func(Class, *WorkItem)

	waiting atomic.Int32 // workers parked on signal
	running atomic.Int32 // routines executing right now
	peak    atomic.Int32 // highest observed running
	live    atomic.Int32 // workers that have not exited
	_       cachePad
}

func newWorkQueue(class Class, opts Options) *workQueue {
	q := &workQueue{
		class:  class,
		items:  queue.New(),
		signal: newCountingSignal(opts.SignalCapacity, opts.Overflow),

		onDequeue: opts.onDequeue,
	}
	q.lock.SpinLimit = opts.SpinLimit
	q.lock.BackoffInitial = opts.LockBackoffInitial
	q.lock.BackoffMax = opts.LockBackoffMax
	return q
}

// insertTail appends item and releases one unit of the signal. It reports
// whether the release was dropped by a saturating signal.
func (q *workQueue) insertTail(item *WorkItem) (saturated bool) {
	q.lock.Lock()
	q.items.Add(item)
	q.lock.Unlock()

	return !q.signal.release()
}

// removeHead pops the oldest item, or reports false if the queue is empty.
func (q *workQueue) removeHead() (*WorkItem, bool) {
	q.lock.Lock()
	if q.items.Length() == 0 {
		q.lock.Unlock()
		return nil, false
	}
	item := q.items.Remove().(*WorkItem)
	if q.onDequeue != nil {
		q.onDequeue(q.class, item)
	}
	q.lock.Unlock()
	return item, true
}

// Len returns the number of items waiting in the queue.
func (q *workQueue) Len() int {
	q.lock.Lock()
	n := q.items.Length()
	q.lock.Unlock()
	return n
}

func (q *workQueue) enterRoutine() {
	n := q.running.Add(1)
	for {
		p := q.peak.Load()
		if n <= p || q.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (q *workQueue) leaveRoutine() {
	q.running.Add(-1)
}
