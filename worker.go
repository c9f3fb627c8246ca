package workqueue

import (
	"context"
	"fmt"
	"runtime"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
)

// workerThread is one member of a class pool. It runs on its own locked OS
// thread so that priority and affinity apply to it alone.
type workerThread struct {
	id    int
	cpu   int // -1 when not pinned
	tid   int
	sys   *WorkerSystem
	queue *workQueue
}

// ExitWorker terminates the worker running the calling routine, together
// with its OS thread. Items already queued are left for the remaining
// workers of the class.
//
// It must only be called from inside a routine; called anywhere else it
// terminates the calling goroutine.
func ExitWorker() { runtime.Goexit() }

// NewExitItem returns an item whose routine terminates the worker that runs
// it. Submitting one per worker is the only way to stop a pool.
func NewExitItem() *WorkItem {
	return NewWorkItem(func(any) { ExitWorker() }, nil)
}

// run is the worker goroutine. It reports the outcome of its setup on ready
// and then loops forever.
func (w *workerThread) run(ready chan<- error) {
	// Never unlocked: when the goroutine exits, its thread exits with it.
	runtime.LockOSThread()

	if err := w.setup(); err != nil {
		w.queue.live.Add(-1)
		w.sys.wg.Done()
		ready <- err
		return
	}
	ready <- nil

	defer w.exited()
	w.loop()
}

func (w *workerThread) setup() error {
	s, q := w.sys, w.queue
	w.tid = threadID()
	logger := lg.FromContext(s.ctx).With(
		lg.String("class", q.class.String()),
		lg.Int("worker", w.id),
		lg.Int("tid", w.tid),
	)

	if !s.opts.DisablePriority {
		nice := s.opts.Priority(q.class)
		if err := setThreadPriority(nice); err != nil {
			err = fmt.Errorf("workqueue: set %s worker %d priority %d: %w", q.class, w.id, nice, err)
			if s.opts.StrictPriority {
				return err
			}
			logger.Warn("worker priority not applied", lg.Int("priority", nice), lg.Any("error", err))
			s.reportInternalError(err)
		}
	}

	if w.cpu >= 0 {
		if err := PinToCPU(w.cpu); err != nil {
			err = fmt.Errorf("workqueue: pin %s worker %d to cpu %d: %w", q.class, w.id, w.cpu, err)
			logger.Warn("worker not pinned", lg.Int("cpu", w.cpu), lg.Any("error", err))
			s.reportInternalError(err)
		}
	}

	logger.Info("worker started")
	return nil
}

func (w *workerThread) exited() {
	q := w.queue
	live := q.live.Add(-1)
	lg.FromContext(w.sys.ctx).Info("worker exited",
		lg.String("class", q.class.String()),
		lg.Int("worker", w.id),
		lg.Int32("live_workers", live),
	)
	w.sys.wg.Done()
}

// loop alternates between draining the queue and parking on its signal.
//
// A worker woken by the signal holds the unit it took until it removes an
// item; that unit pays for the item. Every other removal in the same drain
// pass claims a unit with tryWait, so the count keeps tracking unclaimed
// items and a parked worker is woken for each of them.
func (w *workerThread) loop() {
	s, q := w.sys, w.queue
	held := false
	for {
		// draining
		if item, ok := q.removeHead(); ok {
			if held {
				held = false
			} else {
				// A unit not released yet by its producer costs one
				// spurious wake-up later.
				q.signal.tryWait()
			}
			s.metrics.DecQueued(q.class)
			w.execute(item)
			continue
		}
		// the item this unit was released for went to a draining worker
		held = false

		// waiting
		q.waiting.Add(1)
		// Background is never canceled, so wait only returns once a unit
		// has been taken.
		_ = q.signal.wait(context.Background())
		q.waiting.Add(-1)
		held = true
	}
}

// execute runs one routine with no lock held. Panics are recovered so the
// worker survives; runtime.Goexit from ExitWorker still unwinds through.
func (w *workerThread) execute(item *WorkItem) {
	s, q := w.sys, w.queue
	routine, arg := item.routine, item.arg
	item.release()

	q.enterRoutine()
	start := time.Now()
	defer func() {
		q.leaveRoutine()
		if r := recover(); r != nil {
			s.metrics.IncPanicked(q.class)
			lg.FromContext(s.ctx).Error("work item panicked",
				lg.String("class", q.class.String()),
				lg.Int("worker", w.id),
				lg.Any("panic", r),
			)
			s.reportCallbackPanic(q.class, r)
		}
		s.metrics.ObserveExecuted(q.class, time.Since(start))
	}()

	routine(arg)
}
