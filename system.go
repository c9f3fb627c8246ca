package workqueue

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	lg "github.com/Andrej220/go-utils/zlog"
	"go.uber.org/multierr"
)

// ErrStartWorker wraps every failure to bring a worker up during
// InitializeWorkerPools.
var ErrStartWorker = errors.New("workqueue: failed to start worker")

// WorkerSystem owns one queue and one fixed worker pool per Class.
//
// It is built once at startup by InitializeWorkerPools and then shared by
// every producer. There is no teardown: workers live until they run an exit
// item (see NewExitItem).
type WorkerSystem struct {
	// ctx carries the logger; it does not bound the workers' lifetime.
	ctx     context.Context
	opts    Options
	metrics MetricsPolicy
	queues  [NumClasses]*workQueue
	wg      sync.WaitGroup
}

// ClassStats is a point-in-time view of one class.
type ClassStats struct {
	Class       Class
	PoolSize    int
	LiveWorkers int32
	Waiting     int32
	Running     int32
	PeakRunning int32
	Queued      int
	SignalCount int64
}

// InitializeWorkerPools creates the queues of all classes and starts
// opts.PoolSize workers for each of them, every worker at its class
// priority. It returns once every worker is parked or draining.
//
// A worker that cannot start is fatal: the workers that did start are
// stopped and the aggregated failure is returned wrapped in ErrStartWorker.
// The logger is taken from ctx. metrics may be nil.
func InitializeWorkerPools(ctx context.Context, opts Options, metrics MetricsPolicy) (*WorkerSystem, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts.FillDefaults()
	opts.Priorities = append([]int(nil), opts.Priorities...)
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	s := &WorkerSystem{
		ctx:     ctx,
		opts:    opts,
		metrics: metrics,
	}
	for _, c := range Classes() {
		s.queues[c] = newWorkQueue(c, opts)
	}

	total := int(NumClasses) * opts.PoolSize
	ready := make(chan error, total)
	ncpu := runtime.NumCPU()
	next := 0

	for _, q := range s.queues {
		q.workers = make([]*workerThread, 0, opts.PoolSize)
		for i := range opts.PoolSize {
			w := &workerThread{id: i, cpu: -1, sys: s, queue: q}
			if opts.PinWorkers {
				w.cpu = next % ncpu
				next++
			}
			q.workers = append(q.workers, w)
			q.live.Add(1)
			s.wg.Add(1)
			go w.run(ready)
		}
	}

	var errs error
	for range total {
		errs = multierr.Append(errs, <-ready)
	}

	logger := lg.FromContext(ctx)
	if errs != nil {
		logger.Error("worker pools failed to start", lg.Any("error", errs))
		s.stopAll()
		return nil, fmt.Errorf("%w: %w", ErrStartWorker, errs)
	}

	logger.Info("worker pools initialized",
		lg.Int("pool_size", opts.PoolSize),
		lg.Int("classes", int(NumClasses)),
		lg.Any("priorities", opts.Priorities),
		lg.String("overflow", opts.Overflow.String()),
	)
	return s, nil
}

// stopAll queues one exit item per live worker and waits for them to go.
func (s *WorkerSystem) stopAll() {
	for _, q := range s.queues {
		for range q.live.Load() {
			s.submit(NewExitItem(), q.class)
		}
	}
	s.wg.Wait()
}

// Submit hands item to the workers of class. It never blocks.
//
// Items of one class start in the order they were submitted; there is no
// ordering across classes. The item is owned by the queue until a worker
// removes it and must not be submitted again before that.
//
// Submit rejects, without queueing, a nil item, an item with no routine,
// an item that is still queued and an unknown class.
//
// With OverflowPanic, Submit panics when the class signal is at capacity.
// The item is queued by then and runs like any other.
func (s *WorkerSystem) Submit(item *WorkItem, class Class) error {
	if item == nil {
		return ErrNilItem
	}
	if item.routine == nil {
		return ErrNotInitialized
	}
	if !class.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidClass, int(class))
	}
	if !item.claim() {
		return ErrItemQueued
	}
	s.submit(item, class)
	return nil
}

// SubmitFunc allocates an item for routine and arg and submits it.
func (s *WorkerSystem) SubmitFunc(routine Routine, arg any, class Class) error {
	if routine == nil {
		return ErrNotInitialized
	}
	return s.Submit(NewWorkItem(routine, arg), class)
}

func (s *WorkerSystem) submit(item *WorkItem, class Class) {
	q := s.queues[class]
	// counted before the insert so a worker never decrements first
	s.metrics.IncQueued(class)
	if saturated := q.insertTail(item); saturated {
		s.metrics.IncSaturated(class)
		s.reportInternalError(fmt.Errorf("%w: %s signal at capacity %d",
			ErrSignalOverflow, class, q.signal.Capacity()))
	}
}

// PoolSize returns the number of workers each class was started with.
func (s *WorkerSystem) PoolSize() int { return s.opts.PoolSize }

// Stats returns a snapshot of class c. Unknown classes yield a zero value.
func (s *WorkerSystem) Stats(c Class) ClassStats {
	if !c.Valid() {
		return ClassStats{}
	}
	q := s.queues[c]
	return ClassStats{
		Class:       c,
		PoolSize:    len(q.workers),
		LiveWorkers: q.live.Load(),
		Waiting:     q.waiting.Load(),
		Running:     q.running.Load(),
		PeakRunning: q.peak.Load(),
		Queued:      q.Len(),
		SignalCount: q.signal.Count(),
	}
}
