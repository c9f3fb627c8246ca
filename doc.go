// Package workqueue runs deferred work items on fixed worker pools, one
// pool per urgency class.
//
// Code that must not block hands a short routine and its argument to the
// WorkerSystem; a worker thread of the chosen class later runs it at the
// class's thread priority, where it is free to block.
//
// Classes
//
// There are three classes, in ascending urgency:
//
//   - Normal
//   - Critical
//   - HyperCritical
//
// Each class owns a queue and a pool of PoolSize workers. Workers of a class
// run at that class's priority (Linux nice values, see Options.Priorities).
// Dispatch is a table indexed by Class.
//
// Architecture overview
//
//  1. Work items
//     A WorkItem holds a Routine and an opaque argument. The caller owns the
//     item; the queue holds it from Submit until a worker removes it.
//
//  2. Work queues
//     A FIFO of items guarded by a SpinLock, paired with a bounded counting
//     signal of items available but not yet claimed. Submit inserts under
//     the lock and then releases one unit of the signal.
//
//  3. Workers
//     Every worker is a goroutine locked to its own OS thread. It drains the
//     queue (remove head under the lock, run the routine with no lock held)
//     and parks on the signal when the queue is empty. Parked workers use no
//     CPU until a submission wakes one of them.
//
// Ordering
//
// Items of one class are removed in submission order. There is no ordering
// across classes and no guarantee about which worker of a class runs which
// item. At most PoolSize routines of a class run at the same time.
//
// Lifecycle
//
// InitializeWorkerPools is called once at startup and the resulting
// WorkerSystem is passed to producers. There is no shutdown protocol and no
// cancellation: a submitted item runs exactly once. The only way to stop a
// worker is to queue an item whose routine calls ExitWorker (NewExitItem);
// the worker's OS thread ends with it.
//
// Counting signal capacity
//
// Each class's signal is bounded by Options.SignalCapacity. It is a
// configuration limit, not backpressure: Submit never blocks. A release
// beyond capacity is dropped (OverflowSaturate) or panics (OverflowPanic);
// in both cases the item itself is queued and runs.
//
// Error handling
//
// The system distinguishes between two classes of errors:
//
//   - Routine panics: recovered, logged and passed to OnCallbackPanic.
//     The worker keeps running.
//   - Internal errors: priority or pinning failures and saturated wake-ups,
//     passed to OnInternalError.
//
// A worker that cannot start is fatal to InitializeWorkerPools.
// Submit rejects nil, uninitialized and still-queued items.
//
// Logging
//
// Logs go to the zlog logger carried by the context given to
// InitializeWorkerPools. The submit path does not log.
package workqueue
