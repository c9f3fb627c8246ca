package workqueue

import (
	"runtime"
	"sync/atomic"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
)

const (
	defaultSpinLimit      = 64
	defaultBackoffInitial = time.Microsecond
	defaultBackoffMax     = 200 * time.Microsecond
)

// SpinLock is a mutual-exclusion lock that never parks the caller on a
// runtime mutex. The zero value is an unlocked lock.
//
// Contended acquisition yields for SpinLimit attempts, then backs off with
// jittered exponential delays bounded by BackoffMax. The delays are spent
// yielding, never sleeping, so a waiter is not parked by the lock itself.
// Critical sections guarded by a SpinLock must be short and must not block.
type SpinLock struct {
	state atomic.Uint32

	SpinLimit      int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// Lock acquires the lock.
func (l *SpinLock) Lock() {
	if l.state.CompareAndSwap(0, 1) {
		return
	}
	l.lockSlow()
}

// TryLock acquires the lock only if it is free.
func (l *SpinLock) TryLock() bool {
	return l.state.Load() == 0 && l.state.CompareAndSwap(0, 1)
}

// Unlock releases the lock. Unlocking a free lock panics.
func (l *SpinLock) Unlock() {
	if l.state.Swap(0) == 0 {
		panic("workqueue: unlock of unlocked SpinLock")
	}
}

func (l *SpinLock) lockSlow() {
	statLockSlow()
	limit := l.SpinLimit
	if limit <= 0 {
		limit = defaultSpinLimit
	}
	for range limit {
		runtime.Gosched()
		statLockYield()
		if l.TryLock() {
			return
		}
	}

	initial, maxDelay := l.BackoffInitial, l.BackoffMax
	if initial <= 0 {
		initial = defaultBackoffInitial
	}
	if maxDelay < initial {
		maxDelay = max(defaultBackoffMax, initial)
	}
	bo := boff.New(initial, maxDelay, time.Now().UnixNano())
	for {
		if l.spinFor(bo.Next()) {
			return
		}
		statLockBackoff()
	}
}

// spinFor yields until d has passed or the lock is taken.
func (l *SpinLock) spinFor(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for {
		runtime.Gosched()
		if l.TryLock() {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
	}
}
