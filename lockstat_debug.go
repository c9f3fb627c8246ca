//go:build debug

package workqueue

import (
	"sync/atomic"
)

var (
	slowCount    atomic.Int64
	yieldCount   atomic.Int64
	backoffCount atomic.Int64
)

// LockStats counts contended SpinLock acquisitions. Only collected in
// builds tagged debug.
type LockStats struct {
	Slow    int64
	Yields  int64
	Backoff int64
}

func statLockSlow()    { slowCount.Add(1) }
func statLockYield()   { yieldCount.Add(1) }
func statLockBackoff() { backoffCount.Add(1) }

func SnapshotLockStats() LockStats {
	return LockStats{
		Slow:    slowCount.Load(),
		Yields:  yieldCount.Load(),
		Backoff: backoffCount.Load(),
	}
}

func PrintLockStats() {
	println(
		"slow / yields / backoff sleeps :",
		slowCount.Load(),
		yieldCount.Load(),
		backoffCount.Load(),
	)
}
