//go:build !debug

package workqueue

type LockStats struct {
	Slow    int64
	Yields  int64
	Backoff int64
}

func statLockSlow()    {}
func statLockYield()   {}
func statLockBackoff() {}

func SnapshotLockStats() LockStats { return LockStats{} }

func PrintLockStats() {}
