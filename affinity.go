//go:build linux

package workqueue

import (
	"golang.org/x/sys/unix"
)

// PinToCPU restricts the calling OS thread to a single CPU. The caller must
// hold runtime.LockOSThread for the pin to stay with its goroutine.
func PinToCPU(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}

// setThreadPriority sets the nice value of the calling OS thread only.
// On Linux PRIO_PROCESS with a thread id addresses a single thread.
func setThreadPriority(nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), nice)
}

// threadPriority reads back the nice value of the calling OS thread.
func threadPriority() (int, error) {
	// getpriority(2) returns 20-nice to stay non-negative
	p, err := unix.Getpriority(unix.PRIO_PROCESS, unix.Gettid())
	if err != nil {
		return 0, err
	}
	return 20 - p, nil
}

func threadID() int { return unix.Gettid() }
