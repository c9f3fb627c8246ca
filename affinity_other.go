//go:build !linux

package workqueue

import "errors"

func PinToCPU(cpu int) error { return errors.ErrUnsupported }

func setThreadPriority(nice int) error { return errors.ErrUnsupported }

func threadPriority() (int, error) { return 0, errors.ErrUnsupported }

func threadID() int { return -1 }
