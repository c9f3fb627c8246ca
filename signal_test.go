package workqueue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCountingSignalStartsEmpty(t *testing.T) {
	s := newCountingSignal(4, OverflowSaturate)

	if got := s.Count(); got != 0 {
		t.Fatalf("count = %d; want 0", got)
	}
	if s.tryWait() {
		t.Fatal("tryWait succeeded on an empty signal")
	}
}

func TestCountingSignalReleaseWait(t *testing.T) {
	s := newCountingSignal(4, OverflowSaturate)

	for range 3 {
		if !s.release() {
			t.Fatal("release below capacity was dropped")
		}
	}
	if got := s.Count(); got != 3 {
		t.Fatalf("count = %d; want 3", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !s.tryWait() {
		t.Fatal("tryWait failed with units available")
	}
	if got := s.Count(); got != 1 {
		t.Fatalf("count = %d; want 1", got)
	}
}

func TestCountingSignalWaitParksUntilRelease(t *testing.T) {
	s := newCountingSignal(4, OverflowSaturate)

	woke := make(chan struct{})
	go func() {
		_ = s.wait(context.Background())
		close(woke)
	}()

	select {
	case <-woke:
		t.Fatal("wait returned before any release")
	case <-time.After(20 * time.Millisecond):
	}

	s.release()
	waitClosed(t, woke, "wake-up after release")

	if got := s.Count(); got != 0 {
		t.Fatalf("count = %d; want 0", got)
	}
}

func TestCountingSignalWaitCanceled(t *testing.T) {
	s := newCountingSignal(1, OverflowSaturate)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := s.wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("wait = %v; want deadline exceeded", err)
	}
	if got := s.Count(); got != 0 {
		t.Fatalf("count = %d; want 0", got)
	}
}

func TestCountingSignalSaturates(t *testing.T) {
	s := newCountingSignal(2, OverflowSaturate)

	if !s.release() || !s.release() {
		t.Fatal("release below capacity was dropped")
	}
	if s.release() {
		t.Fatal("release beyond capacity was kept")
	}
	if got := s.Count(); got != 2 {
		t.Fatalf("count = %d; want 2", got)
	}

	// the semaphore itself was never over-released
	if !s.tryWait() || !s.tryWait() || s.tryWait() {
		t.Fatal("unexpected number of available units")
	}
}

func TestCountingSignalOverflowPanics(t *testing.T) {
	s := newCountingSignal(1, OverflowPanic)
	s.release()

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrSignalOverflow) {
			t.Fatalf("recovered %v; want ErrSignalOverflow", r)
		}
	}()
	s.release()
}

func TestParseOverflowPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    OverflowPolicy
		wantErr bool
	}{
		{"", OverflowSaturate, false},
		{"saturate", OverflowSaturate, false},
		{"PANIC", OverflowPanic, false},
		{"fatal", OverflowPanic, false},
		{"block", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseOverflowPolicy(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseOverflowPolicy(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseOverflowPolicy(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if got.String() == "unknown" {
			t.Fatalf("%v has no name", got)
		}
	}
}
