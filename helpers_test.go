package workqueue

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"
)

const testDeadline = 2 * time.Second

// newTestSystem starts a system with priorities left alone and registers a
// cleanup that stops every worker with exit items.
func newTestSystem(t *testing.T, poolSize int, tweaks ...func(*Options)) (*WorkerSystem, *AtomicMetrics) {
	t.Helper()

	opts := Options{
		PoolSize:        poolSize,
		DisablePriority: true,
	}
	for _, tw := range tweaks {
		tw(&opts)
	}

	m := &AtomicMetrics{}
	s, err := InitializeWorkerPools(context.Background(), opts, m)
	if err != nil {
		t.Fatalf("InitializeWorkerPools: %v", err)
	}

	t.Cleanup(func() {
		done := make(chan struct{})
		go func() {
			s.stopAll()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("workers did not exit")
		}
	})
	return s, m
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not satisfied before timeout")
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(testDeadline):
		t.Fatalf("%s did not happen", what)
	}
}

// gate blocks routines until opened.
type gate struct {
	ch   chan struct{}
	once sync.Once
}

func newGate() *gate { return &gate{ch: make(chan struct{})} }

func (g *gate) wait() { <-g.ch }
func (g *gate) open() { g.once.Do(func() { close(g.ch) }) }

// blockWorkers occupies every worker of class c until the returned gate is
// opened. It returns once all of them are inside a routine.
func blockWorkers(t *testing.T, s *WorkerSystem, c Class) *gate {
	t.Helper()

	g := newGate()
	t.Cleanup(g.open)

	var started sync.WaitGroup
	for range s.PoolSize() {
		started.Add(1)
		err := s.SubmitFunc(func(any) {
			started.Done()
			g.wait()
		}, nil, c)
		if err != nil {
			t.Fatalf("submit blocker: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		started.Wait()
		close(done)
	}()
	waitClosed(t, done, "blocking routines start")
	return g
}

// orderLog records values under a mutex.
type orderLog struct {
	mu   sync.Mutex
	vals []int
}

func (l *orderLog) add(v int) {
	l.mu.Lock()
	l.vals = append(l.vals, v)
	l.mu.Unlock()
}

func (l *orderLog) snapshot() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.vals...)
}

func assertOrdered(t *testing.T, got []int, n int) {
	t.Helper()

	if len(got) != n {
		t.Fatalf("got %d entries, want %d: %v", len(got), n, got)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order broken at %d: got %v", i, got)
		}
	}
}
