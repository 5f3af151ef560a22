package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPollerRunsOnInterval(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	p.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d polls after 2s", calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	p.Stop()
}

func TestPollerSkipsOverlappingTicks(t *testing.T) {
	var concurrent, peak atomic.Int32
	release := make(chan struct{})
	p := NewPoller(5*time.Millisecond, func(ctx context.Context) error {
		n := concurrent.Add(1)
		if n > peak.Load() {
			peak.Store(n)
		}
		<-release
		concurrent.Add(-1)
		return nil
	})
	p.Start(context.Background())

	// several ticks elapse while the first fetch blocks
	time.Sleep(60 * time.Millisecond)
	close(release)
	p.Stop()

	if peak.Load() > 1 {
		t.Errorf("peak concurrent polls = %d, want 1", peak.Load())
	}
}

func TestPollerStopsCleanly(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller(5*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	p.Start(context.Background())

	for calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	p.Stop()
	after := calls.Load()

	// the loop must not schedule again once stopped
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got > after+1 {
		t.Errorf("polls continued after stop: %d -> %d", after, got)
	}

	p.Stop() // idempotent
}

func TestPollerStopWithoutStart(t *testing.T) {
	p := NewPoller(time.Second, func(ctx context.Context) error { return nil })
	p.Stop() // must not hang
}

func TestPollerParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	p := NewPoller(5*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	p.Start(ctx)
	cancel()

	time.Sleep(20 * time.Millisecond)
	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got > after {
		t.Errorf("polls continued after parent cancel: %d -> %d", after, got)
	}
	p.Stop()
}
