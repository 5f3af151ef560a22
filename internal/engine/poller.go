package engine

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Poller runs a fetch function on a fixed interval until its context is
// cancelled. If a fetch is still in flight when the next tick fires, that
// tick is skipped rather than queued, so invocations never overlap. After
// cancellation no further fetch is scheduled.
type Poller struct {
	interval time.Duration
	fetch    func(context.Context) error

	inFlight atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
}

func NewPoller(interval time.Duration, fetch func(context.Context) error) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{
		interval: interval,
		fetch:    fetch,
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop. It returns immediately; Stop or parent
// context cancellation ends the loop.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !p.inFlight.CompareAndSwap(false, true) {
					continue // previous poll still running
				}
				go func() {
					defer p.inFlight.Store(false)
					if err := p.fetch(ctx); err != nil && ctx.Err() == nil {
						log.Printf("incoming order poll failed: %v", err)
					}
				}()
			}
		}
	}()
}

// Stop cancels the loop and waits for it to wind down. Safe to call more
// than once.
func (p *Poller) Stop() {
	p.once.Do(func() {
		if p.cancel == nil {
			return
		}
		p.cancel()
		<-p.done
	})
}
