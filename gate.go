package dbpack

import (
	"context"
	"sync"
)

// gate blocks the packing loop while paused.
//
// A paused gate holds an open channel; resuming closes it, releasing every
// waiter at once.
type gate struct {
	mu      sync.Mutex
	resume  chan struct{}
	waiting bool
}

func (g *gate) pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resume == nil {
		g.resume = make(chan struct{})
	}
}

func (g *gate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resume != nil {
		close(g.resume)
		g.resume = nil
	}
}

func (g *gate) paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resume != nil
}

// blocked reports whether a caller is currently parked in wait.
func (g *gate) blocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waiting
}

// wait returns immediately unless the gate is paused, in which case it
// blocks until release or until ctx is done.
func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	ch := g.resume
	if ch == nil {
		g.mu.Unlock()
		return nil
	}
	g.waiting = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.waiting = false
		g.mu.Unlock()
	}()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
