package provider

import (
	"context"
	"sync"
	"time"
)

// Gate is a pausable barrier shared by every outgoing call of one adapter
// instance. When any call hits a rate limit, pausing the gate holds back all
// in-flight and queued calls, not just the throttled one. It is distinct
// from the engine's concurrency limiter, which only bounds call count.
//
// Safe for concurrent use.
type Gate struct {
	mu     sync.Mutex
	paused bool
	until  time.Time
	ch     chan struct{} // non-nil while paused; closed on resume
}

// NewGate returns an open gate
func NewGate() *Gate {
	return &Gate{}
}

// Wait blocks while the gate is paused. It returns the context error if the
// context is cancelled first.
func (g *Gate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		if !g.paused {
			g.mu.Unlock()
			return nil
		}
		ch := g.ch
		g.mu.Unlock()

		select {
		case <-ch:
			// Re-check: the gate may have been paused again
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pause closes the gate for the given duration. Overlapping pauses extend to
// the latest deadline; a shorter pause never shortens an existing one.
func (g *Gate) Pause(d time.Duration) {
	if d <= 0 {
		return
	}

	deadline := time.Now().Add(d)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused && !deadline.After(g.until) {
		return
	}
	if !g.paused {
		g.paused = true
		g.ch = make(chan struct{})
	}
	g.until = deadline

	time.AfterFunc(time.Until(deadline), g.maybeResume)
}

// Paused reports whether the gate is currently closed
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

func (g *Gate) maybeResume() {
	g.mu.Lock()
	defer g.mu.Unlock()

	// An extension may have moved the deadline past this timer
	if !g.paused || time.Now().Before(g.until) {
		return
	}
	g.paused = false
	close(g.ch)
	g.ch = nil
}
