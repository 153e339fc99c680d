// Package ratelimit serializes calls to the primary quote provider.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Gate enforces a minimum interval between consecutive calls. A single Gate
// instance is shared by everything that talks to the primary provider, so
// concurrent screeners cannot exceed the provider's rate budget.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	lastCall time.Time
}

// NewGate creates a gate with the given minimum interval between calls.
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Interval returns the configured minimum interval.
func (g *Gate) Interval() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.interval
}

// Wait blocks until at least the configured interval has elapsed since the
// previous call, then records the current time as the new last-call stamp.
// Returns early with the context's error if ctx is cancelled while waiting.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()

	now := time.Now()
	var sleep time.Duration
	if !g.lastCall.IsZero() {
		if elapsed := now.Sub(g.lastCall); elapsed < g.interval {
			sleep = g.interval - elapsed
		}
	}

	if sleep <= 0 {
		g.lastCall = now
		g.mu.Unlock()
		return nil
	}

	// Hold the lock while sleeping so waiters queue up behind us. Each
	// waiter pays its own full interval once it reaches the front.
	timer := time.NewTimer(sleep)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		g.mu.Unlock()
		return ctx.Err()
	case <-timer.C:
	}

	g.lastCall = time.Now()
	g.mu.Unlock()
	return nil
}
