// Package clock paces the global tick of a run.
package clock

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Ticker blocks until the next tick may be emitted.
type Ticker interface {
	Wait(ctx context.Context) error
}

// RateTicker releases one tick per interval.
type RateTicker struct {
	limiter *rate.Limiter
}

// NewRateTicker returns a ticker whose first Wait lasts one full interval.
func NewRateTicker(interval time.Duration) *RateTicker {
	if interval <= 0 {
		return &RateTicker{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	l := rate.NewLimiter(rate.Every(interval), 1)
	l.Allow() // spend the initial burst
	return &RateTicker{limiter: l}
}

func (t *RateTicker) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Immediate never waits. Useful for batch replays and tests.
type Immediate struct{}

func (Immediate) Wait(ctx context.Context) error { return ctx.Err() }

// ManualTicker releases ticks only when a test calls Step.
type ManualTicker struct {
	permits chan struct{}
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{permits: make(chan struct{})}
}

func (t *ManualTicker) Wait(ctx context.Context) error {
	select {
	case <-t.permits:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Step hands one tick to a waiting caller. It blocks until the tick is taken
// or ctx is done, and reports whether the tick was taken.
func (t *ManualTicker) Step(ctx context.Context) bool {
	select {
	case t.permits <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}
