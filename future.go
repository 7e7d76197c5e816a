package slamwood

import (
	"context"
	"sync"
	"time"
)

// Future is a single-assignment result cell. Exactly one resolution wins;
// later ones are ignored. Any number of readers may block on it.
//
// A nil *Future is the "no result" sentinel returned when an event had no
// subscriber: it reads as already resolved with no answer.
type Future[T any] struct {
	mu       sync.Mutex
	done     chan struct{}
	resolved bool
	answered bool
	result   T
}

// NewFuture returns an unresolved future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve stores v and wakes every reader. It returns false if the future
// was already resolved, in which case v is discarded.
func (f *Future[T]) Resolve(v T) bool {
	return f.settle(v, true)
}

// abandon resolves the future with the neutral value.
func (f *Future[T]) abandon() bool {
	var zero T
	return f.settle(zero, false)
}

func (f *Future[T]) settle(v T, answered bool) bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		return false
	}
	f.result = v
	f.answered = answered
	f.resolved = true
	close(f.done)
	return true
}

// Get blocks until the future is resolved. The boolean is false when the
// future was resolved with no answer (receiver unregistered, or no
// subscriber at all).
func (f *Future[T]) Get() (T, bool) {
	if f == nil {
		var zero T
		return zero, false
	}
	<-f.done
	return f.value()
}

// GetTimeout is Get bounded by d. On expiry it returns the neutral value
// without touching the future; a later resolution is still observable.
func (f *Future[T]) GetTimeout(d time.Duration) (T, bool) {
	if f == nil {
		var zero T
		return zero, false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.done:
		return f.value()
	case <-timer.C:
		var zero T
		return zero, false
	}
}

// Await is Get bounded by ctx. It returns ErrTimeout when ctx ends first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	var zero T
	if f == nil {
		return zero, nil
	}
	select {
	case <-f.done:
		v, _ := f.value()
		return v, nil
	case <-ctx.Done():
		return zero, ErrTimeout
	}
}

// IsDone reports whether the future is resolved.
func (f *Future[T]) IsDone() bool {
	if f == nil {
		return true
	}
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	if f == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return f.done
}

func (f *Future[T]) value() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.answered
}
