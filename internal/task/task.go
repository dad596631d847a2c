// Package task runs one long operation on its own goroutine with
// cooperative cancellation and exactly one completion signal.
//
// The worker communicates progress through shared state the caller polls
// (see internal/progress); the only event it ever pushes back is the
// terminal onComplete or onError callback. A Handle supports a single
// run: keeping at most one task in flight is the caller's contract, not
// something the runner enforces with locks.
package task

import (
	"fmt"
	"sync/atomic"
)

// Func is the unit of work. It receives a cancellation predicate to poll
// at its own yield points. A cancelled run returns a zero result and a
// nil error: cancellation is not an error path.
type Func[T any] func(isCancelled func() bool) (T, error)

// Handle controls one in-flight background task.
type Handle[T any] struct {
	cancelled atomic.Bool
	finished  atomic.Bool
}

// Cancel requests cooperative cancellation. Safe to call from any
// goroutine, and more than once.
func (h *Handle[T]) Cancel() { h.cancelled.Store(true) }

// IsCancelled reports whether cancellation has been requested. This is
// the predicate handed to the task function.
func (h *Handle[T]) IsCancelled() bool { return h.cancelled.Load() }

// IsFinished reports whether the worker has completed, successfully or
// not.
func (h *Handle[T]) IsFinished() bool { return h.finished.Load() }

// Start runs fn on a new goroutine and returns immediately. Exactly one
// of onComplete or onError is invoked, from the worker goroutine, after
// which the worker performs no further writes. A cancelled run is
// delivered through onComplete with fn's zero result. A panic inside fn
// surfaces through onError.
func Start[T any](fn Func[T], onComplete func(T), onError func(error)) *Handle[T] {
	h := &Handle[T]{}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.finished.Store(true)
				if onError != nil {
					onError(fmt.Errorf("background task panicked: %v", r))
				}
			}
		}()

		result, err := fn(h.IsCancelled)
		h.finished.Store(true)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onComplete != nil {
			onComplete(result)
		}
	}()

	return h
}
