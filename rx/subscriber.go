package rx

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// subscriber is both the Subscription handed to the consumer and the Emitter
// handed to the producer.
type subscriber[T any] struct {
	id       uuid.UUID
	observer Observer[T]
	events   pipe

	terminated   atomic.Bool
	unsubscribed atomic.Bool

	mu        sync.Mutex
	teardowns []func()
}

func newSubscriber[T any](observer Observer[T]) *subscriber[T] {
	return &subscriber[T]{
		id:       uuid.New(),
		observer: observer,
	}
}

func (s *subscriber[T]) produce(source func(Emitter[T])) {
	defer func() {
		if r := recover(); r != nil {
			s.Error(RuntimeError(r))
		}
	}()
	source(s)
}

// ===== Subscription =====

func (s *subscriber[T]) ID() uuid.UUID {
	return s.id
}

func (s *subscriber[T]) Unsubscribe() {
	s.dispose()
}

func (s *subscriber[T]) IsUnsubscribed() bool {
	return s.unsubscribed.Load()
}

// ===== Emitter =====

func (s *subscriber[T]) Next(v T) {
	if s.terminated.Load() || s.unsubscribed.Load() {
		return
	}
	s.events.send(func() {
		if s.unsubscribed.Load() {
			return
		}
		s.deliver(func() { s.observer.HandleNext(v) })
	})
}

// Error terminates the subscription. An error arriving after a terminal
// signal goes to the error handler; one arriving after the consumer
// unsubscribed is only logged.
func (s *subscriber[T]) Error(err error) {
	if !s.terminated.CompareAndSwap(false, true) {
		handleError(err)
		return
	}
	if s.unsubscribed.Load() {
		log.WithError(err).Debug("rx: error after unsubscribe")
		return
	}
	s.events.send(func() {
		if s.unsubscribed.Load() {
			return
		}
		defer s.dispose()
		s.deliver(func() { s.observer.HandleError(err) })
	})
}

func (s *subscriber[T]) Complete() {
	if s.unsubscribed.Load() || !s.terminated.CompareAndSwap(false, true) {
		return
	}
	s.events.send(func() {
		if s.unsubscribed.Load() {
			return
		}
		defer s.dispose()
		s.deliver(s.observer.HandleComplete)
	})
}

func (s *subscriber[T]) OnUnsubscribe(teardown func()) {
	if teardown == nil {
		return
	}
	s.mu.Lock()
	if s.unsubscribed.Load() {
		s.mu.Unlock()
		teardown()
		return
	}
	s.teardowns = append(s.teardowns, teardown)
	s.mu.Unlock()
}

// deliver calls into the consumer. A panicking callback terminates the
// subscription with a RuntimeErr.
func (s *subscriber[T]) deliver(callback func()) {
	defer func() {
		if r := recover(); r != nil {
			err := RuntimeError(r)
			if s.terminated.CompareAndSwap(false, true) {
				safeCall(func() { s.observer.HandleError(err) })
			} else {
				handleError(err)
			}
			s.dispose()
		}
	}()
	callback()
}

func (s *subscriber[T]) dispose() {
	s.mu.Lock()
	if !s.unsubscribed.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return
	}
	teardowns := s.teardowns
	s.teardowns = nil
	s.mu.Unlock()

	for _, teardown := range teardowns {
		safeCall(teardown)
	}
}

// serialSubscription holds the current upstream of an operator that
// subscribes to one source after another.
type serialSubscription struct {
	mu       sync.Mutex
	current  Subscription
	disposed bool
}

// Set replaces the held subscription. Once disposed, sub is released
// immediately.
func (s *serialSubscription) Set(sub Subscription) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	s.current = sub
	s.mu.Unlock()
}

func (s *serialSubscription) Unsubscribe() {
	s.mu.Lock()
	s.disposed = true
	current := s.current
	s.current = nil
	s.mu.Unlock()
	if current != nil {
		current.Unsubscribe()
	}
}
