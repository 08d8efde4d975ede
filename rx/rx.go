package rx

import (
	"github.com/google/uuid"
)

// Subscription is one consumer's attachment to an Observable.
//
// Unsubscribe stops further deliveries and releases timers and inner
// subscriptions held on behalf of the consumer. It never blocks and may be
// called any number of times.
type Subscription interface {
	ID() uuid.UUID
	Unsubscribe()
	IsUnsubscribed() bool
}

// Observable is a lazy stream of values terminated by completion or error.
type Observable[T any] interface {
	Subscribe(onNext func(T), onError func(error), onComplete func()) Subscription
	SubscribeObserver(Observer[T]) Subscription
}

// Emitter is the producer side of a single subscription.
type Emitter[T any] interface {
	Next(T)
	Error(error)
	Complete()

	IsUnsubscribed() bool
	// OnUnsubscribe registers a teardown. It runs immediately when the
	// subscription is already released.
	OnUnsubscribe(func())
}

// Observer groups the consumer hooks. Every hook is optional; a missing
// OnError hands the error to ErrorHandler.
type Observer[T any] struct {
	OnSubscribe func(Subscription)
	OnNext      func(T)
	OnError     func(error)
	OnComplete  func()
}

func (o Observer[T]) HandleSubscribe(s Subscription) {
	if o.OnSubscribe != nil {
		o.OnSubscribe(s)
	}
}

func (o Observer[T]) HandleNext(v T) {
	if o.OnNext != nil {
		o.OnNext(v)
	}
}

func (o Observer[T]) HandleError(err error) {
	if o.OnError != nil {
		o.OnError(err)
		return
	}
	handleError(err)
}

func (o Observer[T]) HandleComplete() {
	if o.OnComplete != nil {
		o.OnComplete()
	}
}

type observable[T any] struct {
	source func(Emitter[T])
}

// Create builds a cold Observable: source runs once per subscription, on the
// subscribing goroutine.
func Create[T any](source func(Emitter[T])) Observable[T] {
	return &observable[T]{
		source: source,
	}
}

func (o *observable[T]) Subscribe(onNext func(T), onError func(error), onComplete func()) Subscription {
	return o.SubscribeObserver(Observer[T]{
		OnNext:     onNext,
		OnError:    onError,
		OnComplete: onComplete,
	})
}

func (o *observable[T]) SubscribeObserver(obs Observer[T]) Subscription {
	s := newSubscriber(obs)
	obs.HandleSubscribe(s)
	if !s.IsUnsubscribed() {
		s.produce(o.source)
	}
	return s
}
