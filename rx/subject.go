package rx

import (
	"slices"
	"sync"
)

type SubjectState int

const (
	Idle SubjectState = iota
	Active
	Completed
	Errored
)

func (s SubjectState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Completed:
		return "completed"
	case Errored:
		return "errored"
	}
	return "unknown"
}

// Subject is an Observable that is also a sink: values pushed into it are
// multicast to the attached subscriptions.
type Subject[T any] interface {
	Observable[T]

	Next(T)
	Error(error)
	Complete()

	// AsObserver lets the subject consume another Observable.
	AsObserver() Observer[T]
	State() SubjectState
	HasObservers() bool
}

const unbounded = -1

// subject multicasts through one pipe, so replaying history to a new
// subscriber never interleaves with live values.
type subject[T any] struct {
	events pipe
	limit  int

	mu          sync.RWMutex
	state       SubjectState
	err         error
	history     []T
	subscribers []*subscriber[T]
}

// NewPublishSubject returns a subject that delivers only values pushed after
// a subscriber attached.
func NewPublishSubject[T any]() Subject[T] {
	return &subject[T]{}
}

// NewReplaySubject returns a subject that replays its complete history to
// every new subscriber before live values.
func NewReplaySubject[T any]() Subject[T] {
	return &subject[T]{
		limit: unbounded,
	}
}

// NewBehaviorSubject returns a subject that replays the latest value,
// initially v, to new subscribers. Once terminated it replays only the
// terminal signal.
func NewBehaviorSubject[T any](v T) Subject[T] {
	return &subject[T]{
		limit:   1,
		history: []T{v},
	}
}

func (s *subject[T]) Subscribe(onNext func(T), onError func(error), onComplete func()) Subscription {
	return s.SubscribeObserver(Observer[T]{
		OnNext:     onNext,
		OnError:    onError,
		OnComplete: onComplete,
	})
}

func (s *subject[T]) SubscribeObserver(obs Observer[T]) Subscription {
	sub := newSubscriber(obs)
	obs.HandleSubscribe(sub)
	sub.OnUnsubscribe(func() { s.remove(sub) })

	s.events.send(func() {
		if sub.IsUnsubscribed() {
			return
		}
		s.mu.Lock()
		if s.state == Idle {
			s.state = Active
		}
		state, err := s.state, s.err
		history := slices.Clone(s.history)
		if state == Active {
			s.subscribers = append(s.subscribers, sub)
		}
		s.mu.Unlock()

		for _, v := range history {
			sub.Next(v)
		}
		switch state {
		case Completed:
			sub.Complete()
		case Errored:
			sub.Error(err)
		}
	})
	return sub
}

func (s *subject[T]) Next(v T) {
	s.events.send(func() {
		s.mu.Lock()
		if s.state > Active {
			s.mu.Unlock()
			return
		}
		s.state = Active
		s.record(v)
		subscribers := s.snapshot()
		s.mu.Unlock()

		for _, sub := range subscribers {
			sub.Next(v)
		}
	})
}

func (s *subject[T]) Error(err error) {
	s.terminate(Errored, err)
}

func (s *subject[T]) Complete() {
	s.terminate(Completed, nil)
}

func (s *subject[T]) terminate(state SubjectState, err error) {
	s.events.send(func() {
		s.mu.Lock()
		if s.state > Active {
			s.mu.Unlock()
			if err != nil {
				handleError(err)
			}
			return
		}
		s.state, s.err = state, err
		if s.limit == 1 {
			s.history = nil
		}
		subscribers := s.snapshot()
		s.subscribers = nil
		s.mu.Unlock()

		for _, sub := range subscribers {
			if state == Errored {
				sub.Error(err)
				continue
			}
			sub.Complete()
		}
	})
}

func (s *subject[T]) AsObserver() Observer[T] {
	return Observer[T]{
		OnNext:     s.Next,
		OnError:    s.Error,
		OnComplete: s.Complete,
	}
}

func (s *subject[T]) State() SubjectState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *subject[T]) HasObservers() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subscribers {
		if !sub.IsUnsubscribed() {
			return true
		}
	}
	return false
}

// record keeps v in the history according to the replay limit; mu is held.
func (s *subject[T]) record(v T) {
	switch {
	case s.limit == unbounded:
		s.history = append(s.history, v)
	case s.limit > 0:
		s.history = append(s.history, v)
		if over := len(s.history) - s.limit; over > 0 {
			s.history = slices.Delete(s.history, 0, over)
		}
	}
}

// snapshot copies the live subscribers and drops released ones; mu is held.
func (s *subject[T]) snapshot() []*subscriber[T] {
	s.subscribers = slices.DeleteFunc(s.subscribers, func(sub *subscriber[T]) bool {
		return sub.IsUnsubscribed()
	})
	return slices.Clone(s.subscribers)
}

func (s *subject[T]) remove(sub *subscriber[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = slices.DeleteFunc(s.subscribers, func(other *subscriber[T]) bool {
		return other.id == sub.id
	})
}
