package rx

import "sync"

type shared[T any] struct {
	src Observable[T]

	mu         sync.Mutex
	subject    Subject[T]
	connection *serialSubscription
	count      int
}

// Share multicasts src through a PublishSubject. The first subscriber
// connects upstream, the last one to leave disconnects; a later subscriber
// connects again.
func Share[T any](src Observable[T]) Observable[T] {
	s := &shared[T]{
		src: src,
	}
	return Create(s.subscribe)
}

func (s *shared[T]) subscribe(e Emitter[T]) {
	s.mu.Lock()
	if s.subject == nil {
		s.subject = NewPublishSubject[T]()
		s.connection = &serialSubscription{}
	}
	subject, connection := s.subject, s.connection
	s.count++
	connect := s.count == 1
	s.mu.Unlock()

	forward(subject, e)
	e.OnUnsubscribe(func() { s.release(subject) })

	if connect {
		s.src.SubscribeObserver(Observer[T]{
			OnSubscribe: connection.Set,
			OnNext:      subject.Next,
			OnError: func(err error) {
				s.reset(subject)
				subject.Error(err)
			},
			OnComplete: func() {
				s.reset(subject)
				subject.Complete()
			},
		})
	}
}

func (s *shared[T]) release(subject Subject[T]) {
	s.mu.Lock()
	if s.subject != subject {
		s.mu.Unlock()
		return
	}
	s.count--
	if s.count > 0 {
		s.mu.Unlock()
		return
	}
	connection := s.connection
	s.subject, s.connection = nil, nil
	s.mu.Unlock()

	connection.Unsubscribe()
}

func (s *shared[T]) reset(subject Subject[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subject == subject {
		s.subject, s.connection, s.count = nil, nil, 0
	}
}
