package rxtest

import (
	"slices"
	"sync"

	"github.com/7vars/rxrecipes/rx"
)

// Recorder records the signals of one subscription for tests.
//
// Recorder is safe under concurrent callbacks.
type Recorder[T any] struct {
	mu           sync.Mutex
	values       []T
	err          error
	completed    bool
	subscription rx.Subscription
	done         chan struct{}
	once         sync.Once
}

// NewRecorder constructs a Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{
		done: make(chan struct{}),
	}
}

// Record subscribes the recorder to src.
func Record[T any](src rx.Observable[T]) *Recorder[T] {
	r := NewRecorder[T]()
	src.SubscribeObserver(r.Observer())
	return r
}

// Observer returns the hooks writing into the recorder.
func (r *Recorder[T]) Observer() rx.Observer[T] {
	return rx.Observer[T]{
		OnSubscribe: func(s rx.Subscription) {
			r.mu.Lock()
			r.subscription = s
			r.mu.Unlock()
		},
		OnNext: func(v T) {
			r.mu.Lock()
			r.values = append(r.values, v)
			r.mu.Unlock()
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.err = err
			r.mu.Unlock()
			r.once.Do(func() { close(r.done) })
		},
		OnComplete: func() {
			r.mu.Lock()
			r.completed = true
			r.mu.Unlock()
			r.once.Do(func() { close(r.done) })
		},
	}
}

// Values returns a snapshot copy of the recorded values.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.values)
}

func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

func (r *Recorder[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder[T]) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Terminated reports whether an error or completion was recorded.
func (r *Recorder[T]) Terminated() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Done is closed once the terminal signal was recorded.
func (r *Recorder[T]) Done() <-chan struct{} {
	return r.done
}

func (r *Recorder[T]) Subscription() rx.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subscription
}

// Unsubscribe releases the recorded subscription.
func (r *Recorder[T]) Unsubscribe() {
	if s := r.Subscription(); s != nil {
		s.Unsubscribe()
	}
}
