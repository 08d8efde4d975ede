package rx

import (
	"errors"
	"io"
	"time"

	"github.com/fgrzl/enumerators"
)

// Just emits the given values in order, then completes.
func Just[T any](values ...T) Observable[T] {
	return FromSlice(values)
}

// FromSlice emits every element of slice in order, then completes.
func FromSlice[T any](slice []T) Observable[T] {
	return Create(func(e Emitter[T]) {
		for _, v := range slice {
			if e.IsUnsubscribed() {
				return
			}
			e.Next(v)
		}
		e.Complete()
	})
}

// Range emits count consecutive integers starting at start.
func Range(start, count int) Observable[int] {
	return Create(func(e Emitter[int]) {
		for i := start; i < start+count; i++ {
			if e.IsUnsubscribed() {
				return
			}
			e.Next(i)
		}
		e.Complete()
	})
}

// Defer calls factory on every subscription and subscribes to the result.
func Defer[T any](factory func() Observable[T]) Observable[T] {
	return Create(func(e Emitter[T]) {
		forward(factory(), e)
	})
}

func Empty[T any]() Observable[T] {
	return Create(func(e Emitter[T]) {
		e.Complete()
	})
}

func Never[T any]() Observable[T] {
	return Create(func(Emitter[T]) {})
}

// Throw emits err to every subscriber.
func Throw[T any](err error) Observable[T] {
	return Create(func(e Emitter[T]) {
		e.Error(err)
	})
}

// SourceFunc pulls the next value. Returning io.EOF completes the stream.
type SourceFunc[T any] func() (T, error)

// FromFunc pulls f until it returns an error or the subscription ends.
func FromFunc[T any](f SourceFunc[T]) Observable[T] {
	return Create(func(e Emitter[T]) {
		for !e.IsUnsubscribed() {
			t, err := f()
			if err != nil {
				if errors.Is(err, io.EOF) {
					e.Complete()
					return
				}
				e.Error(err)
				return
			}
			e.Next(t)
		}
	})
}

// FromChannel emits values received from ch until it is closed. The receive
// loop runs on its own goroutine.
func FromChannel[T any](ch <-chan T) Observable[T] {
	return Create(func(e Emitter[T]) {
		done := make(chan struct{})
		e.OnUnsubscribe(func() { close(done) })
		go func() {
			for {
				select {
				case <-done:
					return
				case v, open := <-ch:
					if !open {
						e.Complete()
						return
					}
					e.Next(v)
				}
			}
		}()
	})
}

// FromEnumerator drains a pull enumerator. The enumerator is disposed when
// it is exhausted or the subscription ends.
func FromEnumerator[T any](enumerator enumerators.Enumerator[T]) Observable[T] {
	return Create(func(e Emitter[T]) {
		defer enumerator.Dispose()
		for enumerator.MoveNext() {
			if e.IsUnsubscribed() {
				return
			}
			v, err := enumerator.Current()
			if err != nil {
				e.Error(err)
				return
			}
			e.Next(v)
		}
		e.Complete()
	})
}

// Interval emits 0, 1, 2, ... every period until unsubscribed.
func Interval(period time.Duration, opts ...Option) Observable[int] {
	return Create(func(e Emitter[int]) {
		c := newConfig(opts...)
		ticker := c.clock.NewTicker(period)
		done := make(chan struct{})
		e.OnUnsubscribe(func() {
			ticker.Stop()
			close(done)
		})
		go func() {
			for i := 0; ; i++ {
				select {
				case <-done:
					return
				case <-ticker.Chan():
					e.Next(i)
				}
			}
		}()
	})
}
