package rx

import (
	"context"
	"sync"
)

// ToSlice blocks until src terminates and returns its values. Cancelling ctx
// releases the subscription and returns ctx.Err().
func ToSlice[T any](ctx context.Context, src Observable[T]) ([]T, error) {
	var (
		mu     sync.Mutex
		values = make([]T, 0)
	)
	done := make(chan error, 1)

	sub := src.Subscribe(
		func(v T) {
			mu.Lock()
			defer mu.Unlock()
			values = append(values, v)
		},
		func(err error) { done <- err },
		func() { done <- nil },
	)

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		mu.Lock()
		defer mu.Unlock()
		return values, nil
	case <-ctx.Done():
		sub.Unsubscribe()
		return nil, ctx.Err()
	}
}

// First blocks until src emits its first value. A stream completing without
// a value yields ErrEmpty.
func First[T any](ctx context.Context, src Observable[T]) (T, error) {
	var zero T
	values, err := ToSlice(ctx, Take(src, 1))
	if err != nil {
		return zero, err
	}
	if len(values) == 0 {
		return zero, ErrEmpty
	}
	return values[0], nil
}

// Wait blocks until src terminates and returns its error, if any.
func Wait[T any](ctx context.Context, src Observable[T]) error {
	done := make(chan error, 1)
	sub := src.Subscribe(nil, func(err error) { done <- err }, func() { done <- nil })

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		sub.Unsubscribe()
		return ctx.Err()
	}
}

// ToChannel turns src into a channel of notifications. The channel is closed
// after the terminal notification or when ctx is done. A slow reader blocks
// the producer.
func ToChannel[T any](ctx context.Context, src Observable[T]) <-chan Notification[T] {
	out := make(chan Notification[T])
	go func() {
		var (
			mu     sync.Mutex
			closed bool
		)
		terminated := make(chan struct{})
		emit := func(n Notification[T], last bool) {
			mu.Lock()
			defer mu.Unlock()
			if closed {
				return
			}
			select {
			case out <- n:
			case <-ctx.Done():
			}
			if last {
				closed = true
				close(out)
				close(terminated)
			}
		}

		sub := src.Subscribe(
			func(v T) { emit(Notification[T]{Value: v}, false) },
			func(err error) { emit(Notification[T]{Err: err}, true) },
			func() { emit(Notification[T]{Done: true}, true) },
		)

		select {
		case <-terminated:
		case <-ctx.Done():
			sub.Unsubscribe()
			mu.Lock()
			if !closed {
				closed = true
				close(out)
			}
			mu.Unlock()
		}
	}()
	return out
}
