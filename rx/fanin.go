package rx

import (
	"go.uber.org/atomic"
)

// Merge subscribes to every source at once and interleaves their values. It
// completes when all sources completed; the first error ends the stream.
func Merge[T any](sources ...Observable[T]) Observable[T] {
	if len(sources) == 0 {
		return Empty[T]()
	}
	return Create(func(e Emitter[T]) {
		active := atomic.NewInt32(int32(len(sources)))
		for _, src := range sources {
			if e.IsUnsubscribed() {
				return
			}
			src.SubscribeObserver(Observer[T]{
				OnSubscribe: func(s Subscription) { e.OnUnsubscribe(s.Unsubscribe) },
				OnNext:      e.Next,
				OnError:     e.Error,
				OnComplete: func() {
					if active.Dec() == 0 {
						e.Complete()
					}
				},
			})
		}
	})
}

// Concat subscribes to the sources one after another.
func Concat[T any](sources ...Observable[T]) Observable[T] {
	return ConcatMap(FromSlice(sources), func(src Observable[T]) Observable[T] {
		return src
	})
}

// ZipAll emits a slice holding the i-th value of every source once each of
// them produced it. It completes as soon as a completed source has no
// unconsumed value left.
func ZipAll[T any](sources ...Observable[T]) Observable[[]T] {
	if len(sources) == 0 {
		return Empty[[]T]()
	}
	return Create(func(e Emitter[[]T]) {
		var (
			events pipe
			queues = make([][]T, len(sources))
			done   = make([]bool, len(sources))
			closed bool
		)

		// drain runs inside events, so queues and done need no lock.
		drain := func() {
			if closed {
				return
			}
			for {
				for _, q := range queues {
					if len(q) == 0 {
						goto check
					}
				}
				tuple := make([]T, len(queues))
				for i := range queues {
					tuple[i] = queues[i][0]
					queues[i] = queues[i][1:]
				}
				e.Next(tuple)
			}
		check:
			for i := range queues {
				if done[i] && len(queues[i]) == 0 {
					closed = true
					e.Complete()
					return
				}
			}
		}

		for i, src := range sources {
			if e.IsUnsubscribed() {
				return
			}
			i := i
			src.SubscribeObserver(Observer[T]{
				OnSubscribe: func(s Subscription) { e.OnUnsubscribe(s.Unsubscribe) },
				OnNext: func(v T) {
					events.send(func() {
						queues[i] = append(queues[i], v)
						drain()
					})
				},
				OnError: e.Error,
				OnComplete: func() {
					events.send(func() {
						done[i] = true
						drain()
					})
				},
			})
		}
	})
}

// Zip pairs the values of a and b positionally through combine.
func Zip[A, B, R any](a Observable[A], b Observable[B], combine func(A, B) R) Observable[R] {
	return Map(ZipAll(toAny(a), toAny(b)), func(vs []any) R {
		return combine(vs[0].(A), vs[1].(B))
	})
}

func toAny[T any](src Observable[T]) Observable[any] {
	return Map(src, func(v T) any { return v })
}
