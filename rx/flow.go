package rx

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"
)

// lift subscribes src with the observer op builds for the downstream emitter.
// Missing OnError/OnComplete hooks forward to e, a panic in OnNext becomes an
// error downstream, and releasing e releases the upstream subscription.
func lift[T, R any](src Observable[T], op func(Emitter[R]) Observer[T]) Observable[R] {
	return Create(func(e Emitter[R]) {
		obs := op(e)
		onSubscribe, onNext := obs.OnSubscribe, obs.OnNext
		obs.OnSubscribe = func(up Subscription) {
			e.OnUnsubscribe(up.Unsubscribe)
			if onSubscribe != nil {
				onSubscribe(up)
			}
		}
		obs.OnNext = func(v T) {
			defer func() {
				if r := recover(); r != nil {
					e.Error(RuntimeError(r))
				}
			}()
			if onNext != nil {
				onNext(v)
			}
		}
		if obs.OnError == nil {
			obs.OnError = e.Error
		}
		if obs.OnComplete == nil {
			obs.OnComplete = e.Complete
		}
		src.SubscribeObserver(obs)
	})
}

// forward subscribes src and relays every signal to e.
func forward[T any](src Observable[T], e Emitter[T]) Subscription {
	return src.SubscribeObserver(Observer[T]{
		OnSubscribe: func(s Subscription) { e.OnUnsubscribe(s.Unsubscribe) },
		OnNext:      e.Next,
		OnError:     e.Error,
		OnComplete:  e.Complete,
	})
}

// Map emits f(v) for every upstream value.
func Map[T, R any](src Observable[T], f func(T) R) Observable[R] {
	return lift(src, func(e Emitter[R]) Observer[T] {
		return Observer[T]{
			OnNext: func(v T) { e.Next(f(v)) },
		}
	})
}

// MapE is Map for transforms that can fail; the first error terminates the
// stream.
func MapE[T, R any](src Observable[T], f func(T) (R, error)) Observable[R] {
	return lift(src, func(e Emitter[R]) Observer[T] {
		return Observer[T]{
			OnNext: func(v T) {
				r, err := f(v)
				if err != nil {
					e.Error(err)
					return
				}
				e.Next(r)
			},
		}
	})
}

func Filter[T any](src Observable[T], f func(T) bool) Observable[T] {
	return lift(src, func(e Emitter[T]) Observer[T] {
		return Observer[T]{
			OnNext: func(v T) {
				if f(v) {
					e.Next(v)
				}
			},
		}
	})
}

// Do calls f for every value before passing it on unchanged.
func Do[T any](src Observable[T], f func(T)) Observable[T] {
	return lift(src, func(e Emitter[T]) Observer[T] {
		return Observer[T]{
			OnNext: func(v T) {
				f(v)
				e.Next(v)
			},
		}
	})
}

func TakeWhile[T any](src Observable[T], f func(T) bool) Observable[T] {
	return lift(src, func(e Emitter[T]) Observer[T] {
		return Observer[T]{
			OnNext: func(v T) {
				if f(v) {
					e.Next(v)
					return
				}
				e.Complete()
			},
		}
	})
}

func SkipWhile[T any](src Observable[T], f func(T) bool) Observable[T] {
	return lift(src, func(e Emitter[T]) Observer[T] {
		skipping := true
		return Observer[T]{
			OnNext: func(v T) {
				if skipping && f(v) {
					return
				}
				skipping = false
				e.Next(v)
			},
		}
	})
}

// Fold accumulates every value into k and emits the result on completion.
func Fold[T, K any](src Observable[T], k K, f func(K, T) K) Observable[K] {
	return lift(src, func(e Emitter[K]) Observer[T] {
		acc := k
		return Observer[T]{
			OnNext: func(v T) {
				acc = f(acc, v)
			},
			OnComplete: func() {
				e.Next(acc)
				e.Complete()
			},
		}
	})
}

// Reduce is Fold seeded with the first value. An empty source completes
// without emitting.
func Reduce[T any](src Observable[T], f func(T, T) T) Observable[T] {
	return lift(src, func(e Emitter[T]) Observer[T] {
		var acc T
		var seeded bool
		return Observer[T]{
			OnNext: func(v T) {
				if !seeded {
					acc, seeded = v, true
					return
				}
				acc = f(acc, v)
			},
			OnComplete: func() {
				if seeded {
					e.Next(acc)
				}
				e.Complete()
			},
		}
	})
}

// Catch resumes with the stream f returns for an upstream error. A nil
// stream lets the error through.
func Catch[T any](src Observable[T], f func(error) Observable[T]) Observable[T] {
	return lift(src, func(e Emitter[T]) Observer[T] {
		return Observer[T]{
			OnNext: e.Next,
			OnError: func(err error) {
				var fallback Observable[T]
				if perr := try(func() { fallback = f(err) }); perr != nil {
					e.Error(perr)
					return
				}
				if fallback == nil {
					e.Error(err)
					return
				}
				forward(fallback, e)
			},
		}
	})
}

// FlatMap subscribes to f(v) for every upstream value and interleaves the
// inner streams. It completes once upstream and every inner stream completed.
func FlatMap[T, R any](src Observable[T], f func(T) Observable[R]) Observable[R] {
	return lift(src, func(e Emitter[R]) Observer[T] {
		inners := mapset.NewSet[Subscription]()
		active := atomic.NewInt32(1)
		finish := func() {
			if active.Dec() == 0 {
				e.Complete()
			}
		}
		e.OnUnsubscribe(func() {
			for _, inner := range inners.ToSlice() {
				inner.Unsubscribe()
			}
		})

		return Observer[T]{
			OnNext: func(v T) {
				inner := f(v)
				active.Inc()
				var sub Subscription
				inner.SubscribeObserver(Observer[R]{
					OnSubscribe: func(s Subscription) {
						sub = s
						inners.Add(s)
						if e.IsUnsubscribed() {
							s.Unsubscribe()
						}
					},
					OnNext:  e.Next,
					OnError: e.Error,
					OnComplete: func() {
						inners.Remove(sub)
						finish()
					},
				})
			},
			OnComplete: finish,
		}
	})
}

// ConcatMap is FlatMap that subscribes to one inner stream at a time, in
// upstream order.
func ConcatMap[T, R any](src Observable[T], f func(T) Observable[R]) Observable[R] {
	return lift(src, func(e Emitter[R]) Observer[T] {
		var (
			mu        sync.Mutex
			pending   []T
			busy      bool
			upstream  bool
			current   serialSubscription
			subscribe func(T)
		)
		e.OnUnsubscribe(current.Unsubscribe)

		next := func() {
			mu.Lock()
			if len(pending) == 0 {
				busy = false
				done := upstream
				mu.Unlock()
				if done {
					e.Complete()
				}
				return
			}
			v := pending[0]
			pending = pending[1:]
			mu.Unlock()
			subscribe(v)
		}
		subscribe = func(v T) {
			var inner Observable[R]
			if err := try(func() { inner = f(v) }); err != nil {
				e.Error(err)
				return
			}
			inner.SubscribeObserver(Observer[R]{
				OnSubscribe: current.Set,
				OnNext:      e.Next,
				OnError:     e.Error,
				OnComplete:  next,
			})
		}

		return Observer[T]{
			OnNext: func(v T) {
				mu.Lock()
				if busy {
					pending = append(pending, v)
					mu.Unlock()
					return
				}
				busy = true
				mu.Unlock()
				subscribe(v)
			},
			OnComplete: func() {
				mu.Lock()
				upstream = true
				idle := !busy
				mu.Unlock()
				if idle {
					e.Complete()
				}
			},
		}
	})
}
