package rx

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debounce emits a value only once no newer value arrived for d. One timer
// per subscription is reset on every value and stopped on unsubscribe. A
// pending value is flushed when upstream completes.
func Debounce[T any](src Observable[T], d time.Duration, opts ...Option) Observable[T] {
	c := newConfig(opts...)
	return lift(src, func(e Emitter[T]) Observer[T] {
		var (
			mu      sync.Mutex
			timer   clockwork.Timer
			latest  T
			pending bool
			gen     uint64
		)
		stop := func() {
			if timer != nil {
				timer.Stop()
				timer = nil
			}
		}
		e.OnUnsubscribe(func() {
			mu.Lock()
			defer mu.Unlock()
			pending = false
			stop()
		})

		return Observer[T]{
			OnNext: func(v T) {
				mu.Lock()
				defer mu.Unlock()
				gen++
				latest, pending = v, true
				stop()
				current := gen
				timer = c.clock.AfterFunc(d, func() {
					mu.Lock()
					if current != gen || !pending || e.IsUnsubscribed() {
						mu.Unlock()
						return
					}
					v := latest
					pending = false
					timer = nil
					mu.Unlock()
					e.Next(v)
				})
			},
			OnError: func(err error) {
				mu.Lock()
				pending = false
				stop()
				mu.Unlock()
				e.Error(err)
			},
			OnComplete: func() {
				mu.Lock()
				stop()
				v, flush := latest, pending
				pending = false
				mu.Unlock()
				if flush {
					e.Next(v)
				}
				e.Complete()
			},
		}
	})
}
