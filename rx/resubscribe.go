package rx

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/atomic"
)

// trampoline runs subscribe once per call without recursing: a call made
// while subscribe is running is replayed by the running loop.
type trampoline struct {
	wip atomic.Int32
}

func (t *trampoline) run(subscribe func()) {
	if t.wip.Inc() != 1 {
		return
	}
	for {
		subscribe()
		if t.wip.Dec() == 0 {
			return
		}
	}
}

// Repeat subscribes to src again each time it completes, producing its
// sequence n times in total.
func Repeat[T any](src Observable[T], n int) Observable[T] {
	if n <= 0 {
		return Empty[T]()
	}
	return Create(func(e Emitter[T]) {
		var (
			loop      trampoline
			current   serialSubscription
			remaining = atomic.NewInt64(int64(n))
			subscribe func()
		)
		e.OnUnsubscribe(current.Unsubscribe)

		subscribe = func() {
			if e.IsUnsubscribed() {
				return
			}
			src.SubscribeObserver(Observer[T]{
				OnSubscribe: current.Set,
				OnNext:      e.Next,
				OnError:     e.Error,
				OnComplete: func() {
					if remaining.Dec() <= 0 {
						e.Complete()
						return
					}
					loop.run(subscribe)
				},
			})
		}
		loop.run(subscribe)
	})
}

// Retry subscribes to src again after an error, at most n times, then
// propagates the last error.
func Retry[T any](src Observable[T], n int) Observable[T] {
	return RetryWithBackoff(src, func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(max(n, 0)))
	})
}

// RetryWithBackoff resubscribes after an error once the delay returned by
// the policy elapsed. policy is called once per subscription; backoff.Stop
// propagates the error.
func RetryWithBackoff[T any](src Observable[T], policy func() backoff.BackOff, opts ...Option) Observable[T] {
	c := newConfig(opts...)
	return Create(func(e Emitter[T]) {
		var (
			loop      trampoline
			current   serialSubscription
			b         = policy()
			subscribe func()
		)
		b.Reset()
		e.OnUnsubscribe(current.Unsubscribe)

		retry := func() { loop.run(subscribe) }
		subscribe = func() {
			if e.IsUnsubscribed() {
				return
			}
			src.SubscribeObserver(Observer[T]{
				OnSubscribe: current.Set,
				OnNext:      e.Next,
				OnComplete:  e.Complete,
				OnError: func(err error) {
					delay := b.NextBackOff()
					switch {
					case delay == backoff.Stop:
						e.Error(err)
					case delay <= 0:
						retry()
					default:
						log.WithError(err).Debugf("rx: retrying in %s", delay)
						timer := c.clock.AfterFunc(delay, retry)
						e.OnUnsubscribe(func() { timer.Stop() })
					}
				},
			})
		}
		retry()
	})
}

// RetryDelay is a constant backoff policy for RetryWithBackoff.
func RetryDelay(delay time.Duration, retries int) func() backoff.BackOff {
	return func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(max(retries, 0)))
	}
}
