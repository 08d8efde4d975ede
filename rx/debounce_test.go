package rx_test

import (
	"testing"
	"time"

	"github.com/7vars/rxrecipes/rx"
	"github.com/7vars/rxrecipes/rx/rxtest"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestDebounce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := rx.NewPublishSubject[int]()
	rec := rxtest.Record(rx.Debounce[int](s, 100*time.Millisecond, rx.WithClock(clock)))

	s.Next(1)
	s.Next(2)
	clock.Advance(50 * time.Millisecond)
	s.Next(3)
	clock.Advance(50 * time.Millisecond)
	assert.Zero(t, rec.Len())

	clock.Advance(50 * time.Millisecond)
	assert.Eventually(t, func() bool { return rec.Len() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []int{3}, rec.Values())

	s.Next(4)
	s.Complete()
	assert.Equal(t, []int{3, 4}, rec.Values())
	assert.True(t, rec.Completed())
}

func TestDebounceUnsubscribeStopsTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := rx.NewPublishSubject[int]()
	rec := rxtest.Record(rx.Debounce[int](s, 100*time.Millisecond, rx.WithClock(clock)))

	s.Next(1)
	rec.Unsubscribe()
	clock.Advance(time.Second)

	assert.Never(t, func() bool { return rec.Len() > 0 }, 20*time.Millisecond, time.Millisecond)
	assert.False(t, s.HasObservers())
}
