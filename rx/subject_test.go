package rx_test

import (
	"testing"

	"github.com/7vars/rxrecipes/rx"
	"github.com/7vars/rxrecipes/rx/rxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubject(t *testing.T) {
	s := rx.NewPublishSubject[int]()
	assert.Equal(t, rx.Idle, s.State())

	s.Next(1)
	s.Next(2)
	s.Next(3)
	rec := rxtest.Record[int](s)
	s.Next(4)
	s.Next(5)
	s.Complete()

	assert.Equal(t, []int{4, 5}, rec.Values())
	assert.True(t, rec.Completed())
	assert.Equal(t, rx.Completed, s.State())

	late := rxtest.Record[int](s)
	assert.Empty(t, late.Values())
	assert.True(t, late.Completed())
}

func TestReplaySubject(t *testing.T) {
	s := rx.NewReplaySubject[int]()
	s.Next(1)
	s.Next(2)
	s.Next(3)

	rec := rxtest.Record[int](s)
	s.Next(4)
	assert.Equal(t, []int{1, 2, 3, 4}, rec.Values())

	s.Error(errBoom)
	late := rxtest.Record[int](s)
	assert.Equal(t, []int{1, 2, 3, 4}, late.Values())
	assert.ErrorIs(t, late.Err(), errBoom)
	assert.Equal(t, rx.Errored, s.State())
}

func TestBehaviorSubject(t *testing.T) {
	s := rx.NewBehaviorSubject(0)

	first := rxtest.Record[int](s)
	s.Next(1)
	second := rxtest.Record[int](s)
	s.Next(2)

	assert.Equal(t, []int{0, 1, 2}, first.Values())
	assert.Equal(t, []int{1, 2}, second.Values())

	t.Run("should replay only the terminal signal after completion", func(t *testing.T) {
		s.Complete()
		late := rxtest.Record[int](s)

		assert.Empty(t, late.Values())
		assert.True(t, late.Completed())
	})
}

func TestSubjectIgnoresSignalsAfterTermination(t *testing.T) {
	var handled []error
	restore := rx.SetErrorHandler(func(err error) { handled = append(handled, err) })
	defer restore()

	s := rx.NewPublishSubject[int]()
	rec := rxtest.Record[int](s)

	s.Complete()
	s.Next(1)
	s.Error(errBoom)

	assert.Empty(t, rec.Values())
	assert.True(t, rec.Completed())
	assert.NoError(t, rec.Err())
	require.Len(t, handled, 1)
	assert.ErrorIs(t, handled[0], errBoom)
}

func TestSubjectUnsubscribe(t *testing.T) {
	s := rx.NewPublishSubject[int]()
	rec := rxtest.Record[int](s)
	assert.True(t, s.HasObservers())

	rec.Unsubscribe()
	s.Next(1)

	assert.False(t, s.HasObservers())
	assert.Empty(t, rec.Values())
}

func TestSubjectReentrantNext(t *testing.T) {
	s := rx.NewPublishSubject[int]()
	var got []int
	s.Subscribe(func(v int) {
		got = append(got, v)
		if v < 3 {
			s.Next(v + 1)
		}
	}, nil, nil)

	s.Next(1)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestSubjectAsObserver(t *testing.T) {
	s := rx.NewReplaySubject[string]()
	rx.Into(rx.Just("a", "b"), s)

	rec := rxtest.Record[string](s)
	assert.Equal(t, []string{"a", "b"}, rec.Values())
	assert.True(t, rec.Completed())
}

func TestShare(t *testing.T) {
	upstream := rx.NewPublishSubject[int]()
	var connects int
	shared := rx.Share(rx.Defer(func() rx.Observable[int] {
		connects++
		return upstream
	}))

	first := rxtest.Record(shared)
	second := rxtest.Record(shared)
	assert.Equal(t, 1, connects)

	upstream.Next(1)
	assert.Equal(t, []int{1}, first.Values())
	assert.Equal(t, []int{1}, second.Values())

	first.Unsubscribe()
	upstream.Next(2)
	assert.Equal(t, []int{1}, first.Values())
	assert.Equal(t, []int{1, 2}, second.Values())
	assert.True(t, upstream.HasObservers())

	second.Unsubscribe()
	assert.False(t, upstream.HasObservers())

	third := rxtest.Record(shared)
	assert.Equal(t, 2, connects)
	upstream.Next(3)
	upstream.Complete()
	assert.Equal(t, []int{3}, third.Values())
	assert.True(t, third.Completed())
}
