package rx_test

import (
	"testing"

	"github.com/7vars/rxrecipes/rx"
	"github.com/7vars/rxrecipes/rx/rxtest"
	"github.com/stretchr/testify/assert"
)

func TestTakeReleasesUpstream(t *testing.T) {
	var released bool
	src := rx.Create(func(e rx.Emitter[int]) {
		for i := 1; i <= 5; i++ {
			e.Next(i)
		}
		released = e.IsUnsubscribed()
		e.Error(errBoom)
	})

	rec := rxtest.Record(rx.Take(src, 3))

	assert.Equal(t, []int{1, 2, 3}, rec.Values())
	assert.True(t, rec.Completed())
	assert.NoError(t, rec.Err())
	assert.True(t, released)
}

func TestTakeZero(t *testing.T) {
	rec := rxtest.Record(rx.Take(rx.Never[int](), 0))
	assert.Empty(t, rec.Values())
	assert.True(t, rec.Completed())
}

func TestSkip(t *testing.T) {
	rec := rxtest.Record(rx.Skip(rx.Range(1, 5), 2))
	assert.Equal(t, []int{3, 4, 5}, rec.Values())
}

func TestTakeLast(t *testing.T) {
	rec := rxtest.Record(rx.TakeLast(rx.Range(1, 5), 2))
	assert.Equal(t, []int{4, 5}, rec.Values())
	assert.True(t, rec.Completed())

	short := rxtest.Record(rx.TakeLast(rx.Just(1), 3))
	assert.Equal(t, []int{1}, short.Values())
}

func TestSkipLast(t *testing.T) {
	rec := rxtest.Record(rx.SkipLast(rx.Range(1, 5), 2))
	assert.Equal(t, []int{1, 2, 3}, rec.Values())

	short := rxtest.Record(rx.SkipLast(rx.Just(1, 2), 3))
	assert.Empty(t, short.Values())
	assert.True(t, short.Completed())
}

func TestBuffer(t *testing.T) {
	t.Run("should emit consecutive windows", func(t *testing.T) {
		rec := rxtest.Record(rx.Buffer(rx.Range(1, 5), 2, 2))
		assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, rec.Values())
		assert.True(t, rec.Completed())
	})

	t.Run("should overlap windows when skip is smaller", func(t *testing.T) {
		rec := rxtest.Record(rx.Buffer(rx.Range(1, 4), 3, 1))
		assert.Equal(t, [][]int{{1, 2, 3}, {2, 3, 4}, {3, 4}, {4}}, rec.Values())
	})

	t.Run("should drop values between windows when skip is larger", func(t *testing.T) {
		rec := rxtest.Record(rx.Buffer(rx.Range(1, 7), 2, 3))
		assert.Equal(t, [][]int{{1, 2}, {4, 5}, {7}}, rec.Values())
	})

	t.Run("should reject a non-positive count", func(t *testing.T) {
		rec := rxtest.Record(rx.Buffer(rx.Range(1, 3), 0, 1))
		assert.Error(t, rec.Err())
	})
}
