package rx_test

import (
	"strconv"
	"testing"

	"github.com/7vars/rxrecipes/rx"
	"github.com/7vars/rxrecipes/rx/rxtest"
	"github.com/stretchr/testify/assert"
)

func TestConcat(t *testing.T) {
	rec := rxtest.Record(rx.Concat(rx.Just(1, 2), rx.Just(3), rx.Empty[int](), rx.Just(4, 5)))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rec.Values())
	assert.True(t, rec.Completed())
}

func TestMerge(t *testing.T) {
	a, b := rx.NewPublishSubject[int](), rx.NewPublishSubject[int]()
	rec := rxtest.Record(rx.Merge[int](a, b))

	a.Next(1)
	b.Next(2)
	a.Next(3)
	a.Complete()
	assert.False(t, rec.Completed())

	b.Complete()
	assert.Equal(t, []int{1, 2, 3}, rec.Values())
	assert.True(t, rec.Completed())
}

func TestMergeError(t *testing.T) {
	a := rx.NewPublishSubject[int]()
	rec := rxtest.Record(rx.Merge[int](a, rx.Throw[int](errBoom)))

	assert.ErrorIs(t, rec.Err(), errBoom)
	assert.False(t, a.HasObservers())
}

func TestZip(t *testing.T) {
	rec := rxtest.Record(rx.Zip(rx.Just(1, 2, 3), rx.Just("a", "b"), func(i int, s string) string {
		return strconv.Itoa(i) + s
	}))

	assert.Equal(t, []string{"1a", "2b"}, rec.Values())
	assert.True(t, rec.Completed())
}

func TestZipAll(t *testing.T) {
	a, b := rx.NewPublishSubject[int](), rx.NewPublishSubject[int]()
	rec := rxtest.Record(rx.ZipAll[int](a, b))

	a.Next(1)
	a.Next(2)
	b.Next(10)
	assert.Equal(t, [][]int{{1, 10}}, rec.Values())

	b.Complete()
	assert.True(t, rec.Completed())
	assert.False(t, a.HasObservers())
}
