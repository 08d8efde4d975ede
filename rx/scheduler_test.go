package rx_test

import (
	"context"
	"testing"
	"time"

	"github.com/7vars/rxrecipes/rx"
	"github.com/7vars/rxrecipes/rx/rxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	loop := rx.NewLoop()
	defer loop.Close()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		loop.Schedule(func() { got = append(got, i) })
	}
	require.NoError(t, loop.Sync(context.Background()))

	assert.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestLoopSurvivesPanic(t *testing.T) {
	loop := rx.NewLoop()
	defer loop.Close()

	var ran bool
	loop.Schedule(func() { panic("boom") })
	loop.Schedule(func() { ran = true })
	require.NoError(t, loop.Sync(context.Background()))
	assert.True(t, ran)
}

func TestLoopClose(t *testing.T) {
	loop := rx.NewLoop()
	var ran bool
	loop.Schedule(func() { ran = true })
	loop.Close()

	select {
	case <-loop.Closed():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.True(t, ran)
	assert.ErrorIs(t, loop.Sync(context.Background()), rx.ErrLoopClosed)
}

func TestLoopSyncHonorsContext(t *testing.T) {
	loop := rx.NewLoop()
	defer loop.Close()

	gate := make(chan struct{})
	defer close(gate)
	loop.Schedule(func() { <-gate })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, loop.Sync(ctx), context.DeadlineExceeded)
}

func TestPool(t *testing.T) {
	pool := rx.NewPool(2)

	done := make(chan int, 10)
	pool.Schedule(func() { panic("boom") })
	for i := 0; i < 10; i++ {
		i := i
		pool.Schedule(func() { done <- i })
	}

	var got []int
	for i := 0; i < 10; i++ {
		select {
		case v := <-done:
			got = append(got, v)
		case <-time.After(time.Second):
			t.Fatal("pool task did not run")
		}
	}
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestDeliverOnLoop(t *testing.T) {
	loop := rx.NewLoop()
	defer loop.Close()

	gate := make(chan struct{})
	loop.Schedule(func() { <-gate })

	rec := rxtest.Record(rx.DeliverOn(rx.Range(0, 100), loop))
	assert.Zero(t, rec.Len())

	close(gate)
	require.NoError(t, loop.Sync(context.Background()))

	values := rec.Values()
	require.Len(t, values, 100)
	for i, v := range values {
		assert.Equal(t, i, v)
	}
	assert.True(t, rec.Completed())
}

func TestDeliverOnPoolKeepsOrder(t *testing.T) {
	pool := rx.NewPool(8)
	expected := make([]int, 100)
	for i := range expected {
		expected[i] = i
	}

	for run := 0; run < 20; run++ {
		values, err := rx.ToSlice(context.Background(), rx.DeliverOn(rx.Range(0, 100), pool))
		require.NoError(t, err)
		require.Equal(t, expected, values)
	}
}

// marking wraps s so that inside reports true while one of its tasks runs.
func marking(s rx.Scheduler, inside *atomic.Bool) rx.Scheduler {
	return rx.SchedulerFunc(func(task func()) {
		s.Schedule(func() {
			inside.Store(true)
			defer inside.Store(false)
			task()
		})
	})
}

func TestDeliverOnRunsCallbacksOnLoop(t *testing.T) {
	loop := rx.NewLoop()
	defer loop.Close()
	var onLoop atomic.Bool

	var outside int
	var completed bool
	rx.DeliverOn(rx.Range(0, 10), marking(loop, &onLoop)).Subscribe(
		func(int) {
			if !onLoop.Load() {
				outside++
			}
		},
		nil,
		func() { completed = onLoop.Load() },
	)
	require.NoError(t, loop.Sync(context.Background()))

	assert.Zero(t, outside)
	assert.True(t, completed)
}

func TestRunOnLeavesCallerGoroutine(t *testing.T) {
	var onPool atomic.Bool
	released := make(chan struct{})
	var producedOnPool, sawRelease bool

	src := rx.Create(func(e rx.Emitter[int]) {
		producedOnPool = onPool.Load()
		select {
		case <-released:
			sawRelease = true
		case <-time.After(time.Second):
		}
		e.Next(1)
		e.Complete()
	})

	rec := rxtest.Record(rx.RunOn(src, marking(rx.NewPool(2), &onPool)))
	close(released)

	select {
	case <-rec.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not finish")
	}
	assert.True(t, producedOnPool)
	assert.True(t, sawRelease)
	assert.Equal(t, []int{1}, rec.Values())
}

func TestRunOnPool(t *testing.T) {
	src := rx.RunOn(rx.Just(1, 2, 3), rx.NewPool(1))

	values, err := rx.ToSlice(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, values)
}

func TestRunOnSkipsReleasedSubscription(t *testing.T) {
	loop := rx.NewLoop()
	defer loop.Close()

	var subscribed bool
	src := rx.Defer(func() rx.Observable[int] {
		subscribed = true
		return rx.Just(1)
	})

	gate := make(chan struct{})
	loop.Schedule(func() { <-gate })
	rec := rxtest.Record(rx.RunOn(src, loop))
	rec.Unsubscribe()
	close(gate)

	require.NoError(t, loop.Sync(context.Background()))
	assert.False(t, subscribed)
	assert.Empty(t, rec.Values())
}

func TestDefaultSchedulers(t *testing.T) {
	loop := rx.NewLoop()
	defer loop.Close()
	previous := rx.Foreground()
	rx.SetForeground(loop)
	defer rx.SetForeground(previous)

	assert.Same(t, loop, rx.Foreground())
	assert.NotNil(t, rx.Background())
}
