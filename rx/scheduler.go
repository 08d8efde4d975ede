package rx

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

var ErrLoopClosed = errors.New("rx: loop closed")

// Scheduler is an execution context for producer work or consumer callbacks.
type Scheduler interface {
	Schedule(task func())
}

type SchedulerFunc func(task func())

func (f SchedulerFunc) Schedule(task func()) {
	f(task)
}

// Immediate runs tasks inline on the calling goroutine.
var Immediate Scheduler = SchedulerFunc(runTask)

// runTask runs task and logs a panic instead of crashing the worker.
func runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("stack", string(debug.Stack())).Errorf("rx: scheduled task panic: %v", r)
		}
	}()
	task()
}

// ===== background =====

// Pool runs every task on its own goroutine with at most size tasks running
// at once. Tasks submitted independently have no ordering guarantee.
type Pool struct {
	slots   *semaphore.Weighted
	running atomic.Int64
}

// NewPool creates a Pool. Sizes <= 0 are normalized to runtime.NumCPU().
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{
		slots: semaphore.NewWeighted(int64(size)),
	}
}

func (p *Pool) Schedule(task func()) {
	go func() {
		if err := p.slots.Acquire(context.Background(), 1); err != nil {
			log.WithError(err).Error("rx: pool slot not acquired")
			return
		}
		defer p.slots.Release(1)
		p.running.Inc()
		defer p.running.Dec()
		runTask(task)
	}()
}

// Running reports the number of tasks currently executing.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// ===== foreground =====

// Loop is a single goroutine draining one FIFO queue. Schedule never blocks
// and tasks run strictly in submission order.
type Loop struct {
	mu     sync.Mutex
	wake   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

func NewLoop() *Loop {
	l := &Loop{
		done: make(chan struct{}),
	}
	l.wake = sync.NewCond(&l.mu)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.wake.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		runTask(task)
	}
}

func (l *Loop) Schedule(task func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		log.Warn("rx: task dropped, loop closed")
		return
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()
	l.wake.Signal()
}

// Sync waits until every task scheduled before it has run.
func (l *Loop) Sync(ctx context.Context) error {
	reached := make(chan struct{})
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.queue = append(l.queue, func() { close(reached) })
	l.mu.Unlock()
	l.wake.Signal()

	select {
	case <-reached:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks; queued tasks still run.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.wake.Broadcast()
}

func (l *Loop) Closed() <-chan struct{} {
	return l.done
}

// ===== defaults =====

var (
	schedulersMu sync.RWMutex
	background   Scheduler
	foreground   *Loop
)

// Background returns the default pool for producer work.
func Background() Scheduler {
	schedulersMu.RLock()
	s := background
	schedulersMu.RUnlock()
	if s != nil {
		return s
	}

	schedulersMu.Lock()
	defer schedulersMu.Unlock()
	if background == nil {
		background = NewPool(64)
	}
	return background
}

// Foreground returns the default loop for consumer callbacks.
func Foreground() *Loop {
	schedulersMu.RLock()
	l := foreground
	schedulersMu.RUnlock()
	if l != nil {
		return l
	}

	schedulersMu.Lock()
	defer schedulersMu.Unlock()
	if foreground == nil {
		foreground = NewLoop()
	}
	return foreground
}

func SetBackground(s Scheduler) {
	schedulersMu.Lock()
	defer schedulersMu.Unlock()
	background = s
}

// SetForeground replaces the default loop. The previous loop is not closed.
func SetForeground(l *Loop) {
	schedulersMu.Lock()
	defer schedulersMu.Unlock()
	foreground = l
}

// ===== operators =====

// RunOn subscribes to src from a task on s, so producer work leaves the
// subscribing goroutine.
func RunOn[T any](src Observable[T], s Scheduler) Observable[T] {
	return Create(func(e Emitter[T]) {
		s.Schedule(func() {
			if e.IsUnsubscribed() {
				return
			}
			forward(src, e)
		})
	})
}

// DeliverOn moves every consumer callback onto s. Signals of one
// subscription are queued and drained by at most one task on s at a time, so
// their order holds on any scheduler.
func DeliverOn[T any](src Observable[T], s Scheduler) Observable[T] {
	return Create(func(e Emitter[T]) {
		q := &deliveryQueue{scheduler: s}
		src.SubscribeObserver(Observer[T]{
			OnSubscribe: func(sub Subscription) { e.OnUnsubscribe(sub.Unsubscribe) },
			OnNext: func(v T) {
				q.push(func() { e.Next(v) })
			},
			OnError: func(err error) {
				q.push(func() { e.Error(err) })
			},
			OnComplete: func() {
				q.push(e.Complete)
			},
		})
	})
}

type deliveryQueue struct {
	scheduler Scheduler

	mu        sync.Mutex
	queue     []func()
	scheduled bool
}

func (q *deliveryQueue) push(signal func()) {
	q.mu.Lock()
	q.queue = append(q.queue, signal)
	if q.scheduled {
		q.mu.Unlock()
		return
	}
	q.scheduled = true
	q.mu.Unlock()

	q.scheduler.Schedule(q.drain)
}

func (q *deliveryQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.scheduled = false
			q.mu.Unlock()
			return
		}
		signal := q.queue[0]
		q.queue[0] = nil
		q.queue = q.queue[1:]
		q.mu.Unlock()

		signal()
	}
}
