package rx

import "sync"

// pipe runs tasks one at a time in arrival order. The goroutine that finds the
// pipe idle drains it; everyone else enqueues and returns, which keeps
// re-entrant sends from deadlocking.
type pipe struct {
	mu       sync.Mutex
	draining bool
	queue    []func()
}

func (p *pipe) send(task func()) {
	p.mu.Lock()
	if p.draining {
		p.queue = append(p.queue, task)
		p.mu.Unlock()
		return
	}
	p.draining = true
	p.mu.Unlock()

	p.drain(task)
}

func (p *pipe) drain(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.mu.Lock()
			p.draining = false
			p.queue = nil
			p.mu.Unlock()
			panic(r)
		}
	}()

	for {
		task()

		p.mu.Lock()
		if len(p.queue) == 0 {
			p.draining = false
			p.mu.Unlock()
			return
		}
		task = p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()
	}
}
