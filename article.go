package rxrecipes

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/7vars/rxrecipes/rx"
	"github.com/fgrzl/enumerators"
	"github.com/jonboulle/clockwork"
)

var descriptions = []string{
	"This is article description",
	"Description is here",
	"New item",
	"Great ideas",
	"Latest technology",
	"Tagged places",
	"Celebrities",
}

// Article is the model behind the article recipes. Its streams produce on
// the background scheduler and deliver on the foreground one.
type Article struct {
	mu   sync.RWMutex
	name string

	latency    time.Duration
	clock      clockwork.Clock
	background rx.Scheduler
	foreground rx.Scheduler
}

// NewArticle creates an Article whose Articles call takes latency.
func NewArticle(latency time.Duration) *Article {
	return &Article{
		latency:    latency,
		clock:      clockwork.NewRealClock(),
		background: rx.Background(),
		foreground: rx.Foreground(),
	}
}

// On sets the schedulers the streams run and deliver on.
func (a *Article) On(background, foreground rx.Scheduler) *Article {
	a.background, a.foreground = background, foreground
	return a
}

func (a *Article) WithClock(clock clockwork.Clock) *Article {
	a.clock = clock
	return a
}

func (a *Article) Name() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.name
}

func (a *Article) SetName(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.name = name
}

// NameObservable reads the name when subscribed, not when created.
func (a *Article) NameObservable() rx.Observable[string] {
	return a.hop(rx.Defer(func() rx.Observable[string] {
		return rx.Just(a.Name())
	}))
}

func (a *Article) DescriptionObservable() rx.Observable[string] {
	return a.hop(rx.FromSlice(descriptions))
}

// Articles blocks for the configured latency, then enumerates ten article
// names. A done ctx yields an enumerator failing with ctx.Err().
func (a *Article) Articles(ctx context.Context) enumerators.Enumerator[string] {
	if a.latency > 0 {
		select {
		case <-a.clock.After(a.latency):
		case <-ctx.Done():
			return enumerators.Error[string](ctx.Err())
		}
	}
	articles := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		articles = append(articles, "Article "+strconv.Itoa(i))
	}
	return enumerators.Slice(articles)
}

func (a *Article) hop(src rx.Observable[string]) rx.Observable[string] {
	return rx.DeliverOn(rx.RunOn(src, a.background), a.foreground)
}
