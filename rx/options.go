package rx

import "github.com/jonboulle/clockwork"

// Option configures time-based operators.
type Option func(*config)

type config struct {
	clock clockwork.Clock
}

// WithClock sets the clock timers are created from. Tests pass a
// clockwork.FakeClock.
func WithClock(clock clockwork.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func newConfig(opts ...Option) config {
	c := config{
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}
