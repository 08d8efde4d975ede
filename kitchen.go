package rxrecipes

import (
	"context"
	"fmt"
	"time"

	"github.com/7vars/rxrecipes/rx"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Tag is the tag of every message recipes report.
const Tag = "TAG"

// Kitchen runs recipes. It owns the schedulers recipes hop between and the
// sink they report to.
type Kitchen struct {
	Logger
	sink       Sink
	settings   Settings
	background rx.Scheduler
	foreground *rx.Loop
	ownsLoop   bool
}

type Option func(*Kitchen)

func WithSink(sink Sink) Option {
	return func(k *Kitchen) {
		k.sink = sink
	}
}

func WithSettings(settings Settings) Option {
	return func(k *Kitchen) {
		k.settings = settings
	}
}

func WithBackground(s rx.Scheduler) Option {
	return func(k *Kitchen) {
		k.background = s
	}
}

// WithForeground makes the kitchen deliver on loop. The caller keeps
// ownership of loop.
func WithForeground(loop *rx.Loop) Option {
	return func(k *Kitchen) {
		k.foreground = loop
	}
}

// New creates a kitchen configured from the global viper instance.
func New(opts ...Option) *Kitchen {
	k := &Kitchen{
		Logger:   newLogger().WithField("rxrecipes", "kitchen"),
		settings: LoadSettings(config()),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.sink == nil {
		k.sink = NewLogSink(newLogger())
	}
	if k.background == nil {
		k.background = rx.NewPool(k.settings.Workers)
	}
	if k.foreground == nil {
		k.foreground = rx.NewLoop()
		k.ownsLoop = true
	}
	return k
}

func (k *Kitchen) Settings() Settings {
	return k.settings
}

func (k *Kitchen) Background() rx.Scheduler {
	return k.background
}

func (k *Kitchen) Foreground() *rx.Loop {
	return k.foreground
}

// Log reports message under Tag.
func (k *Kitchen) Log(message string) {
	k.sink.Log(Tag, message)
}

func (k *Kitchen) Logf(format string, args ...interface{}) {
	k.Log(fmt.Sprintf(format, args...))
}

// NewArticle creates an Article bound to the kitchen's schedulers.
func (k *Kitchen) NewArticle() *Article {
	return NewArticle(k.settings.ArticleLatency).On(k.background, k.foreground)
}

// Run executes the named recipes, all registered ones when names is empty,
// in order. A failing recipe is logged and the next one runs; the failures
// are returned joined.
func (k *Kitchen) Run(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = Recipes()
	}

	var errs error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = multierr.Append(errs, err)
			break
		}
		recipe, err := lookupRecipe(name)
		if err == nil {
			err = k.run(ctx, name, recipe)
		}
		if err != nil {
			k.WithField("recipe", name).Errorf("recipe failed: %v", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (k *Kitchen) run(ctx context.Context, name string, recipe Recipe) (err error) {
	log := k.WithField("recipe", name)
	if k.settings.RecipeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.settings.RecipeTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = rx.RuntimeError(r)
		}
	}()

	start := time.Now()
	log.Debug("start recipe")
	if err := recipe(ctx, k); err != nil {
		return errors.Wrapf(err, "recipe %s", name)
	}
	if err := k.foreground.Sync(ctx); err != nil {
		return errors.Wrapf(err, "recipe %s", name)
	}
	log.Debugf("recipe done in %s", time.Since(start))
	return nil
}

// Close stops the foreground loop when the kitchen created it.
func (k *Kitchen) Close() {
	if k.ownsLoop {
		k.foreground.Close()
	}
}
