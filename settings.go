package rxrecipes

import (
	"time"

	"github.com/spf13/viper"
)

const (
	KeyWorkers        = "rxrecipes.scheduler.workers"
	KeyArticleLatency = "rxrecipes.article.latency"
	KeyRecipeTimeout  = "rxrecipes.recipes.timeout"
	KeyDebouncePeriod = "rxrecipes.debounce.period"
	KeyLogLevel       = "rxrecipes.log.level"
	KeyLogFormatter   = "rxrecipes.log.formatter"
)

// Config is the read side of the configuration the kitchen and the logging
// setup consume.
type Config interface {
	GetInt(string) int
	GetString(string) string
	GetDuration(string) time.Duration
	IsSet(string) bool

	GetIntDefault(string, int) int
	GetStringDefault(string, string) string
	GetDurationDefault(string, time.Duration) time.Duration

	// GetConfig returns the subtree below key.
	GetConfig(string) (Config, bool)
}

func config() Config {
	return NewConfig(viper.GetViper())
}

// NewConfig wraps v. A nil v wraps the global viper instance.
func NewConfig(v *viper.Viper) Config {
	if v == nil {
		v = viper.GetViper()
	}
	return &viperConfig{v}
}

type viperConfig struct {
	*viper.Viper
}

// lookup returns get(key) when key is set and def otherwise.
func lookup[T any](c *viperConfig, key string, def T, get func(string) T) T {
	if c.IsSet(key) {
		return get(key)
	}
	return def
}

func (c *viperConfig) GetIntDefault(key string, def int) int {
	return lookup(c, key, def, c.GetInt)
}

func (c *viperConfig) GetStringDefault(key string, def string) string {
	return lookup(c, key, def, c.GetString)
}

func (c *viperConfig) GetDurationDefault(key string, def time.Duration) time.Duration {
	return lookup(c, key, def, c.GetDuration)
}

func (c *viperConfig) GetConfig(key string) (Config, bool) {
	if !c.IsSet(key) {
		return nil, false
	}
	return &viperConfig{c.Sub(key)}, true
}

// Settings are the typed values the kitchen runs with.
type Settings struct {
	// Workers bounds the background pool.
	Workers int
	// ArticleLatency is how long Article.Articles takes to load.
	ArticleLatency time.Duration
	// RecipeTimeout bounds a single recipe run.
	RecipeTimeout time.Duration
	// DebouncePeriod is the quiet period of the debounce recipe.
	DebouncePeriod time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Workers:        64,
		ArticleLatency: 3 * time.Second,
		RecipeTimeout:  10 * time.Second,
		DebouncePeriod: 100 * time.Millisecond,
	}
}

// LoadSettings reads the rxrecipes.* keys of conf over DefaultSettings.
func LoadSettings(conf Config) Settings {
	def := DefaultSettings()
	return Settings{
		Workers:        conf.GetIntDefault(KeyWorkers, def.Workers),
		ArticleLatency: conf.GetDurationDefault(KeyArticleLatency, def.ArticleLatency),
		RecipeTimeout:  conf.GetDurationDefault(KeyRecipeTimeout, def.RecipeTimeout),
		DebouncePeriod: conf.GetDurationDefault(KeyDebouncePeriod, def.DebouncePeriod),
	}
}
