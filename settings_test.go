package rxrecipes

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadSettings(t *testing.T) {
	t.Run("should fall back to defaults", func(t *testing.T) {
		settings := LoadSettings(NewConfig(viper.New()))
		assert.Equal(t, DefaultSettings(), settings)
	})

	t.Run("should read configured keys", func(t *testing.T) {
		v := viper.New()
		v.Set(KeyWorkers, 8)
		v.Set(KeyArticleLatency, "250ms")

		settings := LoadSettings(NewConfig(v))

		assert.Equal(t, 8, settings.Workers)
		assert.Equal(t, 250*time.Millisecond, settings.ArticleLatency)
		assert.Equal(t, 10*time.Second, settings.RecipeTimeout)
		assert.Equal(t, 100*time.Millisecond, settings.DebouncePeriod)
	})
}

func TestConfigDefaults(t *testing.T) {
	v := viper.New()
	v.Set(KeyLogLevel, "warn")
	v.Set(KeyWorkers, "12")
	conf := NewConfig(v)

	assert.Equal(t, "warn", conf.GetStringDefault(KeyLogLevel, "INFO"))
	assert.Equal(t, "text", conf.GetStringDefault(KeyLogFormatter, "text"))
	assert.Equal(t, 12, conf.GetIntDefault(KeyWorkers, 1))
	assert.Equal(t, time.Second, conf.GetDurationDefault(KeyRecipeTimeout, time.Second))

	sub, ok := conf.GetConfig("rxrecipes")
	assert.True(t, ok)
	assert.Equal(t, "warn", sub.GetString("log.level"))

	_, ok = conf.GetConfig("missing")
	assert.False(t, ok)
}
