package rxrecipes

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"
)

var ErrUnknownRecipe = errors.New("rxrecipes: unknown recipe")

// Recipe demonstrates one stream composition, reporting through the
// kitchen's sink. It returns once its streams terminated.
type Recipe func(ctx context.Context, k *Kitchen) error

var (
	recipeMu sync.RWMutex
	recipes  = make(map[string]Recipe)
	order    []string
)

// RegisterRecipe makes a recipe available by name. It panics when recipe is
// nil or the name is taken.
func RegisterRecipe(name string, recipe Recipe) {
	recipeMu.Lock()
	defer recipeMu.Unlock()
	if recipe == nil {
		panic("rxrecipes: recipe " + name + " is nil")
	}
	if _, exists := recipes[name]; exists {
		panic("rxrecipes: recipe " + name + " is already registered")
	}
	recipes[name] = recipe
	order = append(order, name)
}

// Recipes returns the registered names in registration order.
func Recipes() []string {
	recipeMu.RLock()
	defer recipeMu.RUnlock()
	return slices.Clone(order)
}

func lookupRecipe(name string) (Recipe, error) {
	recipeMu.RLock()
	defer recipeMu.RUnlock()
	recipe, ok := recipes[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownRecipe, name)
	}
	return recipe, nil
}
