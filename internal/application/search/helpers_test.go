package search

import (
	"context"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

const (
	testTimeout = 2 * time.Second
	testTick    = 5 * time.Millisecond
)

// gatedGenerator blocks each call until the channel keyed by the first
// ingredient is closed, then returns one recipe named after it
type gatedGenerator struct {
	release map[string]chan struct{}
	entered chan string
}

func (g *gatedGenerator) GenerateRecipes(ctx context.Context, ingredients []string, prefs *outbound.Preferences) ([]recipe.Recipe, error) {
	key := ingredients[0]
	g.entered <- key
	select {
	case <-g.release[key]:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []recipe.Recipe{{ID: key, Name: key}}, nil
}
