// Package favorites keeps the user's favorite recipes, locally persisted and
// pushed to the profile when a session is active
package favorites

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/application/persist"
	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	apperrors "github.com/alchemorsel/pantry/pkg/errors"
)

// EventFavoritesChanged is published after every mutation
const EventFavoritesChanged = "favorites.changed"

// FavoritesChangedEvent describes a change to the favorites
type FavoritesChangedEvent struct {
	shared.BaseEvent
	RecipeID string `json:"recipe_id"`
	Added    bool   `json:"added"`
}

// Syncer pushes favorite ids to the user's profile
type Syncer interface {
	State() inbound.SessionState
	UpdateFavorites(ctx context.Context, recipeIDs []string) error
}

// Store implements inbound.FavoritesStore
type Store struct {
	mu      sync.RWMutex
	recipes []recipe.Recipe

	syncer Syncer
	state  outbound.StateStore
	events shared.EventDispatcher
	logger *zap.Logger
}

// NewStore creates a favorites store. syncer, state and events may be nil.
func NewStore(syncer Syncer, state outbound.StateStore, events shared.EventDispatcher, logger *zap.Logger) *Store {
	return &Store{
		recipes: []recipe.Recipe{},
		syncer:  syncer,
		state:   state,
		events:  events,
		logger:  logger.Named("favorites-store"),
	}
}

// Add stores r unless a recipe with the same id is already a favorite
func (s *Store) Add(ctx context.Context, r recipe.Recipe) bool {
	if r.ID == "" {
		return false
	}

	s.mu.Lock()
	if s.indexOf(r.ID) >= 0 {
		s.mu.Unlock()
		return false
	}
	s.recipes = append(s.recipes, r.Clone())
	s.commit(ctx)
	s.mu.Unlock()

	s.publish(ctx, r.ID, true)
	return true
}

// Remove drops the favorite with the given id
func (s *Store) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
	s.commit(ctx)
	s.mu.Unlock()

	s.publish(ctx, id, false)
	return true
}

// Toggle removes r when it is a favorite and adds it otherwise
func (s *Store) Toggle(ctx context.Context, r recipe.Recipe) inbound.ToggleResult {
	if r.ID == "" {
		return ""
	}

	s.mu.Lock()
	result := inbound.ToggleAdded
	if i := s.indexOf(r.ID); i >= 0 {
		s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
		result = inbound.ToggleRemoved
	} else {
		s.recipes = append(s.recipes, r.Clone())
	}
	s.commit(ctx)
	s.mu.Unlock()

	s.publish(ctx, r.ID, result == inbound.ToggleAdded)
	return result
}

// Has reports whether the recipe id is a favorite
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// List returns a copy of the favorites in insertion order
func (s *Store) List() []recipe.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := recipe.CloneAll(s.recipes)
	if out == nil {
		out = []recipe.Recipe{}
	}
	return out
}

// IDs returns the favorite recipe ids in insertion order
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.recipes, func(r recipe.Recipe, _ int) string { return r.ID })
}

// Load rehydrates the favorites from the state store
func (s *Store) Load(ctx context.Context) error {
	var stored []recipe.Recipe
	found, err := persist.Load(ctx, s.state, outbound.KeyFavorites, &stored)
	if err != nil {
		s.logger.Warn("Failed to load favorites", zap.Error(err))
		return err
	}
	if !found {
		return nil
	}

	unique := lo.UniqBy(lo.Filter(stored, func(r recipe.Recipe, _ int) bool { return r.ID != "" }),
		func(r recipe.Recipe) string { return r.ID })

	s.mu.Lock()
	s.recipes = unique
	s.mu.Unlock()

	s.logger.Debug("Favorites loaded", zap.Int("count", len(unique)))
	return nil
}

// Sync pushes the favorite ids to the profile. It does nothing without an
// authenticated session.
func (s *Store) Sync(ctx context.Context) error {
	if s.syncer == nil || !s.syncer.State().IsAuthenticated {
		return nil
	}

	ids := s.IDs()
	if err := s.syncer.UpdateFavorites(ctx, ids); err != nil {
		s.logger.Warn("Failed to sync favorites", zap.Int("count", len(ids)), zap.Error(err))
		return apperrors.Wrap(err, "Could not save your favorites. Please try again.")
	}

	s.logger.Debug("Favorites synced", zap.Int("count", len(ids)))
	return nil
}

func (s *Store) indexOf(id string) int {
	_, i, found := lo.FindIndexOf(s.recipes, func(r recipe.Recipe) bool { return r.ID == id })
	if !found {
		return -1
	}
	return i
}

// commit persists the favorites. Callers hold s.mu.
func (s *Store) commit(ctx context.Context) {
	persist.Save(ctx, s.state, outbound.KeyFavorites, s.recipes, s.logger)
}

func (s *Store) publish(ctx context.Context, id string, added bool) {
	shared.Publish(ctx, s.events, FavoritesChangedEvent{
		BaseEvent: shared.NewBaseEvent(EventFavoritesChanged),
		RecipeID:  id,
		Added:     added,
	})
}

var _ inbound.FavoritesStore = (*Store)(nil)
