// Package search provides the recipe search store. It owns the search
// lifecycle (idle, loading, success, error) and the last results.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/application/persist"
	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	apperrors "github.com/alchemorsel/pantry/pkg/errors"
)

// MinIngredients is the fewest ingredients a search accepts
const MinIngredients = 2

// Event names
const (
	EventSearchStarted   = "search.started"
	EventSearchSucceeded = "search.succeeded"
	EventSearchFailed    = "search.failed"
)

// SearchStartedEvent is published when a search is issued
type SearchStartedEvent struct {
	shared.BaseEvent
	Sequence    uint64   `json:"sequence"`
	Ingredients []string `json:"ingredients"`
}

// SearchSucceededEvent is published when the current search returns recipes
type SearchSucceededEvent struct {
	shared.BaseEvent
	Sequence uint64        `json:"sequence"`
	Recipes  int           `json:"recipes"`
	Duration time.Duration `json:"duration"`
}

// SearchFailedEvent is published when the current search fails
type SearchFailedEvent struct {
	shared.BaseEvent
	Sequence uint64 `json:"sequence"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// PreferencesFunc supplies generation preferences at search time
type PreferencesFunc func() *outbound.Preferences

// Options holds the optional collaborators of a Store
type Options struct {
	Selection      inbound.SelectionStore
	State          outbound.StateStore
	Events         shared.EventDispatcher
	Metrics        *monitoring.Metrics
	Preferences    PreferencesFunc
	MinIngredients int

	// OnUnauthorized runs when the server rejects the session token
	OnUnauthorized func(ctx context.Context)
}

// persistedResults is what the store writes under last_search_results
type persistedResults struct {
	Ingredients []string        `json:"ingredients"`
	Recipes     []recipe.Recipe `json:"recipes"`
	SearchedAt  time.Time       `json:"searched_at"`
}

// Store implements inbound.SearchStore. Every search gets a sequence number;
// a response is applied only if no newer search was issued meanwhile.
type Store struct {
	mu    sync.RWMutex
	state inbound.SearchState
	seq   uint64

	generator      outbound.RecipeGenerator
	selection      inbound.SelectionStore
	stateStore     outbound.StateStore
	events         shared.EventDispatcher
	metrics        *monitoring.Metrics
	preferences    PreferencesFunc
	minIngredients int
	onUnauthorized func(ctx context.Context)
	logger         *zap.Logger
}

// NewStore creates a search store on top of a recipe generator
func NewStore(generator outbound.RecipeGenerator, opts Options, logger *zap.Logger) *Store {
	minIngredients := opts.MinIngredients
	if minIngredients < 1 {
		minIngredients = MinIngredients
	}

	return &Store{
		state: inbound.SearchState{
			Status:                  inbound.SearchIdle,
			Recipes:                 []recipe.Recipe{},
			LastSearchedIngredients: []string{},
		},
		generator:      generator,
		selection:      opts.Selection,
		stateStore:     opts.State,
		events:         opts.Events,
		metrics:        opts.Metrics,
		preferences:    opts.Preferences,
		minIngredients: minIngredients,
		onUnauthorized: opts.OnUnauthorized,
		logger:         logger.Named("search-store"),
	}
}

// Search generates recipes for ingredients. The outcome is recorded in the
// store state; the returned error is the typed failure of this call.
func (s *Store) Search(ctx context.Context, ingredients []string) ([]recipe.Recipe, error) {
	requested := append([]string{}, ingredients...)

	if len(requested) < s.minIngredients {
		err := apperrors.NewValidationError(fmt.Sprintf("Select at least %d ingredients to search for recipes.", s.minIngredients))

		s.mu.Lock()
		s.seq++
		seq := s.seq
		s.state.Status = inbound.SearchError
		s.state.Recipes = []recipe.Recipe{}
		s.state.Error = err.Message
		s.mu.Unlock()

		s.metrics.RecordSearch(monitoring.OutcomeValidation, 0, 0)
		s.publishFailure(ctx, seq, err)
		return nil, err
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.state.Status = inbound.SearchLoading
	s.state.Error = ""
	s.state.LastSearchedIngredients = requested
	s.mu.Unlock()

	s.logger.Info("Searching recipes", zap.Uint64("sequence", seq), zap.Strings("ingredients", requested))
	shared.Publish(ctx, s.events, SearchStartedEvent{
		BaseEvent:   shared.NewBaseEvent(EventSearchStarted),
		Sequence:    seq,
		Ingredients: append([]string{}, requested...),
	})

	var prefs *outbound.Preferences
	if s.preferences != nil {
		prefs = s.preferences()
	}

	start := time.Now()
	recipes, err := s.generator.GenerateRecipes(ctx, requested, prefs)
	duration := time.Since(start)

	if err != nil {
		appErr := apperrors.Wrap(err, "Recipe search failed. Please try again.")
		if appErr.Code == apperrors.CodeUnauthorized && s.onUnauthorized != nil {
			s.onUnauthorized(ctx)
		}
		if !s.apply(seq, func(st *inbound.SearchState) {
			st.Status = inbound.SearchError
			st.Recipes = []recipe.Recipe{}
			st.Error = appErr.Message
		}) {
			return nil, appErr
		}

		s.logger.Warn("Recipe search failed",
			zap.Uint64("sequence", seq),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
		s.metrics.RecordSearch(monitoring.OutcomeError, duration, 0)
		s.publishFailure(ctx, seq, appErr)
		return nil, appErr
	}

	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	if !s.apply(seq, func(st *inbound.SearchState) {
		st.Status = inbound.SearchSuccess
		st.Recipes = recipe.CloneAll(recipes)
		st.Error = ""
	}) {
		return recipes, nil
	}

	s.logger.Info("Recipe search succeeded",
		zap.Uint64("sequence", seq),
		zap.Int("recipes", len(recipes)),
		zap.Duration("duration", duration),
	)
	s.metrics.RecordSearch(monitoring.OutcomeSuccess, duration, len(recipes))

	persist.Save(ctx, s.stateStore, outbound.KeyLastSearchResults, persistedResults{
		Ingredients: requested,
		Recipes:     recipes,
		SearchedAt:  time.Now().UTC(),
	}, s.logger)

	if s.selection != nil {
		s.selection.Clear(ctx)
	}

	shared.Publish(ctx, s.events, SearchSucceededEvent{
		BaseEvent: shared.NewBaseEvent(EventSearchSucceeded),
		Sequence:  seq,
		Recipes:   len(recipes),
		Duration:  duration,
	})
	return recipes, nil
}

// apply runs mutate under the lock if seq is still the latest search. It
// reports whether the mutation was applied.
func (s *Store) apply(seq uint64, mutate func(*inbound.SearchState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.logger.Debug("Discarding stale search response",
			zap.Uint64("sequence", seq),
			zap.Uint64("latest", s.seq),
		)
		s.metrics.RecordSearch(monitoring.OutcomeStale, 0, 0)
		return false
	}

	mutate(&s.state)
	return true
}

// ClearError clears the error message, leaving status and recipes alone
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

// State returns a snapshot of the store state
func (s *Store) State() inbound.SearchState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return inbound.SearchState{
		Status:                  s.state.Status,
		Recipes:                 recipe.CloneAll(s.state.Recipes),
		Error:                   s.state.Error,
		LastSearchedIngredients: append([]string{}, s.state.LastSearchedIngredients...),
	}
}

// Load rehydrates the last successful search. A search issued before Load
// completes takes precedence.
func (s *Store) Load(ctx context.Context) error {
	var stored persistedResults
	found, err := persist.Load(ctx, s.stateStore, outbound.KeyLastSearchResults, &stored)
	if err != nil {
		s.logger.Warn("Failed to load last search results", zap.Error(err))
		return err
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != 0 {
		return nil
	}
	if stored.Recipes == nil {
		stored.Recipes = []recipe.Recipe{}
	}
	if stored.Ingredients == nil {
		stored.Ingredients = []string{}
	}
	s.state = inbound.SearchState{
		Status:                  inbound.SearchSuccess,
		Recipes:                 stored.Recipes,
		LastSearchedIngredients: stored.Ingredients,
	}

	s.logger.Debug("Last search results loaded", zap.Int("recipes", len(stored.Recipes)))
	return nil
}

func (s *Store) publishFailure(ctx context.Context, seq uint64, err *apperrors.AppError) {
	shared.Publish(ctx, s.events, SearchFailedEvent{
		BaseEvent: shared.NewBaseEvent(EventSearchFailed),
		Sequence:  seq,
		Code:      string(err.Code),
		Message:   err.Message,
	})
}

var _ inbound.SearchStore = (*Store)(nil)
