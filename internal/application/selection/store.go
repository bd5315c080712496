// Package selection provides the ingredient selection store: an ordered set
// of the ingredient names the user has on hand
package selection

import (
	"context"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/application/persist"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// EventSelectionChanged is published after every mutation
const EventSelectionChanged = "selection.changed"

// Selection actions
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
	ActionCleared = "cleared"
	ActionLoaded  = "loaded"
)

// SelectionChangedEvent describes a change to the selection
type SelectionChangedEvent struct {
	shared.BaseEvent
	Action     string   `json:"action"`
	Ingredient string   `json:"ingredient,omitempty"`
	Items      []string `json:"items"`
}

// Store implements inbound.SelectionStore. Capacity is not enforced here;
// callers check CanAdd with the maximum for the current user.
type Store struct {
	mu      sync.RWMutex
	items   []string
	state   outbound.StateStore
	events  shared.EventDispatcher
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewStore creates a selection store. state, events and metrics may be nil.
func NewStore(state outbound.StateStore, events shared.EventDispatcher, metrics *monitoring.Metrics, logger *zap.Logger) *Store {
	return &Store{
		items:   []string{},
		state:   state,
		events:  events,
		metrics: metrics,
		logger:  logger.Named("selection-store"),
	}
}

func normalize(name string) string {
	return strings.TrimSpace(name)
}

// Add inserts name if absent. It reports whether the selection changed.
func (s *Store) Add(ctx context.Context, name string) bool {
	name = normalize(name)
	if name == "" {
		return false
	}

	s.mu.Lock()
	if lo.Contains(s.items, name) {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items, name)
	items := s.commit(ctx)
	s.mu.Unlock()

	s.publish(ctx, ActionAdded, name, items)
	return true
}

// Remove deletes name if present. It reports whether the selection changed.
func (s *Store) Remove(ctx context.Context, name string) bool {
	name = normalize(name)

	s.mu.Lock()
	if !lo.Contains(s.items, name) {
		s.mu.Unlock()
		return false
	}
	s.items = lo.Without(s.items, name)
	items := s.commit(ctx)
	s.mu.Unlock()

	s.publish(ctx, ActionRemoved, name, items)
	return true
}

// Toggle removes name when selected and adds it otherwise
func (s *Store) Toggle(ctx context.Context, name string) inbound.ToggleResult {
	name = normalize(name)
	if name == "" {
		return ""
	}

	s.mu.Lock()
	result := inbound.ToggleAdded
	action := ActionAdded
	if lo.Contains(s.items, name) {
		s.items = lo.Without(s.items, name)
		result, action = inbound.ToggleRemoved, ActionRemoved
	} else {
		s.items = append(s.items, name)
	}
	items := s.commit(ctx)
	s.mu.Unlock()

	s.publish(ctx, action, name, items)
	return result
}

// Clear empties the selection
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = []string{}
	items := s.commit(ctx)
	s.mu.Unlock()

	s.publish(ctx, ActionCleared, "", items)
}

// Load rehydrates the selection from the state store
func (s *Store) Load(ctx context.Context) error {
	var stored []string
	found, err := persist.Load(ctx, s.state, outbound.KeySelectedIngredients, &stored)
	if err != nil {
		s.logger.Warn("Failed to load selection", zap.Error(err))
		return err
	}
	if !found {
		return nil
	}

	cleaned := lo.Uniq(lo.FilterMap(stored, func(name string, _ int) (string, bool) {
		n := normalize(name)
		return n, n != ""
	}))

	s.mu.Lock()
	s.items = cleaned
	items := append([]string(nil), s.items...)
	s.mu.Unlock()

	s.metrics.SetSelectionSize(len(items))
	s.logger.Debug("Selection loaded", zap.Int("count", len(items)))
	s.publish(ctx, ActionLoaded, "", items)
	return nil
}

// Has reports whether name is selected
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Contains(s.items, normalize(name))
}

// Count returns the number of selected ingredients
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Items returns a copy of the selection in insertion order
func (s *Store) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.items...)
}

// CanAdd reports whether another ingredient fits under max
func (s *Store) CanAdd(max int) bool {
	return s.Remaining(max) > 0
}

// Remaining returns how many more ingredients fit under max
func (s *Store) Remaining(max int) int {
	remaining := max - s.Count()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// commit persists the selection and returns a copy of it. Callers hold s.mu.
func (s *Store) commit(ctx context.Context) []string {
	items := append([]string{}, s.items...)
	persist.Save(ctx, s.state, outbound.KeySelectedIngredients, items, s.logger)
	s.metrics.SetSelectionSize(len(items))
	return items
}

func (s *Store) publish(ctx context.Context, action, ingredient string, items []string) {
	shared.Publish(ctx, s.events, SelectionChangedEvent{
		BaseEvent:  shared.NewBaseEvent(EventSelectionChanged),
		Action:     action,
		Ingredient: ingredient,
		Items:      items,
	})
}

var _ inbound.SelectionStore = (*Store)(nil)
