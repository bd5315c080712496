// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/domain/user"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// MockRecipeGenerator provides a mock implementation of RecipeGenerator
type MockRecipeGenerator struct {
	mock.Mock
}

// GenerateRecipes generates recipes
func (m *MockRecipeGenerator) GenerateRecipes(ctx context.Context, ingredients []string, prefs *outbound.Preferences) ([]recipe.Recipe, error) {
	args := m.Called(ctx, ingredients, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recipe.Recipe), args.Error(1)
}

// MockAuthAPI provides a mock implementation of AuthAPI
type MockAuthAPI struct {
	mock.Mock
}

// Login authenticates a user
func (m *MockAuthAPI) Login(ctx context.Context, req outbound.LoginRequest) (*outbound.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.AuthResult), args.Error(1)
}

// Signup registers a user
func (m *MockAuthAPI) Signup(ctx context.Context, req outbound.SignupRequest) (*outbound.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.AuthResult), args.Error(1)
}

// MockProfileAPI provides a mock implementation of ProfileAPI
type MockProfileAPI struct {
	mock.Mock
}

// Me gets the current user's profile
func (m *MockProfileAPI) Me(ctx context.Context, token string) (*user.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// UpdateProfile updates the profile
func (m *MockProfileAPI) UpdateProfile(ctx context.Context, token string, update user.ProfileUpdate) (*user.User, error) {
	args := m.Called(ctx, token, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// UpdateFavorites replaces the favorites
func (m *MockProfileAPI) UpdateFavorites(ctx context.Context, token string, recipeIDs []string) ([]string, error) {
	args := m.Called(ctx, token, recipeIDs)
	return stringsArg(args, 0), args.Error(1)
}

// UpdateAllergies replaces the allergies
func (m *MockProfileAPI) UpdateAllergies(ctx context.Context, token string, allergies []string) ([]string, error) {
	args := m.Called(ctx, token, allergies)
	return stringsArg(args, 0), args.Error(1)
}

// UpdateDietaryRestrictions replaces the dietary restrictions
func (m *MockProfileAPI) UpdateDietaryRestrictions(ctx context.Context, token string, restrictions []user.DietaryRestriction) ([]user.DietaryRestriction, error) {
	args := m.Called(ctx, token, restrictions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.DietaryRestriction), args.Error(1)
}

// UpdateBannedIngredients replaces the banned ingredients
func (m *MockProfileAPI) UpdateBannedIngredients(ctx context.Context, token string, ingredients []string) ([]string, error) {
	args := m.Called(ctx, token, ingredients)
	return stringsArg(args, 0), args.Error(1)
}

func stringsArg(args mock.Arguments, index int) []string {
	if args.Get(index) == nil {
		return nil
	}
	return args.Get(index).([]string)
}

// MockStateStore provides a mock implementation of StateStore
type MockStateStore struct {
	mock.Mock
}

// Get retrieves a value
func (m *MockStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Set stores a value
func (m *MockStateStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Delete removes a value
func (m *MockStateStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// EventRecorder is an EventDispatcher that keeps every dispatched event
type EventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// NewEventRecorder creates an empty recorder
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// Dispatch records the event
func (r *EventRecorder) Dispatch(ctx context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Register is a no-op
func (r *EventRecorder) Register(eventName string, handler shared.EventHandler) {}

// Events returns the recorded events
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.DomainEvent(nil), r.events...)
}

// Names returns the names of the recorded events in order
func (r *EventRecorder) Names() []string {
	events := r.Events()
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.EventName())
	}
	return names
}

var (
	_ outbound.RecipeGenerator = (*MockRecipeGenerator)(nil)
	_ outbound.AuthAPI         = (*MockAuthAPI)(nil)
	_ outbound.ProfileAPI      = (*MockProfileAPI)(nil)
	_ outbound.StateStore      = (*MockStateStore)(nil)
	_ shared.EventDispatcher   = (*EventRecorder)(nil)
)
