// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the stores that the application exposes to the CLI and other front ends
package inbound

import (
	"context"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/domain/user"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// ToggleResult reports what a toggle did
type ToggleResult string

// Toggle outcomes
const (
	ToggleAdded   ToggleResult = "added"
	ToggleRemoved ToggleResult = "removed"
)

// SelectionStore holds the ingredients the user currently has on hand.
// Names are trimmed; the set keeps insertion order.
type SelectionStore interface {
	// Commands
	Add(ctx context.Context, name string) bool
	Remove(ctx context.Context, name string) bool
	Toggle(ctx context.Context, name string) ToggleResult
	Clear(ctx context.Context)
	Load(ctx context.Context) error

	// Queries
	Has(name string) bool
	Count() int
	Items() []string
	CanAdd(max int) bool
	Remaining(max int) int
}

// SearchStatus is the lifecycle state of the recipe search
type SearchStatus string

// Search lifecycle states
const (
	SearchIdle    SearchStatus = "idle"
	SearchLoading SearchStatus = "loading"
	SearchSuccess SearchStatus = "success"
	SearchError   SearchStatus = "error"
)

// SearchState is a snapshot of the recipe search store
type SearchState struct {
	Status                  SearchStatus    `json:"status"`
	Recipes                 []recipe.Recipe `json:"recipes"`
	Error                   string          `json:"error,omitempty"`
	LastSearchedIngredients []string        `json:"last_searched_ingredients"`
}

// SearchStore orchestrates recipe generation from the selected ingredients
type SearchStore interface {
	Search(ctx context.Context, ingredients []string) ([]recipe.Recipe, error)
	ClearError()
	State() SearchState
	Load(ctx context.Context) error
}

// SessionState is a snapshot of the session store
type SessionState struct {
	Token           string     `json:"token,omitempty"`
	User            *user.User `json:"user,omitempty"`
	IsAuthenticated bool       `json:"is_authenticated"`
	Error           string     `json:"error,omitempty"`
}

// SessionStore holds the bearer token and the signed-in user's profile
type SessionStore interface {
	outbound.TokenSource

	// Session lifecycle
	Login(ctx context.Context, email, password string) error
	Signup(ctx context.Context, req outbound.SignupRequest) error
	Logout(ctx context.Context)
	Restore(ctx context.Context) error
	VerifyToken(ctx context.Context) bool

	// Profile
	RefreshProfile(ctx context.Context) error
	UpdateProfile(ctx context.Context, update user.ProfileUpdate) error
	UpdateFavorites(ctx context.Context, recipeIDs []string) error
	UpdateAllergies(ctx context.Context, allergies []string) error
	UpdateDietaryRestrictions(ctx context.Context, restrictions []user.DietaryRestriction) error
	UpdateBannedIngredients(ctx context.Context, ingredients []string) error

	// Queries
	State() SessionState
	IsPremium() bool
	MaxIngredients() int
}

// FavoritesStore keeps the user's favorite recipes keyed by recipe id
type FavoritesStore interface {
	Add(ctx context.Context, r recipe.Recipe) bool
	Remove(ctx context.Context, id string) bool
	Toggle(ctx context.Context, r recipe.Recipe) ToggleResult
	Has(id string) bool
	List() []recipe.Recipe
	Load(ctx context.Context) error
	Sync(ctx context.Context) error
}
