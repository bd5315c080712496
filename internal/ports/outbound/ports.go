// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the stores use to reach the API and local storage
package outbound

import (
	"context"
	"errors"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/domain/user"
)

// Keys under which the stores persist their state
const (
	KeySelectedIngredients = "selected_ingredients"
	KeyLastSearchResults   = "last_search_results"
	KeySession             = "session"
	KeyFavorites           = "favorites"
)

// ErrStateNotFound is returned by StateStore.Get for unknown keys
var ErrStateNotFound = errors.New("state not found")

// StateStore persists named blobs of client state
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// TokenSource supplies the bearer token for authenticated calls. It is read
// at request-build time; a missing or expired token is an auth error.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token implements TokenSource
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Preferences narrows recipe generation
type Preferences struct {
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	Allergies           []string `json:"allergies,omitempty"`
	BannedIngredients   []string `json:"banned_ingredients,omitempty"`
	Servings            int      `json:"servings,omitempty"`
	MaxCookingTime      int      `json:"max_cooking_time,omitempty"`
}

// RecipeGenerator generates recipes from a list of ingredients
type RecipeGenerator interface {
	GenerateRecipes(ctx context.Context, ingredients []string, prefs *Preferences) ([]recipe.Recipe, error)
}

// LoginRequest holds sign-in credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignupRequest holds registration data
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// AuthResult is what the auth API returns on login and signup
type AuthResult struct {
	User      *user.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresIn int64      `json:"expires_in"`
	Premium   bool       `json:"premium"`
}

// AuthAPI authenticates users
type AuthAPI interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Signup(ctx context.Context, req SignupRequest) (*AuthResult, error)
}

// ProfileAPI reads and updates the signed-in user's profile. Each call takes
// the bearer token current at call time; each update returns the
// sub-resource as stored by the server.
type ProfileAPI interface {
	Me(ctx context.Context, token string) (*user.User, error)
	UpdateProfile(ctx context.Context, token string, update user.ProfileUpdate) (*user.User, error)
	UpdateFavorites(ctx context.Context, token string, recipeIDs []string) ([]string, error)
	UpdateAllergies(ctx context.Context, token string, allergies []string) ([]string, error)
	UpdateDietaryRestrictions(ctx context.Context, token string, restrictions []user.DietaryRestriction) ([]user.DietaryRestriction, error)
	UpdateBannedIngredients(ctx context.Context, token string, ingredients []string) ([]string, error)
}
