package apiclient

import (
	"context"

	"github.com/alchemorsel/pantry/internal/domain/user"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	apperrors "github.com/alchemorsel/pantry/pkg/errors"
)

// Authentication

// Login authenticates a user with the API
func (c *Client) Login(ctx context.Context, req outbound.LoginRequest) (*outbound.AuthResult, error) {
	var resp outbound.AuthResult
	if err := c.post(ctx, c.authURL+"/login", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, apperrors.NewDecodeError("login response", errMissingToken)
	}
	return &resp, nil
}

// Signup creates a new user account
func (c *Client) Signup(ctx context.Context, req outbound.SignupRequest) (*outbound.AuthResult, error) {
	var resp outbound.AuthResult
	if err := c.post(ctx, c.authURL+"/signup", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, apperrors.NewDecodeError("signup response", errMissingToken)
	}
	return &resp, nil
}

// Profile

// Me gets the current user's profile
func (c *Client) Me(ctx context.Context, token string) (*user.User, error) {
	var resp user.User
	if err := c.getWithAuth(ctx, c.authURL+"/me", token, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile updates the editable profile fields
func (c *Client) UpdateProfile(ctx context.Context, token string, update user.ProfileUpdate) (*user.User, error) {
	var resp user.User
	if err := c.putWithAuth(ctx, c.authURL+"/me", token, update, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateFavorites replaces the favorite recipe ids
func (c *Client) UpdateFavorites(ctx context.Context, token string, recipeIDs []string) ([]string, error) {
	var resp struct {
		Favorites []string `json:"favorites"`
	}
	body := map[string][]string{"favorites": nonNil(recipeIDs)}
	if err := c.putWithAuth(ctx, c.authURL+"/me/favorites", token, body, &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

// UpdateAllergies replaces the allergy list
func (c *Client) UpdateAllergies(ctx context.Context, token string, allergies []string) ([]string, error) {
	var resp struct {
		Allergies []string `json:"allergies"`
	}
	body := map[string][]string{"allergies": nonNil(allergies)}
	if err := c.putWithAuth(ctx, c.authURL+"/me/allergies", token, body, &resp); err != nil {
		return nil, err
	}
	return resp.Allergies, nil
}

// UpdateDietaryRestrictions replaces the dietary restrictions
func (c *Client) UpdateDietaryRestrictions(ctx context.Context, token string, restrictions []user.DietaryRestriction) ([]user.DietaryRestriction, error) {
	var resp struct {
		DietaryRestrictions []user.DietaryRestriction `json:"dietary_restrictions"`
	}
	if restrictions == nil {
		restrictions = []user.DietaryRestriction{}
	}
	body := map[string][]user.DietaryRestriction{"dietary_restrictions": restrictions}
	if err := c.putWithAuth(ctx, c.authURL+"/me/dietary-restrictions", token, body, &resp); err != nil {
		return nil, err
	}
	return resp.DietaryRestrictions, nil
}

// UpdateBannedIngredients replaces the banned ingredient list
func (c *Client) UpdateBannedIngredients(ctx context.Context, token string, ingredients []string) ([]string, error) {
	var resp struct {
		BannedIngredients []string `json:"banned_ingredients"`
	}
	body := map[string][]string{"banned_ingredients": nonNil(ingredients)}
	if err := c.putWithAuth(ctx, c.authURL+"/me/banned-ingredients", token, body, &resp); err != nil {
		return nil, err
	}
	return resp.BannedIngredients, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

var (
	_ outbound.AuthAPI    = (*Client)(nil)
	_ outbound.ProfileAPI = (*Client)(nil)
)
