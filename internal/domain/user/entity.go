// Package user defines the user domain entity as the client sees it: the
// profile returned by the auth API plus the rules derived from it.
package user

import (
	"strings"
	"time"
)

// User represents the signed-in user's profile
type User struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Email               string               `json:"email"`
	Avatar              string               `json:"avatar,omitempty"`
	SubscriptionStatus  SubscriptionStatus   `json:"subscription_status"`
	Status              AccountStatus        `json:"status"`
	TrialEndDate        string               `json:"trial_end_date,omitempty"`
	Allergies           []string             `json:"allergies"`
	DietaryRestrictions []DietaryRestriction `json:"dietary_restrictions"`
	BannedIngredients   []string             `json:"banned_ingredients"`
	Favorites           []string             `json:"favorites"`
}

// SubscriptionStatus represents the billing plan of a user
type SubscriptionStatus string

const (
	SubscriptionFree    SubscriptionStatus = "free"
	SubscriptionPremium SubscriptionStatus = "premium"
)

// AccountStatus represents the lifecycle status of an account
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusTrial  AccountStatus = "trial"
)

// DietaryRestriction represents dietary restrictions
type DietaryRestriction string

const (
	DietaryRestrictionVegetarian DietaryRestriction = "vegetarian"
	DietaryRestrictionVegan      DietaryRestriction = "vegan"
	DietaryRestrictionGlutenFree DietaryRestriction = "gluten_free"
	DietaryRestrictionDairyFree  DietaryRestriction = "dairy_free"
	DietaryRestrictionKeto       DietaryRestriction = "keto"
)

// Ingredient limits per plan
const (
	MaxIngredientsFree    = 4
	MaxIngredientsPremium = 5
)

var trialDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// TrialEnd parses TrialEndDate. The second result is false when the date is
// missing or unreadable.
func (u *User) TrialEnd() (time.Time, bool) {
	value := strings.TrimSpace(u.TrialEndDate)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range trialDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsPremiumUser reports whether u has premium features at now: either a
// premium subscription or a trial that ends after now.
func IsPremiumUser(u *User, now time.Time) bool {
	if u == nil {
		return false
	}
	if u.SubscriptionStatus == SubscriptionPremium {
		return true
	}
	if u.Status == AccountStatusTrial {
		end, ok := u.TrialEnd()
		return ok && end.After(now)
	}
	return false
}

// MaxIngredients returns how many ingredients u may select for one search
func MaxIngredients(u *User, now time.Time) int {
	if IsPremiumUser(u, now) {
		return MaxIngredientsPremium
	}
	return MaxIngredientsFree
}

// HasDietaryRestriction checks if user has a specific dietary restriction
func (u *User) HasDietaryRestriction(restriction DietaryRestriction) bool {
	for _, r := range u.DietaryRestrictions {
		if r == restriction {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the user
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Allergies = append([]string(nil), u.Allergies...)
	clone.DietaryRestrictions = append([]DietaryRestriction(nil), u.DietaryRestrictions...)
	clone.BannedIngredients = append([]string(nil), u.BannedIngredients...)
	clone.Favorites = append([]string(nil), u.Favorites...)
	return &clone
}

// ProfileUpdate holds the editable profile fields
type ProfileUpdate struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Avatar string `json:"avatar,omitempty" validate:"omitempty,url"`
}
