package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPremiumUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"Premium", &User{SubscriptionStatus: SubscriptionPremium}, true},
		{"TrialEndingInFuture", &User{Status: AccountStatusTrial, TrialEndDate: "2025-06-02T00:00:00Z"}, true},
		{"TrialDateOnlyInFuture", &User{Status: AccountStatusTrial, TrialEndDate: "2025-07-01"}, true},
		{"TrialEndedInPast", &User{Status: AccountStatusTrial, TrialEndDate: "2025-05-31T23:59:59Z"}, false},
		{"TrialWithoutDate", &User{Status: AccountStatusTrial}, false},
		{"TrialWithGarbageDate", &User{Status: AccountStatusTrial, TrialEndDate: "soon"}, false},
		{"Free", &User{SubscriptionStatus: SubscriptionFree, Status: AccountStatusActive}, false},
		{"NilUser", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPremiumUser(tt.user, now))
		})
	}
}

func TestMaxIngredients(t *testing.T) {
	now := time.Now()

	assert.Equal(t, MaxIngredientsFree, MaxIngredients(nil, now))
	assert.Equal(t, MaxIngredientsFree, MaxIngredients(&User{}, now))
	assert.Equal(t, MaxIngredientsPremium, MaxIngredients(&User{SubscriptionStatus: SubscriptionPremium}, now))
}

func TestUser_Clone(t *testing.T) {
	original := &User{ID: "u1", Allergies: []string{"nuts"}, Favorites: []string{"r1"}}

	clone := original.Clone()
	clone.Allergies[0] = "milk"
	clone.Favorites = append(clone.Favorites, "r2")

	require.NotSame(t, original, clone)
	assert.Equal(t, []string{"nuts"}, original.Allergies)
	assert.Equal(t, []string{"r1"}, original.Favorites)
	assert.Nil(t, (*User)(nil).Clone())
}

func TestUser_HasDietaryRestriction(t *testing.T) {
	u := &User{DietaryRestrictions: []DietaryRestriction{DietaryRestrictionVegan}}

	assert.True(t, u.HasDietaryRestriction(DietaryRestrictionVegan))
	assert.False(t, u.HasDietaryRestriction(DietaryRestrictionKeto))
}
