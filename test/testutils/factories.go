// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/domain/user"
	"github.com/alchemorsel/pantry/internal/infrastructure/security"
)

// TestSigningKey signs tokens minted by the factories
var TestSigningKey = []byte("pantry-test-signing-key")

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// Recipe creates a valid normalized recipe using the given ingredient names
func (f *RecipeFactory) Recipe(ingredients ...string) recipe.Recipe {
	if len(ingredients) == 0 {
		ingredients = []string{strings.ToLower(f.faker.Vegetable()), strings.ToLower(f.faker.Fruit())}
	}

	r := recipe.Recipe{
		ID:          uuid.NewString(),
		Name:        f.faker.Dinner(),
		Description: f.faker.Sentence(8),
		CookingTime: f.faker.Number(10, 90),
		Servings:    f.faker.Number(1, 6),
		Difficulty:  recipe.DifficultyEasy,
	}

	units := []string{"g", "ml", "unit", "cup", "tablespoon"}
	for _, name := range ingredients {
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{
			Name:     recipe.FlexString(name),
			Quantity: recipe.FlexString(fmt.Sprint(f.faker.Number(1, 500))),
			Unit:     units[f.faker.Number(0, len(units)-1)],
		})
	}

	steps := f.faker.Number(2, 5)
	for i := 1; i <= steps; i++ {
		r.Steps = append(r.Steps, recipe.Step{Order: i, Text: f.faker.Sentence(6)})
	}

	r.ApplyDefaults()
	return r
}

// Recipes creates n recipes sharing the given ingredients
func (f *RecipeFactory) Recipes(n int, ingredients ...string) []recipe.Recipe {
	out := make([]recipe.Recipe, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.Recipe(ingredients...))
	}
	return out
}

// UserFactory provides methods to create test users
type UserFactory struct {
	faker *gofakeit.Faker
}

// NewUserFactory creates a new user factory with seeded faker
func NewUserFactory(seed int64) *UserFactory {
	return &UserFactory{
		faker: gofakeit.New(seed),
	}
}

// FreeUser creates a user on the free plan
func (f *UserFactory) FreeUser() *user.User {
	return &user.User{
		ID:                 uuid.NewString(),
		Name:               f.faker.Name(),
		Email:              f.faker.Email(),
		SubscriptionStatus: user.SubscriptionFree,
		Status:             user.AccountStatusActive,
	}
}

// PremiumUser creates a user with a premium subscription
func (f *UserFactory) PremiumUser() *user.User {
	u := f.FreeUser()
	u.SubscriptionStatus = user.SubscriptionPremium
	return u
}

// TrialUser creates a user whose trial ends at trialEnd
func (f *UserFactory) TrialUser(trialEnd time.Time) *user.User {
	u := f.FreeUser()
	u.Status = user.AccountStatusTrial
	u.TrialEndDate = trialEnd.UTC().Format(time.RFC3339)
	return u
}

// Password returns a password that passes validation
func (f *UserFactory) Password() string {
	return f.faker.Password(true, true, true, false, false, 12)
}

// Token mints a signed token for u expiring after ttl. A negative ttl yields
// an expired token.
func Token(u *user.User, ttl time.Duration) string {
	token, err := security.IssueToken(TestSigningKey, u.ID, u.Email, u.SubscriptionStatus == user.SubscriptionPremium, ttl, time.Now())
	if err != nil {
		panic(err)
	}
	return token
}
