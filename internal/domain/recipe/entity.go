// Package recipe contains the core domain model for generated recipes:
// the normalized Recipe, its ingredients and steps, the payload normalizer
// for server responses and the adapter for the legacy seed dataset.
package recipe

import (
	"sort"
	"strings"
)

const (
	// DefaultCookingTime is used when the server omits cooking_time (minutes)
	DefaultCookingTime = 30

	// DefaultServings is used when the server omits servings
	DefaultServings = 4
)

// Recipe represents a normalized recipe. Once built it is treated as
// immutable; stores hand out copies made with Clone.
type Recipe struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	Ingredients     []Ingredient `json:"ingredients"`
	Steps           []Step       `json:"steps"`
	CookingTime     int          `json:"cooking_time"`
	Servings        int          `json:"servings"`
	Difficulty      Difficulty   `json:"difficulty"`
	Image           string       `json:"image,omitempty"`
	DietaryInfo     []string     `json:"dietary_info"`
	Substitution    string       `json:"sustitucion,omitempty"`
	Personalization string       `json:"personalizacion,omitempty"`
}

// Validate checks the recipe invariants
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrRecipeNameRequired
	}
	if len(r.Ingredients) == 0 {
		return ErrNoIngredients
	}
	if len(r.Steps) == 0 {
		return ErrNoSteps
	}
	for _, ingredient := range r.Ingredients {
		if err := ingredient.Validate(); err != nil {
			return err
		}
	}
	for _, step := range r.Steps {
		if err := step.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplyDefaults fills cooking time, servings and the slices that must never
// be nil in the JSON form.
func (r *Recipe) ApplyDefaults() {
	if r.CookingTime <= 0 {
		r.CookingTime = DefaultCookingTime
	}
	if r.Servings <= 0 {
		r.Servings = DefaultServings
	}
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	if r.Steps == nil {
		r.Steps = []Step{}
	}
	if r.DietaryInfo == nil {
		r.DietaryInfo = []string{}
	}
}

// Clone returns a deep copy of the recipe
func (r Recipe) Clone() Recipe {
	clone := r
	clone.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	clone.DietaryInfo = append([]string(nil), r.DietaryInfo...)
	clone.Steps = make([]Step, len(r.Steps))
	for i, step := range r.Steps {
		clone.Steps[i] = step
		if step.Time != nil {
			t := *step.Time
			clone.Steps[i].Time = &t
		}
	}
	return clone
}

// IngredientNames returns the lowercased names of the recipe ingredients
func (r Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ingredient := range r.Ingredients {
		names = append(names, strings.ToLower(strings.TrimSpace(ingredient.Name.String())))
	}
	return names
}

// SortSteps orders steps ascending by Order. Steps sharing an order keep
// their arrival order.
func SortSteps(steps []Step) {
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})
}

// CloneAll deep-copies a recipe collection
func CloneAll(recipes []Recipe) []Recipe {
	if recipes == nil {
		return nil
	}
	out := make([]Recipe, len(recipes))
	for i, r := range recipes {
		out[i] = r.Clone()
	}
	return out
}
