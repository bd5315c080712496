package recipe

import (
	"errors"
	"fmt"
)

// Domain errors for recipe operations

var (
	// Entity validation errors
	ErrRecipeNameRequired     = errors.New("recipe name is required")
	ErrNoIngredients          = errors.New("recipe must have at least one ingredient")
	ErrNoSteps                = errors.New("recipe must have at least one step")
	ErrIngredientNameRequired = errors.New("ingredient name is required")
	ErrInvalidStepOrder       = errors.New("step order must be at least 1")
	ErrStepTextRequired       = errors.New("step text is required")

	// Lookup errors
	ErrRecipeNotFound = errors.New("recipe not found")
)

// StepDecodeError reports a step payload that could not be decoded and was
// kept as raw text instead.
type StepDecodeError struct {
	RecipeID string
	Position int
	Raw      string
	Err      error
}

func (e *StepDecodeError) Error() string {
	return fmt.Sprintf("recipe %s: step %d kept as raw text: %v", e.RecipeID, e.Position, e.Err)
}

func (e *StepDecodeError) Unwrap() error {
	return e.Err
}
