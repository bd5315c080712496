// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	apperrors "github.com/alchemorsel/pantry/pkg/errors"
)

// AssertAppError asserts that err is an *AppError with the given code and
// returns it
func AssertAppError(t *testing.T, err error, code apperrors.ErrorCode, msgAndArgs ...interface{}) *apperrors.AppError {
	t.Helper()

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr, msgAndArgs...)
	assert.Equal(t, code, appErr.Code, msgAndArgs...)
	assert.NotEmpty(t, appErr.Message, "AppError should carry a displayable message")
	return appErr
}

// AssertStepsSorted asserts that every recipe has its steps in ascending order
func AssertStepsSorted(t *testing.T, recipes []recipe.Recipe) {
	t.Helper()

	for _, r := range recipes {
		for i := 1; i < len(r.Steps); i++ {
			assert.LessOrEqual(t, r.Steps[i-1].Order, r.Steps[i].Order, "steps of %q should be sorted", r.Name)
		}
	}
}
