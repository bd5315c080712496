// Package security provides input validation for user-supplied payloads and
// the JWT helpers shared by the session store and the stub backend
package security

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/alchemorsel/pantry/pkg/errors"
)

// ValidationService provides input validation
type ValidationService struct {
	logger    *zap.Logger
	validator *validator.Validate
}

// NewValidationService creates a new validation service
func NewValidationService(logger *zap.Logger) *ValidationService {
	validate := validator.New()

	// Register custom validation rules
	validate.RegisterValidation("ingredient", validateIngredient)

	return &ValidationService{
		logger:    logger.Named("validation"),
		validator: validate,
	}
}

// Validate validates a struct and returns a validation AppError whose
// message describes the first failing field
func (v *ValidationService) Validate(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("The submitted data is invalid.").WithCause(err)
	}

	fields := make([]apperrors.ValidationError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, apperrors.ValidationError{
			Field:   e.Field(),
			Value:   e.Value(),
			Tag:     e.Tag(),
			Message: fieldMessage(e),
		})
	}

	v.logger.Debug("Validation failed", zap.Int("fields", len(fields)), zap.String("first", fields[0].Field))
	return apperrors.NewValidationErrors(fields)
}

// ValidateIngredient checks a single ingredient name
func (v *ValidationService) ValidateIngredient(name string) error {
	if err := v.validator.Var(name, "required,ingredient"); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("%q is not a valid ingredient name.", name))
	}
	return nil
}

func fieldMessage(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL.", field)
	case "ingredient":
		return "Invalid ingredient name."
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

// validateIngredient validates ingredient names
func validateIngredient(fl validator.FieldLevel) bool {
	ingredient := strings.TrimSpace(fl.Field().String())

	// Check length
	if len(ingredient) < 1 || len(ingredient) > 100 {
		return false
	}

	// Letters, digits, spaces and a little punctuation
	for _, r := range ingredient {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsSpace(r) &&
			r != '-' && r != '\'' && r != '.' && r != ',' {
			return false
		}
	}

	return true
}
