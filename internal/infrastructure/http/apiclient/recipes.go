package apiclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	apperrors "github.com/alchemorsel/pantry/pkg/errors"
)

// DefaultMinIngredients is the fewest ingredients a generation request may carry
const DefaultMinIngredients = 2

var errMissingToken = errors.New("response carries no token")

// RecipeClient calls the recipe generation endpoint. The bearer token is
// read from its TokenSource each time a request is built.
type RecipeClient struct {
	client         *Client
	tokens         outbound.TokenSource
	icons          recipe.IconLookup
	minIngredients int
	logger         *zap.Logger
}

// NewRecipeClient creates a recipe client on top of the shared API client
func NewRecipeClient(client *Client, tokens outbound.TokenSource, icons recipe.IconLookup, minIngredients int) *RecipeClient {
	if minIngredients < 1 {
		minIngredients = DefaultMinIngredients
	}
	return &RecipeClient{
		client:         client,
		tokens:         tokens,
		icons:          icons,
		minIngredients: minIngredients,
		logger:         client.logger.Named("recipes"),
	}
}

type generateRequest struct {
	Ingredients []string              `json:"ingredients"`
	Preferences *outbound.Preferences `json:"preferences,omitempty"`
}

type generateResponse struct {
	Recipes        []recipe.RawRecipe `json:"recipes"`
	Total          int                `json:"total"`
	GenerationTime recipe.FlexString  `json:"generation_time"`
}

// NormalizeIngredients trims and lowercases names, dropping blanks and
// duplicates while keeping the first occurrence order
func NormalizeIngredients(names []string) []string {
	normalized := lo.FilterMap(names, func(name string, _ int) (string, bool) {
		n := strings.ToLower(strings.TrimSpace(name))
		return n, n != ""
	})
	return lo.Uniq(normalized)
}

// GenerateRecipes asks the server for recipes using the given ingredients
func (r *RecipeClient) GenerateRecipes(ctx context.Context, ingredients []string, prefs *outbound.Preferences) ([]recipe.Recipe, error) {
	ctx, span := monitoring.Tracer().Start(ctx, "recipes.generate")
	defer span.End()

	names := NormalizeIngredients(ingredients)
	span.SetAttributes(attribute.Int("pantry.ingredients", len(names)))

	if len(names) < r.minIngredients {
		err := apperrors.NewValidationError(fmt.Sprintf("Select at least %d ingredients to search for recipes.", r.minIngredients))
		span.SetStatus(codes.Error, "validation")
		return nil, err
	}

	token, err := r.token(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "unauthenticated")
		return nil, err
	}

	var resp generateResponse
	req := generateRequest{Ingredients: names, Preferences: prefs}
	if err := r.client.postWithAuth(ctx, r.client.recipesURL+"/generate", token, req, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.UserMessage(err))
		return nil, err
	}

	recipes, stepErr := recipe.NormalizeAll(resp.Recipes, r.icons)
	if stepErr != nil {
		fallbacks := 0
		for _, e := range unwrapJoined(stepErr) {
			fallbacks++
			r.logger.Warn("Recipe step kept as raw text", zap.Error(e))
		}
		r.client.metrics.RecordStepFallbacks(fallbacks)
	}

	r.logger.Debug("Recipes generated",
		zap.Strings("ingredients", names),
		zap.Int("recipes", len(recipes)),
		zap.Int("total", resp.Total),
		zap.String("generation_time", resp.GenerationTime.String()),
	)
	span.SetAttributes(attribute.Int("pantry.recipes", len(recipes)))

	return recipes, nil
}

func (r *RecipeClient) token(ctx context.Context) (string, error) {
	if r.tokens == nil {
		return "", apperrors.NewAuthError("")
	}
	token, err := r.tokens.Token(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeUnauthorized) {
			return "", err
		}
		return "", apperrors.NewAuthError("").WithCause(err)
	}
	if token == "" {
		return "", apperrors.NewAuthError("")
	}
	return token, nil
}

func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

var _ outbound.RecipeGenerator = (*RecipeClient)(nil)
