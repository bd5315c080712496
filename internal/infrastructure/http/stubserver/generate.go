package stubserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

type generateRequest struct {
	Ingredients []string              `json:"ingredients"`
	Preferences *outbound.Preferences `json:"preferences,omitempty"`
}

// wireRecipe is a recipe in the shape the generation endpoint sends: steps
// are JSON-encoded strings and ingredients carry an empty icon.
type wireRecipe struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
	Steps       []string            `json:"steps"`
	CookingTime int                 `json:"cooking_time"`
	Servings    int                 `json:"servings"`
	Difficulty  recipe.Difficulty   `json:"difficulty"`
	DietaryInfo []string            `json:"dietary_info"`
}

type generateResponse struct {
	Recipes        []wireRecipe `json:"recipes"`
	Total          int          `json:"total"`
	GenerationTime string       `json:"generation_time"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	start := time.Now()

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	names := lo.Uniq(lo.FilterMap(req.Ingredients, func(name string, _ int) (string, bool) {
		name = strings.ToLower(strings.TrimSpace(name))
		return name, name != ""
	}))
	if len(names) < s.opts.MinIngredients {
		fail(c, http.StatusBadRequest, fmt.Sprintf("At least %d ingredients are required", s.opts.MinIngredients))
		return
	}

	recipes := generate(names, req.Preferences, s.opts.RecipesPerCall)
	wire := lo.Map(recipes, func(r recipe.Recipe, _ int) wireRecipe {
		return toWire(r)
	})

	ok(c, generateResponse{
		Recipes:        wire,
		Total:          len(wire),
		GenerationTime: fmt.Sprintf("%.3fs", time.Since(start).Seconds()),
	})
}

// generate picks seed recipes that use at least one of the requested
// ingredients, dropping those that contain an excluded ingredient, and
// fills the rest of the quota with synthesized recipes.
func generate(names []string, prefs *outbound.Preferences, count int) []recipe.Recipe {
	var excluded []string
	if prefs != nil {
		excluded = lo.Map(append(append([]string(nil), prefs.Allergies...), prefs.BannedIngredients...), func(s string, _ int) string {
			return strings.ToLower(strings.TrimSpace(s))
		})
	}

	matches := lo.Filter(recipe.SeedNormalized(), func(r recipe.Recipe, _ int) bool {
		used := r.IngredientNames()
		return lo.Some(used, names) && !lo.Some(used, excluded)
	})

	out := lo.Slice(matches, 0, count)
	for i := len(out); i < count; i++ {
		out = append(out, synthesize(names, i+1))
	}

	if prefs != nil && prefs.Servings > 0 {
		for i := range out {
			out[i].Servings = prefs.Servings
		}
	}
	return out
}

func synthesize(names []string, variant int) recipe.Recipe {
	ingredients := lo.Map(names, func(name string, _ int) recipe.Ingredient {
		return recipe.Ingredient{Name: recipe.FlexString(name), Quantity: "1", Unit: string(recipe.MeasurementUnitUnit)}
	})

	return recipe.Recipe{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("Salteado de %s (%d)", strings.Join(names, " y "), variant),
		Ingredients: ingredients,
		Steps: []recipe.Step{
			{Order: 1, Text: "Lava y corta los ingredientes."},
			{Order: 2, Text: "Saltea todo a fuego fuerte durante 10 minutos."},
			{Order: 3, Text: "Sirve caliente."},
		},
		CookingTime: 15,
		Servings:    recipe.DefaultServings,
		Difficulty:  recipe.DifficultyEasy,
		DietaryInfo: []string{},
	}
}

func toWire(r recipe.Recipe) wireRecipe {
	ingredients := lo.Map(r.Ingredients, func(i recipe.Ingredient, _ int) recipe.Ingredient {
		i.Icon = ""
		return i
	})
	steps := lo.Map(r.Steps, func(step recipe.Step, _ int) string {
		encoded, _ := json.Marshal(step)
		return string(encoded)
	})
	return wireRecipe{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Ingredients: ingredients,
		Steps:       steps,
		CookingTime: r.CookingTime,
		Servings:    r.Servings,
		Difficulty:  r.Difficulty,
		DietaryInfo: r.DietaryInfo,
	}
}
