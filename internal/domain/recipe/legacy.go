package recipe

import (
	"fmt"
	"strconv"
	"strings"
)

// Legacy recipe shape used by the bundled seed dataset

// LegacyIngredient is an ingredient of a LegacyRecipe. Amount holds the
// quantity and unit as free text ("200 g", "2 cucharadas").
type LegacyIngredient struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Svg    string `json:"svg,omitempty"`
}

// LegacyRecipe is the flat seed recipe shape
type LegacyRecipe struct {
	RecipeID        int                `json:"recipeid"`
	RecipeTitle     string             `json:"recipetitle"`
	Ingredients     []LegacyIngredient `json:"ingredientesList"`
	Instructions    []string           `json:"instructions"`
	Dificultad      string             `json:"dificultad"`
	Tiempo          string             `json:"tiempo"`
	Porciones       int                `json:"porciones"`
	MatchPercentage int                `json:"matchPercentage"`
	IsPremium       bool               `json:"isPremium"`
	IsAI            bool               `json:"isAI"`
	Image           string             `json:"image,omitempty"`
	Descripcion     string             `json:"descripcion,omitempty"`
}

// Fixed values written by NormalizedToLegacy; they cannot be recovered from
// a normalized recipe.
const (
	LegacyMatchPercentage = 100
	LegacyIsPremium       = false
	LegacyIsAI            = true
)

// DifficultyFromLabel maps a free-text Spanish difficulty label to the enum.
// Anything that is neither easy nor medium is hard.
func DifficultyFromLabel(label string) Difficulty {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "fácil"), strings.Contains(l, "facil"):
		return DifficultyEasy
	case strings.Contains(l, "medio"), strings.Contains(l, "intermedio"):
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// Label returns the Spanish label for the difficulty. An unset difficulty
// is labelled as easy.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyMedium:
		return "Medio"
	case DifficultyHard:
		return "Difícil"
	default:
		return "Fácil"
	}
}

// LegacyToNormalized converts a seed recipe to the normalized shape
func LegacyToNormalized(legacy LegacyRecipe) Recipe {
	r := Recipe{
		ID:          strconv.Itoa(legacy.RecipeID),
		Name:        legacy.RecipeTitle,
		Description: legacy.Descripcion,
		Difficulty:  DifficultyFromLabel(legacy.Dificultad),
		Image:       legacy.Image,
		Servings:    legacy.Porciones,
		Ingredients: make([]Ingredient, 0, len(legacy.Ingredients)),
		Steps:       make([]Step, 0, len(legacy.Instructions)),
	}

	if minutes, ok := leadingInt(legacy.Tiempo); ok {
		r.CookingTime = minutes
	}

	for _, ingredient := range legacy.Ingredients {
		r.Ingredients = append(r.Ingredients, Ingredient{
			Name:     FlexString(ingredient.Name),
			Quantity: FlexString(ParseQuantity(ingredient.Amount)),
			Unit:     string(ParseUnit(ingredient.Amount)),
			Icon:     ingredient.Svg,
		})
	}

	for i, instruction := range legacy.Instructions {
		r.Steps = append(r.Steps, Step{Order: i + 1, Text: instruction})
	}

	r.ApplyDefaults()
	return r
}

// NormalizedToLegacy converts a normalized recipe back to the seed shape.
// id overrides the recipe id when positive. The conversion is lossy: match
// percentage, premium flag and AI flag take fixed values.
func NormalizedToLegacy(r Recipe, id int) LegacyRecipe {
	if id <= 0 {
		id, _ = strconv.Atoi(strings.TrimSpace(r.ID))
	}

	legacy := LegacyRecipe{
		RecipeID:        id,
		RecipeTitle:     r.Name,
		Ingredients:     make([]LegacyIngredient, 0, len(r.Ingredients)),
		Instructions:    make([]string, 0, len(r.Steps)),
		Dificultad:      r.Difficulty.Label(),
		Tiempo:          fmt.Sprintf("%d min", cookingTimeOrDefault(r.CookingTime)),
		Porciones:       r.Servings,
		MatchPercentage: LegacyMatchPercentage,
		IsPremium:       LegacyIsPremium,
		IsAI:            LegacyIsAI,
		Image:           r.Image,
		Descripcion:     r.Description,
	}

	for i, ingredient := range r.Ingredients {
		ingredientID, err := strconv.Atoi(strings.TrimSpace(ingredient.Name.String()))
		if err != nil {
			ingredientID = i + 1
		}
		legacy.Ingredients = append(legacy.Ingredients, LegacyIngredient{
			ID:     ingredientID,
			Name:   ingredient.Name.String(),
			Amount: strings.TrimSpace(ingredient.Quantity.String() + " " + ingredient.Unit),
			Svg:    ingredient.Icon,
		})
	}

	steps := append([]Step(nil), r.Steps...)
	SortSteps(steps)
	for _, step := range steps {
		legacy.Instructions = append(legacy.Instructions, step.Text)
	}

	return legacy
}

func cookingTimeOrDefault(minutes int) int {
	if minutes <= 0 {
		return DefaultCookingTime
	}
	return minutes
}
