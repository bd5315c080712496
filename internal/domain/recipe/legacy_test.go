package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		amount string
		want   MeasurementUnit
	}{
		{"200 g", MeasurementUnitGram},
		{"200g", MeasurementUnitGram},
		{"250 gramos", MeasurementUnitGram},
		{"1 kg", MeasurementUnitKilogram},
		{"100 ml", MeasurementUnitMilliliter},
		{"1 L", MeasurementUnitLiter},
		{"2 litros", MeasurementUnitLiter},
		{"3 cucharadas", MeasurementUnitTablespoon},
		{"1 Tablespoon", MeasurementUnitTablespoon},
		{"1 cucharadita", MeasurementUnitTeaspoon},
		{"2 tsp", MeasurementUnitTeaspoon},
		{"1 taza", MeasurementUnitCup},
		{"2 cups", MeasurementUnitCup},
		{"3 unidades", MeasurementUnitUnit},
		{"1 unit", MeasurementUnitUnit},
		{"6 dientes", MeasurementUnitClove},
		{"2 cloves", MeasurementUnitClove},
		{"al gusto", ""},
		{"una pizca", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUnit(tt.amount))
		})
	}
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, "200", ParseQuantity("200 g"))
	assert.Equal(t, "1.5", ParseQuantity("1.5 kg"))
	assert.Equal(t, "1/2", ParseQuantity("1 / 2 taza"))
	assert.Equal(t, "al gusto", ParseQuantity(" al gusto "))
}

func TestDifficultyFromLabel(t *testing.T) {
	assert.Equal(t, DifficultyEasy, DifficultyFromLabel("Fácil"))
	assert.Equal(t, DifficultyEasy, DifficultyFromLabel("muy facil"))
	assert.Equal(t, DifficultyMedium, DifficultyFromLabel("Medio"))
	assert.Equal(t, DifficultyMedium, DifficultyFromLabel("Intermedio"))
	assert.Equal(t, DifficultyHard, DifficultyFromLabel("Difícil"))
	assert.Equal(t, DifficultyHard, DifficultyFromLabel("???"))
}

func TestDifficulty_Label(t *testing.T) {
	assert.Equal(t, "Fácil", DifficultyEasy.Label())
	assert.Equal(t, "Medio", DifficultyMedium.Label())
	assert.Equal(t, "Difícil", DifficultyHard.Label())
	assert.Equal(t, "Fácil", Difficulty("").Label())
}

func TestLegacyToNormalized(t *testing.T) {
	legacy := LegacyRecipe{
		RecipeID:    12,
		RecipeTitle: "Pollo al ajillo",
		Ingredients: []LegacyIngredient{
			{ID: 1, Name: "pollo", Amount: "500 g", Svg: "chicken.svg"},
			{ID: 2, Name: "ajo", Amount: "6 dientes"},
			{ID: 3, Name: "sal", Amount: "al gusto"},
		},
		Instructions: []string{"Dorar", "Servir"},
		Dificultad:   "Intermedio",
		Tiempo:       "sin prisa",
	}

	r := LegacyToNormalized(legacy)

	assert.Equal(t, "12", r.ID)
	assert.Equal(t, "Pollo al ajillo", r.Name)
	assert.Equal(t, DifficultyMedium, r.Difficulty)
	assert.Equal(t, DefaultCookingTime, r.CookingTime)
	assert.Equal(t, DefaultServings, r.Servings)
	require.Len(t, r.Ingredients, 3)
	assert.Equal(t, Ingredient{Name: "pollo", Quantity: "500", Unit: "g", Icon: "chicken.svg"}, r.Ingredients[0])
	assert.Equal(t, "clove", r.Ingredients[1].Unit)
	assert.Equal(t, "", r.Ingredients[2].Unit)
	assert.Equal(t, FlexString("al gusto"), r.Ingredients[2].Quantity)
	assert.Equal(t, []Step{{Order: 1, Text: "Dorar"}, {Order: 2, Text: "Servir"}}, r.Steps)
}

func TestLegacyRoundTrip_PreservesIdentity(t *testing.T) {
	for _, seed := range SeedRecipes() {
		t.Run(seed.RecipeTitle, func(t *testing.T) {
			back := NormalizedToLegacy(LegacyToNormalized(seed), 0)

			assert.Equal(t, seed.RecipeID, back.RecipeID)
			assert.Equal(t, seed.RecipeTitle, back.RecipeTitle)
			assert.Len(t, back.Ingredients, len(seed.Ingredients))
			assert.Len(t, back.Instructions, len(seed.Instructions))
			assert.Equal(t, seed.Instructions, back.Instructions)
		})
	}
}

func TestNormalizedToLegacy(t *testing.T) {
	r := Recipe{
		ID:   "abc",
		Name: "Sopa",
		Ingredients: []Ingredient{
			{Name: "agua", Quantity: "1", Unit: "l"},
			{Name: "42", Quantity: "2"},
		},
		Steps:       []Step{{Order: 2, Text: "Servir"}, {Order: 1, Text: "Hervir"}},
		CookingTime: 20,
		Servings:    3,
	}

	t.Run("ExplicitID", func(t *testing.T) {
		legacy := NormalizedToLegacy(r, 9)

		assert.Equal(t, 9, legacy.RecipeID)
		assert.Equal(t, "Fácil", legacy.Dificultad)
		assert.Equal(t, "20 min", legacy.Tiempo)
		assert.Equal(t, 3, legacy.Porciones)
		assert.Equal(t, LegacyMatchPercentage, legacy.MatchPercentage)
		assert.False(t, legacy.IsPremium)
		assert.True(t, legacy.IsAI)
		assert.Equal(t, []string{"Hervir", "Servir"}, legacy.Instructions)
	})

	t.Run("IngredientIDFallsBackToPosition", func(t *testing.T) {
		legacy := NormalizedToLegacy(r, 9)

		assert.Equal(t, LegacyIngredient{ID: 1, Name: "agua", Amount: "1 l"}, legacy.Ingredients[0])
		assert.Equal(t, 42, legacy.Ingredients[1].ID)
		assert.Equal(t, "2", legacy.Ingredients[1].Amount)
	})

	t.Run("NonNumericIDWithoutOverride", func(t *testing.T) {
		assert.Equal(t, 0, NormalizedToLegacy(r, 0).RecipeID)
	})
}

func TestLegacyRecipe_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(SeedRecipes()[0])
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"recipeid", "recipetitle", "ingredientesList", "instructions", "dificultad", "tiempo", "porciones", "matchPercentage", "isPremium", "isAI"} {
		assert.Contains(t, fields, key)
	}
}

func TestSeedRecipes_ReturnsCopy(t *testing.T) {
	first := SeedRecipes()
	first[0].RecipeTitle = "changed"
	first[0].Ingredients[0].Name = "changed"

	second := SeedRecipes()
	assert.NotEqual(t, "changed", second[0].RecipeTitle)
	assert.NotEqual(t, "changed", second[0].Ingredients[0].Name)
	assert.Len(t, SeedNormalized(), len(second))
}

func TestFlexString_UnmarshalJSON(t *testing.T) {
	var values []FlexString
	require.NoError(t, json.Unmarshal([]byte(`["tomate", 2, 1.5, null]`), &values))

	assert.Equal(t, []FlexString{"tomate", "2", "1.5", ""}, values)

	var bad FlexString
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &bad))
}
