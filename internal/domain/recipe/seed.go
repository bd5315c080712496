package recipe

// seedRecipes is the sample dataset shown before the first search
var seedRecipes = []LegacyRecipe{
	{
		RecipeID:    1,
		RecipeTitle: "Pollo al ajillo",
		Ingredients: []LegacyIngredient{
			{ID: 1, Name: "pollo", Amount: "500 g"},
			{ID: 2, Name: "ajo", Amount: "6 dientes"},
			{ID: 3, Name: "aceite de oliva", Amount: "3 cucharadas"},
			{ID: 4, Name: "vino blanco", Amount: "100 ml"},
		},
		Instructions: []string{
			"Trocea el pollo y salpimienta.",
			"Dora el pollo en el aceite a fuego medio.",
			"Añade el ajo laminado y el vino y cocina 20 minutos.",
		},
		Dificultad:      "Fácil",
		Tiempo:          "40 min",
		Porciones:       4,
		MatchPercentage: 90,
		Descripcion:     "Clásico guiso de pollo con ajo y vino blanco.",
	},
	{
		RecipeID:    2,
		RecipeTitle: "Ensalada de tomate y huevo",
		Ingredients: []LegacyIngredient{
			{ID: 1, Name: "tomate", Amount: "3 unidades"},
			{ID: 2, Name: "huevo", Amount: "2 unidades"},
			{ID: 3, Name: "cebolla", Amount: "1 unidad"},
			{ID: 4, Name: "vinagre", Amount: "1 cucharadita"},
		},
		Instructions: []string{
			"Cuece los huevos 10 minutos.",
			"Corta el tomate y la cebolla.",
			"Mezcla todo y aliña con vinagre.",
		},
		Dificultad:      "Fácil",
		Tiempo:          "15 min",
		Porciones:       2,
		MatchPercentage: 85,
	},
	{
		RecipeID:    3,
		RecipeTitle: "Arroz con leche",
		Ingredients: []LegacyIngredient{
			{ID: 1, Name: "arroz", Amount: "200 g"},
			{ID: 2, Name: "leche", Amount: "1 l"},
			{ID: 3, Name: "azúcar", Amount: "1 taza"},
			{ID: 4, Name: "canela", Amount: "al gusto"},
		},
		Instructions: []string{
			"Cuece el arroz en la leche a fuego lento.",
			"Remueve con frecuencia durante 40 minutos.",
			"Añade el azúcar y sirve con canela.",
		},
		Dificultad:      "Intermedio",
		Tiempo:          "50 minutos",
		Porciones:       6,
		MatchPercentage: 70,
		IsPremium:       true,
	},
	{
		RecipeID:    4,
		RecipeTitle: "Tortilla de patatas",
		Ingredients: []LegacyIngredient{
			{ID: 1, Name: "patata", Amount: "1 kg"},
			{ID: 2, Name: "huevo", Amount: "6 unidades"},
			{ID: 3, Name: "aceite de oliva", Amount: "1 taza"},
		},
		Instructions: []string{
			"Pela y corta las patatas en láminas finas.",
			"Fríe las patatas a fuego lento hasta que estén tiernas.",
			"Bate los huevos, mezcla con las patatas y cuaja la tortilla por ambos lados.",
		},
		Dificultad:      "Difícil",
		Tiempo:          "45 min",
		MatchPercentage: 95,
	},
}

// SeedRecipes returns a copy of the sample dataset in the legacy shape
func SeedRecipes() []LegacyRecipe {
	out := make([]LegacyRecipe, len(seedRecipes))
	for i, r := range seedRecipes {
		r.Ingredients = append([]LegacyIngredient(nil), r.Ingredients...)
		r.Instructions = append([]string(nil), r.Instructions...)
		out[i] = r
	}
	return out
}

// SeedNormalized returns the sample dataset converted to normalized recipes
func SeedNormalized() []Recipe {
	seeds := SeedRecipes()
	out := make([]Recipe, 0, len(seeds))
	for _, legacy := range seeds {
		out = append(out, LegacyToNormalized(legacy))
	}
	return out
}
