package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Value Objects - Immutable objects that describe aspects of the domain

// FlexString holds a JSON value the server sends either as a string or as a
// number. The textual form is kept as-is.
type FlexString string

// UnmarshalJSON accepts strings, numbers and null
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the textual form
func (f FlexString) String() string {
	return string(f)
}

// Float parses the value as a number
func (f FlexString) Float() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(string(f), ",", ".")), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Int returns the first integer that appears in the value ("30 min" -> 30)
func (f FlexString) Int() (int, bool) {
	return leadingInt(string(f))
}

var digitsPattern = regexp.MustCompile(`\d+`)

func leadingInt(s string) (int, bool) {
	match := digitsPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Ingredient represents an ingredient in a normalized recipe
type Ingredient struct {
	Name       FlexString `json:"name"`
	Quantity   FlexString `json:"quantity"`
	Unit       string     `json:"unit"`
	Icon       string     `json:"icon,omitempty"`
	IsOptional bool       `json:"is_optional"`
}

// UnmarshalJSON also accepts the icon under the "svg" key
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	type alias Ingredient
	var payload struct {
		alias
		Svg string `json:"svg"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*i = Ingredient(payload.alias)
	if i.Icon == "" {
		i.Icon = payload.Svg
	}
	return nil
}

// Validate validates the ingredient
func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Name.String()) == "" {
		return ErrIngredientNameRequired
	}
	return nil
}

// Step represents a cooking instruction step. Time is in minutes.
type Step struct {
	Order int    `json:"order"`
	Text  string `json:"step"`
	Time  *int   `json:"time,omitempty"`
}

// Validate validates the step
func (s Step) Validate() error {
	if s.Order < 1 {
		return ErrInvalidStepOrder
	}
	if strings.TrimSpace(s.Text) == "" {
		return ErrStepTextRequired
	}
	return nil
}

// Difficulty represents recipe difficulty
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps a server difficulty value to the enum. English and
// Spanish spellings are accepted; anything else yields the empty difficulty.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "fácil", "facil":
		return DifficultyEasy
	case "medium", "medio", "media", "intermedio", "intermedia":
		return DifficultyMedium
	case "hard", "difícil", "dificil":
		return DifficultyHard
	default:
		return ""
	}
}

// IsValid reports whether d is one of the three known levels
func (d Difficulty) IsValid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// MeasurementUnit represents units of measurement
type MeasurementUnit string

const (
	MeasurementUnitGram       MeasurementUnit = "g"
	MeasurementUnitKilogram   MeasurementUnit = "kg"
	MeasurementUnitMilliliter MeasurementUnit = "ml"
	MeasurementUnitLiter      MeasurementUnit = "l"
	MeasurementUnitTablespoon MeasurementUnit = "tablespoon"
	MeasurementUnitTeaspoon   MeasurementUnit = "teaspoon"
	MeasurementUnitCup        MeasurementUnit = "cup"
	MeasurementUnitUnit       MeasurementUnit = "unit"
	MeasurementUnitClove      MeasurementUnit = "clove"
)

// unitAliases maps every accepted spelling to its canonical unit. Longer
// spellings must come first in unitPattern so "kg" wins over "g".
var unitAliases = map[string]MeasurementUnit{
	"g": MeasurementUnitGram, "gr": MeasurementUnitGram, "grs": MeasurementUnitGram,
	"gramo": MeasurementUnitGram, "gramos": MeasurementUnitGram, "gram": MeasurementUnitGram, "grams": MeasurementUnitGram,
	"kg": MeasurementUnitKilogram, "kilo": MeasurementUnitKilogram, "kilos": MeasurementUnitKilogram,
	"kilogramo": MeasurementUnitKilogram, "kilogramos": MeasurementUnitKilogram,
	"ml": MeasurementUnitMilliliter, "mililitro": MeasurementUnitMilliliter, "mililitros": MeasurementUnitMilliliter,
	"l": MeasurementUnitLiter, "litro": MeasurementUnitLiter, "litros": MeasurementUnitLiter,
	"liter": MeasurementUnitLiter, "liters": MeasurementUnitLiter,
	"tablespoon": MeasurementUnitTablespoon, "tablespoons": MeasurementUnitTablespoon, "tbsp": MeasurementUnitTablespoon,
	"cucharada": MeasurementUnitTablespoon, "cucharadas": MeasurementUnitTablespoon,
	"teaspoon": MeasurementUnitTeaspoon, "teaspoons": MeasurementUnitTeaspoon, "tsp": MeasurementUnitTeaspoon,
	"cucharadita": MeasurementUnitTeaspoon, "cucharaditas": MeasurementUnitTeaspoon,
	"cup": MeasurementUnitCup, "cups": MeasurementUnitCup, "taza": MeasurementUnitCup, "tazas": MeasurementUnitCup,
	"unit": MeasurementUnitUnit, "units": MeasurementUnitUnit, "unidad": MeasurementUnitUnit, "unidades": MeasurementUnitUnit,
	"clove": MeasurementUnitClove, "cloves": MeasurementUnitClove, "diente": MeasurementUnitClove, "dientes": MeasurementUnitClove,
}

var unitPattern = regexp.MustCompile(`(?i)(?:^|[\d\s])(` +
	`kilogramos|kilogramo|kilos|kilo|kg|` +
	`mililitros|mililitro|ml|` +
	`litros|litro|liters|liter|l|` +
	`gramos|gramo|grams|gram|grs|gr|g|` +
	`tablespoons|tablespoon|tbsp|cucharaditas|cucharadita|cucharadas|cucharada|` +
	`teaspoons|teaspoon|tsp|` +
	`cups|cup|tazas|taza|` +
	`unidades|unidad|units|unit|` +
	`cloves|clove|dientes|diente` +
	`)(?:$|[\s.,;:)])`)

var quantityPattern = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?(?:\s*/\s*\d+)?)`)

// ParseUnit extracts the canonical unit from an amount string such as
// "200 g" or "2 cucharadas". Unknown units yield "".
func ParseUnit(amount string) MeasurementUnit {
	match := unitPattern.FindStringSubmatch(amount)
	if match == nil {
		return ""
	}
	return unitAliases[strings.ToLower(match[1])]
}

// ParseQuantity returns the numeric prefix of an amount string, or the whole
// trimmed amount when it does not start with a number.
func ParseQuantity(amount string) string {
	if match := quantityPattern.FindStringSubmatch(amount); match != nil {
		return strings.ReplaceAll(match[1], " ", "")
	}
	return strings.TrimSpace(amount)
}
