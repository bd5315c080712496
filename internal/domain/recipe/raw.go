package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// RawStep is a step as it arrives from the server: either a JSON-encoded
// string (EncodedStep) or an already structured object (StructuredStep).
// The variant is decided once, when the payload is decoded.
type RawStep interface {
	// resolve turns the raw step into a Step. position is 1-based.
	resolve(position int) (Step, error)
}

// EncodedStep is a step sent as a string. It usually carries a JSON object
// ({"order":1,"step":"..."}) but may be plain text.
type EncodedStep string

// StructuredStep is a step sent as a JSON object
type StructuredStep struct {
	Order int    `json:"order"`
	Text  string `json:"step"`
	Time  *int   `json:"time,omitempty"`
}

func (s StructuredStep) resolve(position int) (Step, error) {
	step := Step{Order: s.Order, Text: strings.TrimSpace(s.Text), Time: s.Time}
	if step.Order < 1 {
		step.Order = position
	}
	return step, nil
}

func (e EncodedStep) resolve(position int) (Step, error) {
	raw := strings.TrimSpace(string(e))
	fallback := Step{Order: position, Text: raw}

	var structured StructuredStep
	if err := json.Unmarshal([]byte(raw), &structured); err != nil {
		return fallback, err
	}
	if strings.TrimSpace(structured.Text) == "" {
		return fallback, ErrStepTextRequired
	}
	return structured.resolve(position)
}

// RawSteps decodes the steps array of a server recipe. Each element becomes
// an EncodedStep or a StructuredStep. Objects that do not fit StructuredStep
// are kept as EncodedStep so the failure stays local to that step.
type RawSteps []RawStep

// UnmarshalJSON implements json.Unmarshaler
func (r *RawSteps) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}

	// The whole array is sometimes sent as one encoded string
	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		trimmed := strings.TrimSpace(encoded)
		if strings.HasPrefix(trimmed, "[") {
			return r.UnmarshalJSON([]byte(trimmed))
		}
		*r = RawSteps{EncodedStep(encoded)}
		return nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return err
	}

	steps := make(RawSteps, 0, len(elements))
	for _, element := range elements {
		element = bytes.TrimSpace(element)
		switch {
		case len(element) > 0 && element[0] == '"':
			var s string
			if err := json.Unmarshal(element, &s); err != nil {
				steps = append(steps, EncodedStep(element))
				continue
			}
			steps = append(steps, EncodedStep(s))
		case len(element) > 0 && element[0] == '{':
			var structured StructuredStep
			if err := json.Unmarshal(element, &structured); err != nil {
				steps = append(steps, EncodedStep(element))
				continue
			}
			steps = append(steps, structured)
		default:
			steps = append(steps, EncodedStep(element))
		}
	}
	*r = steps
	return nil
}

// RawRecipe is a recipe exactly as the generation endpoint returns it
type RawRecipe struct {
	ID              FlexString      `json:"id"`
	RecipeID        FlexString      `json:"recipe_id"`
	Name            FlexString      `json:"name"`
	Description     json.RawMessage `json:"description"`
	Ingredients     []Ingredient    `json:"ingredients"`
	Steps           RawSteps        `json:"steps"`
	CookingTime     FlexString      `json:"cooking_time"`
	Servings        FlexString      `json:"servings"`
	Difficulty      string          `json:"difficulty"`
	Image           string          `json:"image"`
	DietaryInfo     []string        `json:"dietary_info"`
	Substitution    json.RawMessage `json:"sustitucion"`
	Personalization json.RawMessage `json:"personalizacion"`
}

// IconLookup resolves an icon reference for an ingredient name
type IconLookup interface {
	Lookup(name string) (string, bool)
}

// IconLookupFunc adapts a function to IconLookup
type IconLookupFunc func(name string) (string, bool)

// Lookup implements IconLookup
func (f IconLookupFunc) Lookup(name string) (string, bool) {
	return f(name)
}

// Normalize converts a server recipe into a Recipe. Steps that fail to
// decode are kept as raw text at their position and reported in the
// returned error slice; they never abort the recipe. Ingredients without an
// icon are backfilled from icons when it is non-nil.
func Normalize(raw RawRecipe, icons IconLookup) (Recipe, []error) {
	r := Recipe{
		ID:              firstNonEmpty(raw.ID.String(), raw.RecipeID.String()),
		Name:            strings.TrimSpace(raw.Name.String()),
		Description:     text(raw.Description),
		Difficulty:      ParseDifficulty(raw.Difficulty),
		Image:           raw.Image,
		DietaryInfo:     append([]string(nil), raw.DietaryInfo...),
		Substitution:    text(raw.Substitution),
		Personalization: text(raw.Personalization),
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if n, ok := raw.CookingTime.Int(); ok {
		r.CookingTime = n
	}
	if n, ok := raw.Servings.Int(); ok {
		r.Servings = n
	}

	r.Ingredients = make([]Ingredient, len(raw.Ingredients))
	for i, ingredient := range raw.Ingredients {
		if ingredient.Icon == "" && icons != nil {
			if icon, ok := icons.Lookup(ingredient.Name.String()); ok {
				ingredient.Icon = icon
			}
		}
		r.Ingredients[i] = ingredient
	}

	var errs []error
	r.Steps = make([]Step, 0, len(raw.Steps))
	for i, rawStep := range raw.Steps {
		step, err := rawStep.resolve(i + 1)
		if err != nil {
			errs = append(errs, &StepDecodeError{
				RecipeID: r.ID,
				Position: i + 1,
				Raw:      step.Text,
				Err:      err,
			})
		}
		r.Steps = append(r.Steps, step)
	}
	SortSteps(r.Steps)

	r.ApplyDefaults()
	return r, errs
}

// NormalizeAll normalizes every recipe of a response
func NormalizeAll(raws []RawRecipe, icons IconLookup) ([]Recipe, error) {
	recipes := make([]Recipe, 0, len(raws))
	var errs []error
	for _, raw := range raws {
		r, stepErrs := Normalize(raw, icons)
		recipes = append(recipes, r)
		errs = append(errs, stepErrs...)
	}
	return recipes, errors.Join(errs...)
}

// text returns a JSON string value as-is and any other JSON value in its
// compact encoded form.
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
