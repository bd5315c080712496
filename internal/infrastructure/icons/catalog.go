// Package icons maps ingredient names to the icon assets bundled with the app
package icons

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"
)

// defaultIcons is the bundled icon set keyed by normalized ingredient name
var defaultIcons = map[string]string{
	"ajo":             "garlic.svg",
	"garlic":          "garlic.svg",
	"arroz":           "rice.svg",
	"rice":            "rice.svg",
	"cebolla":         "onion.svg",
	"onion":           "onion.svg",
	"huevo":           "egg.svg",
	"egg":             "egg.svg",
	"leche":           "milk.svg",
	"milk":            "milk.svg",
	"pollo":           "chicken.svg",
	"chicken":         "chicken.svg",
	"patata":          "potato.svg",
	"papa":            "potato.svg",
	"potato":          "potato.svg",
	"pimiento":        "pepper.svg",
	"queso":           "cheese.svg",
	"cheese":          "cheese.svg",
	"tomate":          "tomato.svg",
	"tomato":          "tomato.svg",
	"zanahoria":       "carrot.svg",
	"carrot":          "carrot.svg",
	"pasta":           "pasta.svg",
	"pescado":         "fish.svg",
	"fish":            "fish.svg",
	"carne":           "beef.svg",
	"ternera":         "beef.svg",
	"beef":            "beef.svg",
	"aceite de oliva": "olive-oil.svg",
	"aceite":          "olive-oil.svg",
	"olive oil":       "olive-oil.svg",
	"sal":             "salt.svg",
	"salt":            "salt.svg",
	"limon":           "lemon.svg",
	"lemon":           "lemon.svg",
	"champinon":       "mushroom.svg",
	"mushroom":        "mushroom.svg",
}

// Catalog resolves icons for ingredient names. It implements recipe.IconLookup.
type Catalog struct {
	icons map[string]string
}

// NewCatalog creates a catalog from name to icon entries. Names are
// normalized the same way lookups are.
func NewCatalog(entries map[string]string) *Catalog {
	return &Catalog{
		icons: lo.MapKeys(entries, func(_ string, name string) string {
			return Normalize(name)
		}),
	}
}

// DefaultCatalog returns the catalog of bundled icons
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultIcons)
}

// Lookup returns the icon for an ingredient name. Plural forms and names
// qualified with extra words ("pechuga de pollo") fall back to their base
// ingredient.
func (c *Catalog) Lookup(name string) (string, bool) {
	key := Normalize(name)
	if key == "" {
		return "", false
	}

	candidates := []string{key, strings.TrimSuffix(key, "es"), strings.TrimSuffix(key, "s")}
	if icon, ok := c.first(candidates); ok {
		return icon, true
	}

	// "pechuga de pollo" -> "pollo", "tomates cherry" -> "tomate"
	words := strings.Fields(key)
	for _, word := range lo.Reverse(append([]string(nil), words...)) {
		if icon, ok := c.first([]string{word, strings.TrimSuffix(word, "es"), strings.TrimSuffix(word, "s")}); ok {
			return icon, true
		}
	}
	return "", false
}

// Len returns the number of known names
func (c *Catalog) Len() int {
	return len(c.icons)
}

func (c *Catalog) first(keys []string) (string, bool) {
	for _, key := range lo.Uniq(keys) {
		if icon, ok := c.icons[key]; ok {
			return icon, true
		}
	}
	return "", false
}

// Normalize lowercases, trims and strips diacritics from an ingredient name
func Normalize(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(name)))
	var b strings.Builder
	for _, r := range decomposed {
		if r >= 0x300 && r <= 0x36f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
