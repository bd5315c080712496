// Package shoppinglist builds a shopping list from recipes, leaving out what
// the user already has
package shoppinglist

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
)

// Item is one line of the shopping list
type Item struct {
	Name     string   `json:"name"`
	Quantity string   `json:"quantity"`
	Unit     string   `json:"unit,omitempty"`
	Sources  []string `json:"sources"`
	Checked  bool     `json:"checked"`
}

// List is a shopping list. Items are sorted by name.
type List struct {
	mu    sync.RWMutex
	items []Item
}

type aggregate struct {
	item    Item
	total   float64
	numeric bool
	amounts []string
}

// Build aggregates the ingredients of recipes. Ingredients with the same
// name and unit are merged; numeric quantities are summed and anything else
// is joined. Optional ingredients and those in have are left out.
func Build(recipes []recipe.Recipe, have []string) *List {
	owned := lo.SliceToMap(have, func(name string) (string, struct{}) {
		return normalize(name), struct{}{}
	})

	merged := make(map[string]*aggregate)
	for _, r := range recipes {
		for _, ingredient := range r.Ingredients {
			name := normalize(ingredient.Name.String())
			if name == "" || ingredient.IsOptional {
				continue
			}
			if _, ok := owned[name]; ok {
				continue
			}

			unit := strings.ToLower(strings.TrimSpace(ingredient.Unit))
			key := name + "|" + unit
			agg, ok := merged[key]
			if !ok {
				agg = &aggregate{item: Item{Name: name, Unit: unit}, numeric: true}
				merged[key] = agg
			}
			agg.add(strings.TrimSpace(ingredient.Quantity.String()))
			if !lo.Contains(agg.item.Sources, r.Name) {
				agg.item.Sources = append(agg.item.Sources, r.Name)
			}
		}
	}

	items := make([]Item, 0, len(merged))
	for _, agg := range merged {
		items = append(items, agg.result())
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Unit < items[j].Unit
	})

	return &List{items: items}
}

func (a *aggregate) add(amount string) {
	if amount == "" {
		return
	}
	a.amounts = append(a.amounts, amount)
	if v, ok := parseAmount(amount); ok {
		a.total += v
	} else {
		a.numeric = false
	}
}

func (a *aggregate) result() Item {
	item := a.item
	switch {
	case len(a.amounts) == 0:
		item.Quantity = ""
	case a.numeric:
		item.Quantity = strconv.FormatFloat(a.total, 'f', -1, 64)
	default:
		item.Quantity = strings.Join(lo.Uniq(a.amounts), " + ")
	}
	if item.Sources == nil {
		item.Sources = []string{}
	}
	return item
}

// parseAmount reads "2", "1.5", "1,5" and "1/2"
func parseAmount(amount string) (float64, bool) {
	amount = strings.ReplaceAll(strings.TrimSpace(amount), ",", ".")
	if num, den, found := strings.Cut(amount, "/"); found {
		n, errN := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, errD := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if errN != nil || errD != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(amount, 64)
	return v, err == nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Items returns a copy of the list items
func (l *List) Items() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Item, len(l.items))
	for i, item := range l.items {
		item.Sources = append([]string{}, item.Sources...)
		out[i] = item
	}
	return out
}

// Check toggles the checked flag of every item named name. It reports
// whether any item matched.
func (l *List) Check(name string) bool {
	name = normalize(name)

	l.mu.Lock()
	defer l.mu.Unlock()

	found := false
	for i := range l.items {
		if l.items[i].Name == name {
			l.items[i].Checked = !l.items[i].Checked
			found = true
		}
	}
	return found
}

// Pending returns the items not yet checked
func (l *List) Pending() []Item {
	return lo.Filter(l.Items(), func(item Item, _ int) bool { return !item.Checked })
}

// Len returns the number of items
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
