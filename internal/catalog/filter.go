package catalog

import (
	"sort"
	"strings"

	"github.com/pbaille/cookbook/internal/domain"
)

// Filters selects recipes. Empty groups place no constraint.
type Filters struct {
	Search     string              `json:"search,omitempty"`
	Cuisine    []string            `json:"cuisine,omitempty"`
	Type       []string            `json:"type,omitempty"`
	Ingredient []string            `json:"ingredient,omitempty"`
	Difficulty []domain.Difficulty `json:"difficulty,omitempty"`
	CustomTags []string            `json:"customTags,omitempty"`
}

// IsZero reports whether no filter is set
func (f Filters) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" &&
		len(f.Cuisine) == 0 && len(f.Type) == 0 && len(f.Ingredient) == 0 &&
		len(f.Difficulty) == 0 && len(f.CustomTags) == 0
}

// FilterRecipes applies the search text, then each tag group; groups combine with AND,
// values inside a group with OR. Input order is kept.
func FilterRecipes(recipes []domain.Recipe, f Filters) []domain.Recipe {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]domain.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if search != "" && !matchesSearch(&r, search) {
			continue
		}
		if !anyIn(r.Tags.Cuisine, f.Cuisine) ||
			!anyIn(r.Tags.Type, f.Type) ||
			!anyIn(r.Tags.Ingredient, f.Ingredient) ||
			!anyIn(r.Tags.Custom, f.CustomTags) {
			continue
		}
		if len(f.Difficulty) > 0 && !containsDifficulty(f.Difficulty, r.Difficulty) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch(r *domain.Recipe, s string) bool {
	if strings.Contains(strings.ToLower(r.Name), s) ||
		strings.Contains(strings.ToLower(r.Description), s) {
		return true
	}
	for _, group := range [][]string{r.Tags.Custom, r.Tags.Ingredient, r.IngredientTags} {
		for _, t := range group {
			if strings.Contains(strings.ToLower(t), s) {
				return true
			}
		}
	}
	return false
}

// anyIn is true when selected is empty or shares a value with have
func anyIn(have, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, h := range have {
		for _, s := range selected {
			if h == s {
				return true
			}
		}
	}
	return false
}

func containsDifficulty(list []domain.Difficulty, d domain.Difficulty) bool {
	for _, x := range list {
		if x == d {
			return true
		}
	}
	return false
}

// UsedTags lists the distinct tag values present on saved recipes, per group
type UsedTags struct {
	Cuisine    []string            `json:"cuisine"`
	Type       []string            `json:"type"`
	Ingredient []string            `json:"ingredient"`
	Difficulty []domain.Difficulty `json:"difficulty"`
}

// UsedTagsFromRecipes collects sorted distinct tags actually in use
func UsedTagsFromRecipes(recipes []domain.Recipe) UsedTags {
	cuisine := map[string]struct{}{}
	typ := map[string]struct{}{}
	ingredient := map[string]struct{}{}
	difficulty := map[string]struct{}{}

	for _, r := range recipes {
		for _, t := range r.Tags.Cuisine {
			cuisine[t] = struct{}{}
		}
		for _, t := range r.Tags.Type {
			typ[t] = struct{}{}
		}
		for _, t := range r.Tags.Ingredient {
			ingredient[t] = struct{}{}
		}
		if r.Difficulty != "" {
			difficulty[string(r.Difficulty)] = struct{}{}
		}
	}

	used := UsedTags{
		Cuisine:    sortedKeys(cuisine),
		Type:       sortedKeys(typ),
		Ingredient: sortedKeys(ingredient),
	}
	used.Difficulty = make([]domain.Difficulty, 0, len(difficulty))
	for _, d := range sortedKeys(difficulty) {
		used.Difficulty = append(used.Difficulty, domain.Difficulty(d))
	}
	return used
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
