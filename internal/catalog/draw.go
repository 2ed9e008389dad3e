package catalog

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/pbaille/cookbook/internal/domain"
)

// DefaultWheelSize is how many candidates are put on the wheel
const DefaultWheelSize = 8

// DrawConstraints narrows the recipes a random draw may pick from
type DrawConstraints struct {
	// Ingredients the user has at hand; a recipe qualifies if any of its
	// ingredient tags overlaps one of them as a substring, in either direction.
	Ingredients []string          `json:"ingredients,omitempty"`
	MaxTime     int               `json:"maxTime,omitempty"`
	Difficulty  domain.Difficulty `json:"difficulty,omitempty"`
	Type        string            `json:"type,omitempty"`
}

// Validate rejects a negative time limit and unknown difficulties
func (c DrawConstraints) Validate() error {
	if c.MaxTime < 0 {
		return &domain.ValidationError{Field: "maxTime", Message: "must not be negative"}
	}
	if c.Difficulty != "" && !c.Difficulty.Valid() {
		return &domain.ValidationError{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty %q", c.Difficulty)}
	}
	return nil
}

// DrawResult is the outcome of a draw
type DrawResult struct {
	Recipe     domain.Recipe   `json:"recipe"`
	Candidates []domain.Recipe `json:"candidates"`
}

// Candidates returns every recipe satisfying c, in input order
func Candidates(recipes []domain.Recipe, c DrawConstraints) []domain.Recipe {
	var have []string
	for _, ing := range c.Ingredients {
		if ing = strings.ToLower(strings.TrimSpace(ing)); ing != "" {
			have = append(have, ing)
		}
	}

	out := make([]domain.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if len(have) > 0 && !sharesIngredient(&r, have) {
			continue
		}
		if c.MaxTime > 0 && r.TotalTime() > c.MaxTime {
			continue
		}
		if c.Difficulty != "" && r.Difficulty != c.Difficulty {
			continue
		}
		if c.Type != "" && !anyIn(r.Tags.Type, []string{c.Type}) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func sharesIngredient(r *domain.Recipe, have []string) bool {
	tags := make([]string, 0, len(r.Tags.Ingredient)+len(r.IngredientTags))
	tags = append(tags, r.Tags.Ingredient...)
	tags = append(tags, r.IngredientTags...)

	for _, tag := range tags {
		tag = strings.ToLower(tag)
		if tag == "" {
			continue
		}
		for _, ing := range have {
			if strings.Contains(tag, ing) || strings.Contains(ing, tag) {
				return true
			}
		}
	}
	return false
}

// Draw picks one recipe uniformly at random among the first wheelSize candidates.
// It returns false when nothing satisfies c.
func Draw(recipes []domain.Recipe, c DrawConstraints, wheelSize int, rng *rand.Rand) (DrawResult, bool) {
	if wheelSize <= 0 {
		wheelSize = DefaultWheelSize
	}

	candidates := Candidates(recipes, c)
	if len(candidates) == 0 {
		return DrawResult{}, false
	}
	if len(candidates) > wheelSize {
		candidates = candidates[:wheelSize]
	}

	var i int
	if rng != nil {
		i = rng.IntN(len(candidates))
	} else {
		i = rand.IntN(len(candidates))
	}
	return DrawResult{Recipe: candidates[i], Candidates: candidates}, true
}

var listSeparators = regexp.MustCompile(`[,，]`)

// SplitList splits comma separated input, accepting the full-width comma
func SplitList(s string) []string {
	var out []string
	for _, part := range listSeparators.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
