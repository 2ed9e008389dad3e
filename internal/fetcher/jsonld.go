package fetcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/pbaille/cookbook/internal/domain"
)

// ErrNoRecipe is returned when a page carries no schema.org Recipe
var ErrNoRecipe = errors.New("no schema.org recipe found")

// ExtractRecipe finds the schema.org Recipe in a page's JSON-LD and maps it
// onto a domain recipe.
func ExtractRecipe(page []byte) (*domain.Recipe, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	for _, script := range ldScripts(doc) {
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(script)), &v); err != nil {
			// sites ship broken blocks next to good ones
			continue
		}
		node := findRecipe(v)
		if node == nil {
			continue
		}

		r := mapRecipe(node)
		if r.Name == "" {
			r.Name = pageTitle(doc)
		}
		r.Normalize()
		return r, nil
	}
	return nil, ErrNoRecipe
}

// findRecipe walks objects, arrays and @graph containers for a node typed Recipe
func findRecipe(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if r := findRecipe(item); r != nil {
				return r
			}
		}
	case map[string]any:
		if hasType(t, "Recipe") {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findRecipe(graph)
		}
		if main, ok := t["mainEntity"]; ok {
			return findRecipe(main)
		}
	}
	return nil
}

func hasType(node map[string]any, want string) bool {
	for _, typ := range strs(node["@type"]) {
		if strings.EqualFold(typ, want) {
			return true
		}
	}
	return false
}

func mapRecipe(node map[string]any) *domain.Recipe {
	r := &domain.Recipe{
		Name:        extractText(str(node["name"])),
		Description: extractText(str(node["description"])),
		CoverImage:  imageURL(node["image"]),
		PrepTime:    minutes(str(node["prepTime"])),
		CookTime:    minutes(str(node["cookTime"])),
		VideoURL:    videoURL(node["video"]),
	}
	if r.PrepTime == 0 && r.CookTime == 0 {
		r.CookTime = minutes(str(node["totalTime"]))
	}

	for _, line := range strs(node["recipeIngredient"]) {
		if ing, ok := importIngredient(extractText(line)); ok {
			r.Ingredients = append(r.Ingredients, ing)
		}
	}
	for _, text := range instructions(node["recipeInstructions"]) {
		r.Steps = append(r.Steps, domain.Step{Text: text})
	}

	r.Tags.Cuisine = splitKeywords(node["recipeCuisine"])
	r.Tags.Type = splitKeywords(node["recipeCategory"])
	r.Tags.Custom = splitKeywords(node["keywords"])
	return r
}

// instructions flattens text, HowToStep and HowToSection shapes into step texts
func instructions(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		text := strings.ReplaceAll(t, "<br>", "\n")
		for _, step := range domain.ParseStepLines(text) {
			if s := extractText(step.Text); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			out = append(out, instructions(item)...)
		}
	case map[string]any:
		if items, ok := t["itemListElement"]; ok {
			return instructions(items)
		}
		text := str(t["text"])
		if text == "" {
			text = str(t["name"])
		}
		if s := extractText(text); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var units = map[string]bool{
	"g": true, "kg": true, "mg": true, "ml": true, "l": true, "dl": true, "cl": true,
	"oz": true, "lb": true, "lbs": true, "pound": true, "pounds": true,
	"cup": true, "cups": true, "tbsp": true, "tsp": true,
	"tablespoon": true, "tablespoons": true, "teaspoon": true, "teaspoons": true,
	"clove": true, "cloves": true, "pinch": true, "can": true, "cans": true,
	"slice": true, "slices": true, "piece": true, "pieces": true,
}

// importIngredient splits "200 g pork belly" into name "pork belly" and amount "200 g".
// Lines without a leading quantity keep the name-first convention of typed input.
func importIngredient(line string) (domain.Ingredient, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.Ingredient{}, false
	}

	i := 0
	for i < len(fields) && isQuantity(fields[i]) {
		i++
	}
	if i == 0 {
		return domain.ParseIngredientLine(line), true
	}
	if i < len(fields) && units[strings.ToLower(strings.TrimSuffix(fields[i], "."))] {
		i++
	}
	if i == len(fields) {
		return domain.Ingredient{Name: line}, true
	}
	return domain.Ingredient{
		Name:   strings.Join(fields[i:], " "),
		Amount: strings.Join(fields[:i], " "),
	}, true
}

func isQuantity(field string) bool {
	r := []rune(field)[0]
	return unicode.IsDigit(r) || unicode.Is(unicode.No, r)
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// minutes converts an ISO 8601 duration such as PT1H30M into whole minutes, rounding seconds up
func minutes(d string) int {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(d)))
	if m == nil {
		return 0
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	mins, _ := strconv.Atoi(m[3])
	secs, _ := strconv.ParseFloat(m[4], 64)
	return days*24*60 + hours*60 + mins + int(math.Ceil(secs/60))
}

func imageURL(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if u := imageURL(item); u != "" {
				return u
			}
		}
	case map[string]any:
		if u := str(t["url"]); u != "" {
			return u
		}
		return str(t["contentUrl"])
	}
	return ""
}

func videoURL(v any) string {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if u := videoURL(item); u != "" {
				return u
			}
		}
	case map[string]any:
		for _, k := range []string{"contentUrl", "embedUrl", "url"} {
			if u := str(t[k]); u != "" {
				return u
			}
		}
	}
	return ""
}

func splitKeywords(v any) []string {
	var out []string
	for _, s := range strs(v) {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '，' }) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// strs accepts a string or an array of strings
func strs(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
