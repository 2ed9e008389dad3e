package domain

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the effort level of a recipe
type Difficulty string

const (
	DifficultyBeginner Difficulty = "新手友好级"
	DifficultyHomeCook Difficulty = "家庭厨师级"
	DifficultyExpert   Difficulty = "专业挑战级"
)

// Difficulties lists the accepted difficulty levels, easiest first
var Difficulties = []Difficulty{DifficultyBeginner, DifficultyHomeCook, DifficultyExpert}

// Valid reports whether d is one of the known levels
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// Ingredient is one line of a recipe's ingredient list
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Step is one instruction of a recipe, with an optional picture
type Step struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// Tags holds the independent tag groups of a recipe
type Tags struct {
	Cuisine    []string `json:"cuisine"`
	Type       []string `json:"type"`
	Ingredient []string `json:"ingredient"`
	Custom     []string `json:"custom"`
}

// Recipe is a named dish with ingredients, steps, timing and tags
type Recipe struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	CoverImage     string      `json:"coverImage,omitempty"`
	Ingredients    Ingredients `json:"ingredients"`
	Steps          Steps       `json:"steps"`
	PrepTime       int         `json:"prepTime"`
	CookTime       int         `json:"cookTime"`
	Difficulty     Difficulty  `json:"difficulty"`
	Tags           Tags        `json:"tags"`
	IngredientTags []string    `json:"ingredientTags"`
	VideoURL       string      `json:"videoUrl,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// TotalTime is preparation plus cooking time in minutes
func (r *Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// Normalize trims text fields, drops blank ingredients and steps and fills defaults.
// It never touches ID or timestamps.
func (r *Recipe) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.CoverImage = strings.TrimSpace(r.CoverImage)
	r.VideoURL = strings.TrimSpace(r.VideoURL)

	ingredients := make(Ingredients, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ing.Name = strings.TrimSpace(ing.Name)
		ing.Amount = strings.TrimSpace(ing.Amount)
		if ing.Name == "" {
			continue
		}
		ingredients = append(ingredients, ing)
	}
	r.Ingredients = ingredients

	steps := make(Steps, 0, len(r.Steps))
	for _, s := range r.Steps {
		s.Text = strings.TrimSpace(s.Text)
		s.Image = strings.TrimSpace(s.Image)
		if s.Text == "" {
			continue
		}
		steps = append(steps, s)
	}
	r.Steps = steps

	if r.Difficulty == "" {
		r.Difficulty = DifficultyBeginner
	}

	r.Tags.Cuisine = cleanTags(r.Tags.Cuisine)
	r.Tags.Type = cleanTags(r.Tags.Type)
	r.Tags.Ingredient = cleanTags(r.Tags.Ingredient)
	r.Tags.Custom = cleanTags(r.Tags.Custom)
}

// Validate checks the fields a recipe needs before it can be saved
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	hasStep := false
	for _, s := range r.Steps {
		if strings.TrimSpace(s.Text) != "" {
			hasStep = true
			break
		}
	}
	if !hasStep {
		return &ValidationError{Field: "steps", Message: "at least one step with text is required"}
	}
	if r.PrepTime < 0 {
		return &ValidationError{Field: "prepTime", Message: "must not be negative"}
	}
	if r.CookTime < 0 {
		return &ValidationError{Field: "cookTime", Message: "must not be negative"}
	}
	if r.Difficulty != "" && !r.Difficulty.Valid() {
		return &ValidationError{Field: "difficulty", Message: fmt.Sprintf("unknown level %q", r.Difficulty)}
	}
	return nil
}

// DeriveIngredientTags returns the first token of every ingredient name, in order.
// Blank names are skipped; duplicates are kept.
func DeriveIngredientTags(ingredients []Ingredient) []string {
	tags := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		fields := strings.Fields(ing.Name)
		if len(fields) == 0 {
			continue
		}
		tags = append(tags, fields[0])
	}
	return tags
}

// Favorite marks a recipe as favorited; its existence is the flag
type Favorite struct {
	RecipeID string    `json:"recipeId"`
	AddedAt  time.Time `json:"addedAt"`
}

// DaysPerWeek is the number of day slots in a weekly menu
const DaysPerWeek = 7

// DaySlot returns the menu key for day i of the week, Monday being 0
func DaySlot(i int) string {
	return fmt.Sprintf("day%d", i)
}

// ValidDaySlot reports whether slot is one of day0..day6
func ValidDaySlot(slot string) bool {
	for i := 0; i < DaysPerWeek; i++ {
		if slot == DaySlot(i) {
			return true
		}
	}
	return false
}

// WeeklyMenu assigns recipes to the days of one ISO week
type WeeklyMenu struct {
	ID      string            `json:"id"`
	WeekKey string            `json:"weekKey"`
	Days    map[string]string `json:"days"`
}

// MenuID is the record id used for the menu of weekKey
func MenuID(weekKey string) string {
	return "menu_" + weekKey
}

// NewWeeklyMenu returns an empty, unsaved menu for weekKey
func NewWeeklyMenu(weekKey string) WeeklyMenu {
	return WeeklyMenu{
		ID:      MenuID(weekKey),
		WeekKey: weekKey,
		Days:    map[string]string{},
	}
}

// Categories is the advisory tag vocabulary per group
type Categories struct {
	ID         string   `json:"id"`
	Cuisine    []string `json:"cuisine"`
	Type       []string `json:"type"`
	Ingredient []string `json:"ingredient"`
}

// DefaultCategoriesID is the key of the categories singleton
const DefaultCategoriesID = "default"

// DefaultCategories is the vocabulary seeded on first access
func DefaultCategories() Categories {
	return Categories{
		ID:         DefaultCategoriesID,
		Cuisine:    []string{"中餐", "西餐", "日料", "韩餐", "东南亚"},
		Type:       []string{"主食", "汤类", "甜点", "小菜", "饮品", "凉菜"},
		Ingredient: []string{"鸡肉", "牛肉", "猪肉", "羊肉", "海鲜", "素食", "蛋奶"},
	}
}

// PresetTags is the fixed vocabulary offered when editing a recipe
type PresetTags struct {
	Cuisine    []string     `json:"cuisine"`
	Type       []string     `json:"type"`
	Difficulty []Difficulty `json:"difficulty"`
}

// Presets returns the editor vocabulary
func Presets() PresetTags {
	return PresetTags{
		Cuisine:    []string{"中餐", "西餐", "日韩料理", "东南亚菜", "中东菜", "其他"},
		Type:       []string{"主食类", "主菜类", "配菜类", "汤羹类", "点心甜品类", "饮品类", "酱料蘸料类"},
		Difficulty: append([]Difficulty(nil), Difficulties...),
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
