package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIngredientTags(t *testing.T) {
	got := DeriveIngredientTags([]Ingredient{
		{Name: "番茄", Amount: "2个"},
		{Name: "  "},
		{Name: "green onion", Amount: "1"},
		{Name: "番茄"},
	})
	assert.Equal(t, []string{"番茄", "green", "番茄"}, got)
}

func TestRecipeValidate(t *testing.T) {
	tests := []struct {
		name   string
		recipe Recipe
		field  string
	}{
		{"missing name", Recipe{Steps: Steps{{Text: "炒"}}}, "name"},
		{"blank name", Recipe{Name: "  ", Steps: Steps{{Text: "炒"}}}, "name"},
		{"no steps", Recipe{Name: "番茄炒蛋"}, "steps"},
		{"blank steps", Recipe{Name: "番茄炒蛋", Steps: Steps{{Text: " "}}}, "steps"},
		{"negative prep", Recipe{Name: "a", Steps: Steps{{Text: "b"}}, PrepTime: -1}, "prepTime"},
		{"negative cook", Recipe{Name: "a", Steps: Steps{{Text: "b"}}, CookTime: -5}, "cookTime"},
		{"bad difficulty", Recipe{Name: "a", Steps: Steps{{Text: "b"}}, Difficulty: "impossible"}, "difficulty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.recipe.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	ok := Recipe{Name: "番茄炒蛋", Steps: Steps{{Text: "炒"}}}
	assert.NoError(t, ok.Validate())
}

func TestRecipeNormalize(t *testing.T) {
	r := Recipe{
		Name:        "  红烧肉 ",
		Ingredients: Ingredients{{Name: " 五花肉 ", Amount: " 500g"}, {Name: ""}},
		Steps:       Steps{{Text: ""}, {Text: " 切块 "}},
		Tags:        Tags{Custom: []string{"", " 下饭菜 "}},
	}
	r.Normalize()

	assert.Equal(t, "红烧肉", r.Name)
	assert.Equal(t, Ingredients{{Name: "五花肉", Amount: "500g"}}, r.Ingredients)
	assert.Equal(t, Steps{{Text: "切块"}}, r.Steps)
	assert.Equal(t, DifficultyBeginner, r.Difficulty)
	assert.Equal(t, []string{"下饭菜"}, r.Tags.Custom)
	assert.NotNil(t, r.Tags.Cuisine)
}

func TestLegacyShapesDecode(t *testing.T) {
	t.Run("delimited text", func(t *testing.T) {
		var r Recipe
		err := json.Unmarshal([]byte(`{
			"name": "番茄炒蛋",
			"ingredients": "番茄 2个\n鸡蛋 3 个\n\n",
			"steps": "1. 番茄切块\n2．鸡蛋打散\n"
		}`), &r)
		require.NoError(t, err)
		assert.Equal(t, Ingredients{{Name: "番茄", Amount: "2个"}, {Name: "鸡蛋", Amount: "3 个"}}, r.Ingredients)
		assert.Equal(t, Steps{{Text: "番茄切块"}, {Text: "鸡蛋打散"}}, r.Steps)
	})

	t.Run("string arrays", func(t *testing.T) {
		var r Recipe
		err := json.Unmarshal([]byte(`{"ingredients": ["盐 适量"], "steps": ["炒"]}`), &r)
		require.NoError(t, err)
		assert.Equal(t, Ingredients{{Name: "盐", Amount: "适量"}}, r.Ingredients)
		assert.Equal(t, Steps{{Text: "炒"}}, r.Steps)
	})

	t.Run("structured with stepImage", func(t *testing.T) {
		var r Recipe
		err := json.Unmarshal([]byte(`{
			"ingredients": [{"name": "番茄", "amount": "2个"}],
			"steps": [{"text": "炒", "stepImage": "data:image/png;base64,AA=="}]
		}`), &r)
		require.NoError(t, err)
		assert.Equal(t, Ingredients{{Name: "番茄", Amount: "2个"}}, r.Ingredients)
		assert.Equal(t, "data:image/png;base64,AA==", r.Steps[0].Image)
	})

	t.Run("null", func(t *testing.T) {
		var r Recipe
		require.NoError(t, json.Unmarshal([]byte(`{"ingredients": null, "steps": null}`), &r))
		assert.Empty(t, r.Ingredients)
		assert.Empty(t, r.Steps)
	})
}

func TestDaySlots(t *testing.T) {
	assert.Equal(t, "day0", DaySlot(0))
	assert.True(t, ValidDaySlot("day6"))
	assert.False(t, ValidDaySlot("day7"))
	assert.False(t, ValidDaySlot("monday"))

	m := NewWeeklyMenu("2024-W1")
	assert.Equal(t, "menu_2024-W1", m.ID)
	assert.Empty(t, m.Days)
}
