package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/cookbook/internal/domain"
)

const graphPage = `<!doctype html>
<html><head><title>Braised Pork | Example Kitchen</title>
<script type="application/ld+json">{ not json </script>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {"@type": "WebSite", "name": "Example Kitchen"},
    {
      "@type": ["Recipe"],
      "name": "Red Braised Pork",
      "description": "<p>Sticky &amp; sweet.</p>",
      "image": [{"@type": "ImageObject", "url": "https://example.com/pork.jpg"}],
      "prepTime": "PT15M",
      "cookTime": "PT1H30M",
      "recipeCuisine": "Chinese",
      "recipeCategory": ["Main course"],
      "keywords": "pork, braise",
      "recipeIngredient": ["500 g pork belly", "2 tbsp soy sauce", "ginger", ""],
      "recipeInstructions": [
        {"@type": "HowToSection", "name": "Prep", "itemListElement": [
          {"@type": "HowToStep", "text": "Blanch the pork."}
        ]},
        {"@type": "HowToStep", "text": "Braise <b>slowly</b>."}
      ],
      "video": {"@type": "VideoObject", "contentUrl": "https://example.com/pork.mp4"}
    }
  ]
}
</script></head><body><h1>ignored</h1></body></html>`

func TestExtractRecipeFromGraph(t *testing.T) {
	r, err := ExtractRecipe([]byte(graphPage))
	require.NoError(t, err)

	assert.Equal(t, "Red Braised Pork", r.Name)
	assert.Equal(t, "Sticky & sweet.", r.Description)
	assert.Equal(t, "https://example.com/pork.jpg", r.CoverImage)
	assert.Equal(t, "https://example.com/pork.mp4", r.VideoURL)
	assert.Equal(t, 15, r.PrepTime)
	assert.Equal(t, 90, r.CookTime)
	assert.Equal(t, domain.DifficultyBeginner, r.Difficulty)

	assert.Equal(t, domain.Ingredients{
		{Name: "pork belly", Amount: "500 g"},
		{Name: "soy sauce", Amount: "2 tbsp"},
		{Name: "ginger"},
	}, r.Ingredients)
	assert.Equal(t, domain.Steps{{Text: "Blanch the pork."}, {Text: "Braise slowly ."}}, r.Steps)

	assert.Equal(t, []string{"Chinese"}, r.Tags.Cuisine)
	assert.Equal(t, []string{"Main course"}, r.Tags.Type)
	assert.Equal(t, []string{"pork", "braise"}, r.Tags.Custom)
	assert.NoError(t, r.Validate())
}

func TestExtractRecipeShapes(t *testing.T) {
	page := `<html><head><title>番茄炒蛋</title>
<script type="application/ld+json">[{"@type":"Recipe","image":"https://e.com/a.jpg",
"totalTime":"PT20M","recipeIngredient":["番茄 2个","鸡蛋 3个"],
"recipeInstructions":"1. 番茄切块\n2. 鸡蛋打散"}]</script></head></html>`

	r, err := ExtractRecipe([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, "番茄炒蛋", r.Name, "falls back to the page title")
	assert.Equal(t, "https://e.com/a.jpg", r.CoverImage)
	assert.Equal(t, 0, r.PrepTime)
	assert.Equal(t, 20, r.CookTime)
	assert.Equal(t, domain.Ingredients{{Name: "番茄", Amount: "2个"}, {Name: "鸡蛋", Amount: "3个"}}, r.Ingredients)
	assert.Equal(t, domain.Steps{{Text: "番茄切块"}, {Text: "鸡蛋打散"}}, r.Steps)
}

func TestExtractRecipeMissing(t *testing.T) {
	_, err := ExtractRecipe([]byte(`<html><script type="application/ld+json">{"@type":"Article"}</script></html>`))
	assert.ErrorIs(t, err, ErrNoRecipe)

	_, err = ExtractRecipe([]byte(`<html><body>just text</body></html>`))
	assert.ErrorIs(t, err, ErrNoRecipe)
}

func TestMinutes(t *testing.T) {
	tests := map[string]int{
		"PT10M":    10,
		"PT1H":     60,
		"PT1H30M":  90,
		"P1DT2H":   1560,
		"PT90S":    2,
		"pt5m":     5,
		"":         0,
		"10 mins":  0,
		"PT0.5S":   1,
		"P0DT0H5M": 5,
	}
	for in, want := range tests {
		assert.Equal(t, want, minutes(in), in)
	}
}

func TestImportIngredient(t *testing.T) {
	tests := []struct {
		line string
		want domain.Ingredient
	}{
		{"2 cups flour", domain.Ingredient{Name: "flour", Amount: "2 cups"}},
		{"1 1/2 tsp salt", domain.Ingredient{Name: "salt", Amount: "1 1/2 tsp"}},
		{"½ onion", domain.Ingredient{Name: "onion", Amount: "½"}},
		{"3 eggs", domain.Ingredient{Name: "eggs", Amount: "3"}},
		{"五花肉 500g", domain.Ingredient{Name: "五花肉", Amount: "500g"}},
		{"4", domain.Ingredient{Name: "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := importIngredient(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := importIngredient("   ")
	assert.False(t, ok)
}

func TestFetchRecipe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pork":
			assert.Contains(t, r.Header.Get("User-Agent"), "cookbook")
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(graphPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r, err := FetchRecipe(context.Background(), srv.URL+"/pork")
	require.NoError(t, err)
	assert.Equal(t, "Red Braised Pork", r.Name)
	assert.Empty(t, r.ID)

	_, err = FetchRecipe(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")

	_, err = FetchRecipe(context.Background(), "ftp://example.com/x")
	assert.ErrorContains(t, err, "unsupported scheme")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FetchRecipe(ctx, srv.URL+"/pork")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com"))
	assert.True(t, IsURL(" www.example.com"))
	assert.False(t, IsURL("番茄炒蛋"))
}
