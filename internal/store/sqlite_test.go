package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/cookbook/internal/catalog"
	"github.com/pbaille/cookbook/internal/domain"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "cookbook.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func tomatoEggs() domain.Recipe {
	return domain.Recipe{
		Name:        "番茄炒蛋",
		Ingredients: domain.Ingredients{{Name: "番茄", Amount: "2个"}},
		Steps:       domain.Steps{{Text: "炒"}},
	}
}

func TestSaveGetDeleteRecipe(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	saved, err := s.SaveRecipe(ctx, tomatoEggs())
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, []string{"番茄"}, saved.IngredientTags)

	got, err := s.GetRecipe(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "番茄炒蛋", got.Name)
	assert.Equal(t, []string{"番茄"}, got.IngredientTags)
	assert.Equal(t, domain.DifficultyBeginner, got.Difficulty)
	assert.True(t, got.CreatedAt.Equal(saved.CreatedAt))

	require.NoError(t, s.DeleteRecipe(ctx, saved.ID))
	got, err = s.GetRecipe(ctx, saved.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// deleting again is not an error
	assert.NoError(t, s.DeleteRecipe(ctx, saved.ID))
}

func TestGetRecipeMissing(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetRecipe(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveRecipeGeneratesUniqueStableIDs(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "cookbook.db")
	s, err := New(dbPath)
	require.NoError(t, err)

	ids := map[string]bool{}
	for i := 0; i < 20; i++ {
		r, err := s.SaveRecipe(ctx, tomatoEggs())
		require.NoError(t, err)
		assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
		ids[r.ID] = true
	}
	require.NoError(t, s.Close())

	// reopen: schema init must not touch existing rows
	s, err = New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	recipes, err := s.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 20)
	for _, r := range recipes {
		assert.True(t, ids[r.ID])
	}
}

func TestSaveRecipeTimestamps(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, WithClock(func() time.Time { return now }))

	first, err := s.SaveRecipe(ctx, tomatoEggs())
	require.NoError(t, err)
	assert.True(t, first.CreatedAt.Equal(now))
	assert.True(t, first.UpdatedAt.Equal(now))

	now = now.Add(time.Hour)
	update := *first
	update.CreatedAt = time.Time{}
	update.Ingredients = domain.Ingredients{{Name: "鸡蛋 土鸡", Amount: "3个"}, {Name: "番茄"}}

	second, err := s.SaveRecipe(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt), "createdAt must be preserved")
	assert.True(t, second.UpdatedAt.Equal(now))
	assert.Equal(t, []string{"鸡蛋", "番茄"}, second.IngredientTags)

	got, err := s.GetRecipe(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"鸡蛋", "番茄"}, got.IngredientTags)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt))
}

func TestSaveRecipeIgnoresClientCreatedAtOnCreate(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, WithClock(func() time.Time { return now }))

	r := tomatoEggs()
	r.CreatedAt = time.Date(2001, 1, 1, 0, 0, 0, 0, time.FixedZone("CST", 8*3600))
	saved, err := s.SaveRecipe(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, saved.CreatedAt.Equal(now))

	got, err := s.GetRecipe(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestSaveRecipeIgnoresHandEditedIngredientTags(t *testing.T) {
	r := tomatoEggs()
	r.IngredientTags = []string{"牛肉"}

	saved, err := newTestStore(t).SaveRecipe(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, []string{"番茄"}, saved.IngredientTags)
}

func TestSaveRecipeValidation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SaveRecipe(context.Background(), domain.Recipe{Name: "空"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "steps", verr.Field)

	recipes, err := s.ListRecipes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestLegacyTextColumnsAreNormalized(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO recipes (id, name, ingredients, steps, created_at, updated_at)
		VALUES ('r_1700000000000', '红烧肉', '五花肉 500g
冰糖 30g', '1. 五花肉切块焯水
2. 冰糖炒糖色', ?, ?)
	`, time.Now(), time.Now())
	require.NoError(t, err)

	got, err := s.GetRecipe(ctx, "r_1700000000000")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.Ingredients{{Name: "五花肉", Amount: "500g"}, {Name: "冰糖", Amount: "30g"}}, got.Ingredients)
	assert.Equal(t, domain.Steps{{Text: "五花肉切块焯水"}, {Text: "冰糖炒糖色"}}, got.Steps)
	assert.Equal(t, []string{"五花肉", "冰糖"}, got.IngredientTags)

	recipes, err := s.ListRecipes(ctx)
	require.NoError(t, err)
	found := catalog.FilterRecipes(recipes, catalog.Filters{Search: "五花肉"})
	require.Len(t, found, 1)
	assert.Equal(t, "红烧肉", found[0].Name)
	assert.Len(t, catalog.Candidates(recipes, catalog.DrawConstraints{Ingredients: []string{"五花肉"}}), 1)
}

func TestLegacyTextThatLooksLikeJSON(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.SaveRecipe(ctx, tomatoEggs())
	require.NoError(t, err)

	_, err = s.db.Exec(`
		INSERT INTO recipes (id, name, ingredients, steps, created_at, updated_at)
		VALUES ('legacy1', '拍黄瓜', '[主料] 黄瓜 1根', '"拍" 黄瓜', ?, ?)
	`, time.Now(), time.Now())
	require.NoError(t, err)

	recipes, err := s.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	got, err := s.GetRecipe(ctx, "legacy1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.Ingredients{{Name: "[主料]", Amount: "黄瓜 1根"}}, got.Ingredients)
	assert.Equal(t, domain.Steps{{Text: `"拍" 黄瓜`}}, got.Steps)
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	on, err := s.ToggleFavorite(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, on)

	favs, err := s.ListFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "r1", favs[0].RecipeID)

	on, err = s.ToggleFavorite(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, on)

	favs, err = s.ListFavorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestDeleteRecipeRemovesFavorite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r, err := s.SaveRecipe(ctx, tomatoEggs())
	require.NoError(t, err)
	_, err = s.ToggleFavorite(ctx, r.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteRecipe(ctx, r.ID))
	fav, err := s.IsFavorite(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestWeeklyMenu(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	menu, err := s.GetWeeklyMenu(ctx, "2024-W1")
	require.NoError(t, err)
	assert.Equal(t, "menu_2024-W1", menu.ID)
	assert.Empty(t, menu.Days)

	menu.Days["day0"] = "r1"
	require.NoError(t, s.SaveWeeklyMenu(ctx, *menu))

	menu.Days["day6"] = "r2"
	require.NoError(t, s.SaveWeeklyMenu(ctx, *menu))

	got, err := s.GetWeeklyMenu(ctx, "2024-W1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"day0": "r1", "day6": "r2"}, got.Days)

	other, err := s.GetWeeklyMenu(ctx, "2024-W2")
	require.NoError(t, err)
	assert.Empty(t, other.Days)
}

func TestSaveWeeklyMenuRejectsBadSlot(t *testing.T) {
	err := newTestStore(t).SaveWeeklyMenu(context.Background(), domain.WeeklyMenu{
		WeekKey: "2024-W1",
		Days:    map[string]string{"day9": "r1"},
	})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "days", verr.Field)
}

func TestCategoriesSeededOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c, err := s.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategories(), *c)

	c.Cuisine = append(c.Cuisine, "法餐")
	_, err = s.SaveCategories(ctx, *c)
	require.NoError(t, err)

	again, err := s.GetCategories(ctx)
	require.NoError(t, err)
	assert.Contains(t, again.Cuisine, "法餐")
}

func TestClosedStoreReturnsStorageError(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "cookbook.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.ListRecipes(context.Background())
	var serr *domain.StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "list recipes", serr.Op)
}
