package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pbaille/cookbook/internal/domain"
)

// ListFavorites returns all favorite marks, oldest first
func (s *Store) ListFavorites(ctx context.Context) ([]domain.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT recipe_id, added_at FROM favorites ORDER BY added_at, recipe_id")
	if err != nil {
		return nil, storageErr("list favorites", err)
	}
	defer rows.Close()

	favs := []domain.Favorite{}
	for rows.Next() {
		var f domain.Favorite
		if err := rows.Scan(&f.RecipeID, &f.AddedAt); err != nil {
			return nil, storageErr("scan favorite", err)
		}
		favs = append(favs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list favorites", err)
	}

	return favs, nil
}

// IsFavorite reports whether recipeID is marked as favorite
func (s *Store) IsFavorite(ctx context.Context, recipeID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM favorites WHERE recipe_id = ?", recipeID).Scan(&n)
	if err != nil {
		return false, storageErr("find favorite", err)
	}
	return n > 0, nil
}

// ToggleFavorite flips the favorite mark of recipeID and returns the new state.
// The read and the write are separate statements; concurrent togglers can lose an update.
func (s *Store) ToggleFavorite(ctx context.Context, recipeID string) (bool, error) {
	exists, err := s.IsFavorite(ctx, recipeID)
	if err != nil {
		return false, err
	}

	if exists {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM favorites WHERE recipe_id = ?", recipeID); err != nil {
			return false, storageErr("remove favorite", err)
		}
		return false, nil
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO favorites (recipe_id, added_at) VALUES (?, ?)",
		recipeID, s.now().UTC(),
	)
	if err != nil {
		return false, storageErr("add favorite", err)
	}
	return true, nil
}

// GetWeeklyMenu returns the menu of weekKey, or an empty unsaved one
func (s *Store) GetWeeklyMenu(ctx context.Context, weekKey string) (*domain.WeeklyMenu, error) {
	var (
		menu domain.WeeklyMenu
		days string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, week_key, days FROM weekly_menus WHERE week_key = ?",
		weekKey,
	).Scan(&menu.ID, &menu.WeekKey, &days)
	if errors.Is(err, sql.ErrNoRows) {
		empty := domain.NewWeeklyMenu(weekKey)
		return &empty, nil
	}
	if err != nil {
		return nil, storageErr("get weekly menu", err)
	}

	if err := json.Unmarshal([]byte(days), &menu.Days); err != nil {
		return nil, storageErr("decode weekly menu "+weekKey, err)
	}
	if menu.Days == nil {
		menu.Days = map[string]string{}
	}
	return &menu, nil
}

// SaveWeeklyMenu inserts or replaces the menu for its week
func (s *Store) SaveWeeklyMenu(ctx context.Context, menu domain.WeeklyMenu) error {
	if strings.TrimSpace(menu.WeekKey) == "" {
		return &domain.ValidationError{Field: "weekKey", Message: "is required"}
	}
	for slot := range menu.Days {
		if !domain.ValidDaySlot(slot) {
			return &domain.ValidationError{Field: "days", Message: fmt.Sprintf("unknown day slot %q", slot)}
		}
	}
	if menu.ID == "" {
		menu.ID = domain.MenuID(menu.WeekKey)
	}
	if menu.Days == nil {
		menu.Days = map[string]string{}
	}

	days, err := json.Marshal(menu.Days)
	if err != nil {
		return fmt.Errorf("marshal days: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO weekly_menus (id, week_key, days) VALUES (?, ?, ?)
		ON CONFLICT(week_key) DO UPDATE SET days = excluded.days
	`, menu.ID, menu.WeekKey, string(days))
	if err != nil {
		return storageErr("upsert weekly menu", err)
	}
	return nil
}

// GetCategories returns the tag vocabulary, seeding the defaults on first use
func (s *Store) GetCategories(ctx context.Context) (*domain.Categories, error) {
	var (
		c                        domain.Categories
		cuisine, typ, ingredient string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, cuisine, type, ingredient FROM categories WHERE id = ?",
		domain.DefaultCategoriesID,
	).Scan(&c.ID, &cuisine, &typ, &ingredient)
	if errors.Is(err, sql.ErrNoRows) {
		return s.SaveCategories(ctx, domain.DefaultCategories())
	}
	if err != nil {
		return nil, storageErr("get categories", err)
	}

	for _, f := range []struct {
		raw string
		dst *[]string
	}{{cuisine, &c.Cuisine}, {typ, &c.Type}, {ingredient, &c.Ingredient}} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, storageErr("decode categories", err)
		}
	}
	return &c, nil
}

// SaveCategories replaces the tag vocabulary
func (s *Store) SaveCategories(ctx context.Context, c domain.Categories) (*domain.Categories, error) {
	c.ID = domain.DefaultCategoriesID

	cuisine, err := json.Marshal(nonNil(c.Cuisine))
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}
	typ, err := json.Marshal(nonNil(c.Type))
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}
	ingredient, err := json.Marshal(nonNil(c.Ingredient))
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO categories (id, cuisine, type, ingredient) VALUES (?, ?, ?, ?)",
		c.ID, string(cuisine), string(typ), string(ingredient),
	)
	if err != nil {
		return nil, storageErr("save categories", err)
	}
	return &c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
