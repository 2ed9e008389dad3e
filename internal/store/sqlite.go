package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/cookbook/internal/domain"
)

//go:embed schema.sql
var schema string

// Store handles database operations
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New opens the database at dbPath and makes sure the schema exists.
// Running it against an initialized database leaves existing rows untouched.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, storageErr("open database", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, storageErr("init schema", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storageErr("ping database", err)
	}
	return nil
}

// ListRecipes returns every recipe, oldest first
func (s *Store) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, cover_image, ingredients, steps, prep_time, cook_time,
		       difficulty, tags, ingredient_tags, video_url, created_at, updated_at
		FROM recipes
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, storageErr("list recipes", err)
	}
	defer rows.Close()

	recipes := []domain.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list recipes", err)
	}

	return recipes, nil
}

// GetRecipe retrieves a recipe by ID. A missing recipe returns nil without error.
func (s *Store) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, cover_image, ingredients, steps, prep_time, cook_time,
		       difficulty, tags, ingredient_tags, video_url, created_at, updated_at
		FROM recipes
		WHERE id = ?
	`, id)

	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// SaveRecipe inserts or replaces a recipe and returns what was stored.
// A new ID is generated when none is set. CreatedAt is now for a new row and kept for an existing one,
// UpdatedAt is always now and IngredientTags are derived from Ingredients.
func (s *Store) SaveRecipe(ctx context.Context, r domain.Recipe) (*domain.Recipe, error) {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, "SELECT created_at FROM recipes WHERE id = ?", r.ID).Scan(&createdAt)
	switch {
	case err == nil:
		r.CreatedAt = createdAt
	case errors.Is(err, sql.ErrNoRows):
		r.CreatedAt = now
	default:
		return nil, storageErr("find recipe", err)
	}
	r.UpdatedAt = now
	r.IngredientTags = domain.DeriveIngredientTags(r.Ingredients)

	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("marshal ingredients: %w", err)
	}
	steps, err := json.Marshal(r.Steps)
	if err != nil {
		return nil, fmt.Errorf("marshal steps: %w", err)
	}
	tags, err := json.Marshal(r.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	ingredientTags, err := json.Marshal(r.IngredientTags)
	if err != nil {
		return nil, fmt.Errorf("marshal ingredient tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recipes (id, name, description, cover_image, ingredients, steps, prep_time, cook_time,
		                     difficulty, tags, ingredient_tags, video_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			cover_image = excluded.cover_image,
			ingredients = excluded.ingredients,
			steps = excluded.steps,
			prep_time = excluded.prep_time,
			cook_time = excluded.cook_time,
			difficulty = excluded.difficulty,
			tags = excluded.tags,
			ingredient_tags = excluded.ingredient_tags,
			video_url = excluded.video_url,
			updated_at = excluded.updated_at
	`,
		r.ID, r.Name, r.Description, r.CoverImage, string(ingredients), string(steps), r.PrepTime, r.CookTime,
		string(r.Difficulty), string(tags), string(ingredientTags), r.VideoURL, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return nil, storageErr("upsert recipe", err)
	}

	return &r, nil
}

// DeleteRecipe removes a recipe and its favorite mark. Unknown IDs are ignored.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id); err != nil {
		return storageErr("delete recipe", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM favorites WHERE recipe_id = ?", id); err != nil {
		return storageErr("delete favorite", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(sc scanner) (*domain.Recipe, error) {
	var (
		r                                        domain.Recipe
		difficulty                               string
		ingredients, steps, tags, ingredientTags string
	)
	err := sc.Scan(
		&r.ID, &r.Name, &r.Description, &r.CoverImage, &ingredients, &steps, &r.PrepTime, &r.CookTime,
		&difficulty, &tags, &ingredientTags, &r.VideoURL, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storageErr("scan recipe", err)
	}
	r.Difficulty = domain.Difficulty(difficulty)

	// ingredients and steps may hold plain text written by older versions
	r.Ingredients = decodeIngredients(ingredients)
	r.Steps = decodeSteps(steps)
	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return nil, storageErr("decode recipe "+r.ID, err)
	}
	// the stored column is only a cache and is empty on rows written by older versions
	r.IngredientTags = domain.DeriveIngredientTags(r.Ingredients)

	return &r, nil
}

// decodeIngredients reads JSON when it parses and falls back to one ingredient per line,
// so text like "[主料] 黄瓜 1根" still loads.
func decodeIngredients(raw string) domain.Ingredients {
	if isJSON(raw) {
		var out domain.Ingredients
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out
		}
	}
	return domain.ParseIngredientLines(raw)
}

func decodeSteps(raw string) domain.Steps {
	if isJSON(raw) {
		var out domain.Steps
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out
		}
	}
	return domain.ParseStepLines(raw)
}

func isJSON(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw != "" && (raw == "null" || raw[0] == '[' || raw[0] == '"')
}

func storageErr(op string, err error) error {
	return &domain.StorageError{Op: op, Err: err}
}
