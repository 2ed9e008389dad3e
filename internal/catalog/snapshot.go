package catalog

import (
	"time"

	"github.com/pbaille/cookbook/internal/domain"
)

// Snapshot is a read-only copy of the catalog as last loaded from the store.
// It is replaced as a whole after every mutation and never edited in place.
type Snapshot struct {
	Recipes    []domain.Recipe
	Favorites  map[string]time.Time
	Categories domain.Categories
	LoadedAt   time.Time
}

func newSnapshot(recipes []domain.Recipe, favs []domain.Favorite, cats domain.Categories, at time.Time) *Snapshot {
	s := &Snapshot{
		Recipes:    recipes,
		Favorites:  make(map[string]time.Time, len(favs)),
		Categories: cats,
		LoadedAt:   at,
	}
	for _, f := range favs {
		s.Favorites[f.RecipeID] = f.AddedAt
	}
	return s
}

// Recipe looks a recipe up by ID
func (s *Snapshot) Recipe(id string) (domain.Recipe, bool) {
	for _, r := range s.Recipes {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Recipe{}, false
}

// IsFavorite reports whether id is in the favorite set
func (s *Snapshot) IsFavorite(id string) bool {
	_, ok := s.Favorites[id]
	return ok
}

// FavoriteRecipes returns favorited recipes in catalog order
func (s *Snapshot) FavoriteRecipes() []domain.Recipe {
	out := []domain.Recipe{}
	for _, r := range s.Recipes {
		if s.IsFavorite(r.ID) {
			out = append(out, r)
		}
	}
	return out
}

// Filter applies f to the loaded recipes
func (s *Snapshot) Filter(f Filters) []domain.Recipe {
	return FilterRecipes(s.Recipes, f)
}

// UsedTags returns the tag values in use on the loaded recipes
func (s *Snapshot) UsedTags() UsedTags {
	return UsedTagsFromRecipes(s.Recipes)
}

// Stats summarizes the catalog for the home view
type Stats struct {
	Total      int `json:"total"`
	Favorites  int `json:"favorites"`
	RecentWeek int `json:"recentWeek"`
}

// Stats counts recipes, favorites and recipes created in the seven days before now
func (s *Snapshot) Stats(now time.Time) Stats {
	st := Stats{Total: len(s.Recipes), Favorites: len(s.Favorites)}
	for _, r := range s.Recipes {
		if now.Sub(r.CreatedAt) < 7*24*time.Hour {
			st.RecentWeek++
		}
	}
	return st
}

// MenuDay is one resolved day of a weekly menu
type MenuDay struct {
	Slot     string         `json:"slot"`
	Label    string         `json:"label"`
	Date     string         `json:"date"`
	RecipeID string         `json:"recipeId,omitempty"`
	Recipe   *domain.Recipe `json:"recipe,omitempty"`
}

// MenuView resolves the recipe of each day of menu. Assignments to recipes that
// no longer exist keep their ID but carry no Recipe.
func (s *Snapshot) MenuView(week Week, menu domain.WeeklyMenu) []MenuDay {
	days := make([]MenuDay, 0, domain.DaysPerWeek)
	for i := 0; i < domain.DaysPerWeek; i++ {
		slot := domain.DaySlot(i)
		d := MenuDay{
			Slot:     slot,
			Label:    DayLabels[i],
			Date:     week.Day(i).Format("2006-01-02"),
			RecipeID: menu.Days[slot],
		}
		if d.RecipeID != "" {
			if r, ok := s.Recipe(d.RecipeID); ok {
				d.Recipe = &r
			}
		}
		days = append(days, d)
	}
	return days
}
