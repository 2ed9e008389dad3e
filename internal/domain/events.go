package domain

import "time"

// Change event types published after a successful mutation
const (
	EventRecipeSaved     = "recipe.saved"
	EventRecipeDeleted   = "recipe.deleted"
	EventFavoriteToggled = "favorite.toggled"
	EventMenuUpdated     = "menu.updated"
)

// ChangeEvent tells listeners that the catalog changed and views should reload
type ChangeEvent struct {
	Type     string    `json:"type"`
	ID       string    `json:"id"`
	Favorite *bool     `json:"favorite,omitempty"`
	At       time.Time `json:"at"`
}
