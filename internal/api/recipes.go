package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pbaille/cookbook/internal/catalog"
	"github.com/pbaille/cookbook/internal/domain"
	"github.com/pbaille/cookbook/internal/fetcher"
)

// recipeView is a recipe together with its favorite flag
type recipeView struct {
	domain.Recipe
	Favorite bool `json:"favorite"`
}

// filtersFromQuery reads filter params; each may repeat or hold a comma separated list
func filtersFromQuery(c *gin.Context) catalog.Filters {
	list := func(key string) []string {
		var out []string
		for _, v := range c.QueryArray(key) {
			out = append(out, catalog.SplitList(v)...)
		}
		return out
	}

	f := catalog.Filters{
		Search:     c.Query("q"),
		Cuisine:    list("cuisine"),
		Type:       list("type"),
		Ingredient: list("ingredient"),
		CustomTags: list("custom"),
	}
	for _, d := range list("difficulty") {
		f.Difficulty = append(f.Difficulty, domain.Difficulty(d))
	}
	return f
}

func (s *Server) listRecipes(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Snapshot().Filter(filtersFromQuery(c)))
}

func (s *Server) getRecipe(c *gin.Context) {
	r, err := s.svc.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if r == nil {
		notFound(c, "recipe")
		return
	}
	c.JSON(http.StatusOK, recipeView{Recipe: *r, Favorite: s.svc.Snapshot().IsFavorite(r.ID)})
}

func (s *Server) createRecipe(c *gin.Context) {
	var r domain.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, "body", "invalid json")
		return
	}
	// ids are always assigned by the store on create
	r.ID = ""
	s.save(c, r, http.StatusCreated)
}

func (s *Server) updateRecipe(c *gin.Context) {
	id := c.Param("id")
	existing, err := s.svc.GetRecipe(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if existing == nil {
		notFound(c, "recipe")
		return
	}

	var r domain.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, "body", "invalid json")
		return
	}
	r.ID = id
	r.CreatedAt = existing.CreatedAt
	s.save(c, r, http.StatusOK)
}

func (s *Server) save(c *gin.Context, r domain.Recipe, status int) {
	saved, err := s.svc.SaveRecipe(c.Request.Context(), r)
	if err != nil && saved == nil {
		s.writeError(c, err)
		return
	}
	if err != nil {
		// stored, only the snapshot reload failed
		s.log.Warn("recipe saved but snapshot is stale", zap.String("id", saved.ID), zap.Error(err))
	}
	c.JSON(status, recipeView{Recipe: *saved, Favorite: s.svc.Snapshot().IsFavorite(saved.ID)})
}

func (s *Server) deleteRecipe(c *gin.Context) {
	id := c.Param("id")
	existing, err := s.svc.GetRecipe(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if existing == nil {
		notFound(c, "recipe")
		return
	}

	if err := s.svc.DeleteRecipe(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) toggleFavorite(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.svc.Snapshot().Recipe(id); !ok {
		notFound(c, "recipe")
		return
	}

	on, err := s.svc.ToggleFavorite(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "favorite": on})
}

func (s *Server) listFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Snapshot().FavoriteRecipes())
}

func (s *Server) usedTags(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Snapshot().UsedTags())
}

func (s *Server) categories(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Snapshot().Categories)
}

func (s *Server) presets(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Presets())
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Stats())
}

func (s *Server) draw(c *gin.Context) {
	var dc catalog.DrawConstraints
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&dc); err != nil {
			badRequest(c, "body", "invalid json")
			return
		}
	}
	var have []string
	for _, ing := range dc.Ingredients {
		have = append(have, catalog.SplitList(ing)...)
	}
	dc.Ingredients = have

	if err := dc.Validate(); err != nil {
		s.writeError(c, err)
		return
	}

	res, ok := s.svc.Draw(dc)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recipe matches the constraints"})
		return
	}
	c.JSON(http.StatusOK, res)
}

type importRequest struct {
	URL string `json:"url"`
}

func (s *Server) importRecipe(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "invalid json")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		badRequest(c, "url", "url is required")
		return
	}

	r, err := s.importer(c.Request.Context(), req.URL)
	if errors.Is(err, fetcher.ErrNoRecipe) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.log.Warn("import failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	r.ID = ""
	s.save(c, *r, http.StatusCreated)
}
