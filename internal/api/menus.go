package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pbaille/cookbook/internal/catalog"
	"github.com/pbaille/cookbook/internal/domain"
)

// menuView is a weekly menu with each day resolved to its recipe
type menuView struct {
	Week string            `json:"week"`
	Prev string            `json:"prev"`
	Next string            `json:"next"`
	Days []catalog.MenuDay `json:"days"`
}

func (s *Server) renderMenu(c *gin.Context, week catalog.Week, menu *domain.WeeklyMenu) {
	c.JSON(http.StatusOK, menuView{
		Week: week.Key(),
		Prev: week.Prev().Key(),
		Next: week.Next().Key(),
		Days: s.svc.Snapshot().MenuView(week, *menu),
	})
}

func weekParam(c *gin.Context) (catalog.Week, bool) {
	week, err := catalog.ParseWeekKey(c.Param("week"))
	if err != nil {
		badRequest(c, "week", err.Error())
		return catalog.Week{}, false
	}
	return week, true
}

func (s *Server) currentMenu(c *gin.Context) {
	week := s.svc.CurrentWeek()
	menu, err := s.svc.WeeklyMenu(c.Request.Context(), week)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.renderMenu(c, week, menu)
}

func (s *Server) getMenu(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}
	menu, err := s.svc.WeeklyMenu(c.Request.Context(), week)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.renderMenu(c, week, menu)
}

type assignRequest struct {
	RecipeID string `json:"recipeId"`
}

func (s *Server) assignMenuDay(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "invalid json")
		return
	}

	menu, err := s.svc.AssignMenuDay(c.Request.Context(), week, c.Param("slot"), req.RecipeID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.renderMenu(c, week, menu)
}

func (s *Server) clearMenuDay(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}
	menu, err := s.svc.ClearMenuDay(c.Request.Context(), week, c.Param("slot"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.renderMenu(c, week, menu)
}
