package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pbaille/cookbook/internal/domain"
)

// writeError maps domain errors onto status codes
func (s *Server) writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
		return
	}

	var serr *domain.StorageError
	if errors.As(err, &serr) {
		s.log.Error("storage failure", zap.String("op", serr.Op), zap.Error(serr.Err))
	} else {
		s.log.Error("request failed", zap.Error(err))
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

func badRequest(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "field": field})
}
