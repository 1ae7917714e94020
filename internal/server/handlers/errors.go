package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

// errBadQuery marks query parameters that could not be parsed.
var errBadQuery = errors.New("invalid query parameter")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadQuery),
		errors.Is(err, models.ErrInvalidWindow),
		errors.Is(err, models.ErrInvalidHomeID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error body and records err on the context so
// the request logger picks it up.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	logger.Debug("rejected request", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}
