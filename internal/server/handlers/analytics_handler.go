package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

// AnalyticsService exposes the system-wide consumption computations.
type AnalyticsService interface {
	SystemTrends(ctx context.Context, windowDays int) ([]models.TrendPoint, error)
	ConsumptionDistribution(ctx context.Context) ([]models.DistributionBucket, error)
	HomesWithAlerts(ctx context.Context) ([]models.HomeAlert, error)
	Overview(ctx context.Context, windowDays int) (*models.Overview, error)
}

// AnalyticsHandler serves the /api/analytics routes.
type AnalyticsHandler struct {
	svc         AnalyticsService
	defaultDays int
	logger      *zap.Logger
}

// NewAnalyticsHandler constructs the HTTP handler adapter. defaultDays is
// used when the days query parameter is absent.
func NewAnalyticsHandler(svc AnalyticsService, defaultDays int, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultDays < 1 {
		defaultDays = 30
	}
	return &AnalyticsHandler{svc: svc, defaultDays: defaultDays, logger: logger}
}

// SystemTrends returns the daily trend series.
func (h *AnalyticsHandler) SystemTrends(c *gin.Context) {
	days, err := h.windowDays(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	points, err := h.svc.SystemTrends(c.Request.Context(), days)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// Distribution returns the four usage bands.
func (h *AnalyticsHandler) Distribution(c *gin.Context) {
	buckets, err := h.svc.ConsumptionDistribution(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// HomesWithAlerts returns today's homes at or above the warning threshold.
func (h *AnalyticsHandler) HomesWithAlerts(c *gin.Context) {
	alerts, err := h.svc.HomesWithAlerts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// Overview returns trends, distribution and alerts in one payload.
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	days, err := h.windowDays(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	overview, err := h.svc.Overview(c.Request.Context(), days)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *AnalyticsHandler) windowDays(c *gin.Context) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return h.defaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: days=%q", errBadQuery, raw)
	}
	return days, nil
}
