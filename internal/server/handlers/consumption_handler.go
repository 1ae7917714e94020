package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

// ConsumptionService exposes the per-home rollups.
type ConsumptionService interface {
	ByHome(ctx context.Context, homeID string, limit int64) ([]models.DailyConsumptionRecord, error)
	ByDateRange(ctx context.Context, homeID string, start, end time.Time) ([]models.DailyConsumptionRecord, error)
	Weekly(ctx context.Context, homeID string) ([]models.DailyConsumptionRecord, error)
	Monthly(ctx context.Context, homeID string) ([]models.DailyConsumptionRecord, error)
	TotalByHome(ctx context.Context, homeID string) (float64, error)
	AverageByHome(ctx context.Context, homeID string) (float64, error)
}

// ConsumptionHandler serves the /api/consumption routes.
type ConsumptionHandler struct {
	svc    ConsumptionService
	logger *zap.Logger
}

// NewConsumptionHandler constructs the HTTP handler adapter.
func NewConsumptionHandler(svc ConsumptionService, logger *zap.Logger) *ConsumptionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsumptionHandler{svc: svc, logger: logger}
}

// ByHome lists a home's records newest first, optionally capped by limit.
func (h *ConsumptionHandler) ByHome(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, h.logger, fmt.Errorf("%w: limit=%q", errBadQuery, raw))
			return
		}
		limit = n
	}

	records, err := h.svc.ByHome(c.Request.Context(), c.Param("id"), limit)
	h.writeRecords(c, records, err)
}

// ByDateRange lists a home's records between start and end, both inclusive.
func (h *ConsumptionHandler) ByDateRange(c *gin.Context) {
	start, err := dayParam(c, "start")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	end, err := dayParam(c, "end")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	records, err := h.svc.ByDateRange(c.Request.Context(), c.Param("id"), start, end)
	h.writeRecords(c, records, err)
}

// Weekly lists the home's records for the trailing week.
func (h *ConsumptionHandler) Weekly(c *gin.Context) {
	records, err := h.svc.Weekly(c.Request.Context(), c.Param("id"))
	h.writeRecords(c, records, err)
}

// Monthly lists the home's records for the trailing month.
func (h *ConsumptionHandler) Monthly(c *gin.Context) {
	records, err := h.svc.Monthly(c.Request.Context(), c.Param("id"))
	h.writeRecords(c, records, err)
}

// Total returns the sum of all recorded liters for the home.
func (h *ConsumptionHandler) Total(c *gin.Context) {
	homeID := c.Param("id")
	total, err := h.svc.TotalByHome(c.Request.Context(), homeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"homeId": homeID, "total": total})
}

// Average returns the mean daily liters for the home.
func (h *ConsumptionHandler) Average(c *gin.Context) {
	homeID := c.Param("id")
	avg, err := h.svc.AverageByHome(c.Request.Context(), homeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"homeId": homeID, "average": avg})
}

func (h *ConsumptionHandler) writeRecords(c *gin.Context, records []models.DailyConsumptionRecord, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if records == nil {
		records = []models.DailyConsumptionRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func dayParam(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", errBadQuery, name)
	}
	day, err := models.ParseDay(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q", errBadQuery, name, raw)
	}
	return day, nil
}
