package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/server/handlers"
)

const requestIDHeader = "X-Request-Id"

// Handlers bundles the HTTP adapters mounted by the router.
type Handlers struct {
	Analytics   *handlers.AnalyticsHandler
	Consumption *handlers.ConsumptionHandler
}

// New wires the Gin engine with required routes and middlewares. Metrics are
// served from gatherer, or the default registry when it is nil.
func New(h Handlers, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	analytics := r.Group("/api/analytics")
	analytics.GET("/system-trends", h.Analytics.SystemTrends)
	analytics.GET("/consumption-distribution", h.Analytics.Distribution)
	analytics.GET("/homes-with-alerts", h.Analytics.HomesWithAlerts)
	analytics.GET("/overview", h.Analytics.Overview)

	consumption := r.Group("/api/consumption/home/:id")
	consumption.GET("", h.Consumption.ByHome)
	consumption.GET("/range", h.Consumption.ByDateRange)
	consumption.GET("/weekly", h.Consumption.Weekly)
	consumption.GET("/monthly", h.Consumption.Monthly)
	consumption.GET("/total", h.Consumption.Total)
	consumption.GET("/average", h.Consumption.Average)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	logger.Info("router initialized")

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := ensureRequestID(c)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if lastErr := c.Errors.Last(); lastErr != nil {
			fields = append(fields, zap.Error(lastErr.Err))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request completed", fields...)
		case route == "/metrics" || route == "/healthz":
			logger.Debug("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}

func ensureRequestID(c *gin.Context) string {
	requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header(requestIDHeader, requestID)
	return requestID
}
