package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/watermeter/internal/domain/models"
	"github.com/mamadbah2/watermeter/internal/metrics"
	"github.com/mamadbah2/watermeter/internal/repository/memory"
	"github.com/mamadbah2/watermeter/internal/server/handlers"
	"github.com/mamadbah2/watermeter/internal/service/analytics"
	"github.com/mamadbah2/watermeter/internal/service/reporting"
)

func newTestRouter(t *testing.T, logger *zap.Logger) (http.Handler, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	analyticsSvc := analytics.NewService(repo, analytics.Options{}, m, logger)
	reportingSvc := reporting.NewService(repo, time.UTC, logger)

	r := New(Handlers{
		Analytics:   handlers.NewAnalyticsHandler(analyticsSvc, 30, logger),
		Consumption: handlers.NewConsumptionHandler(reportingSvc, logger),
	}, reg, logger)
	return r, repo
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t, zap.NewNop())

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestIDIsGeneratedOrEchoed(t *testing.T) {
	r, _ := newTestRouter(t, zap.NewNop())

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = serve(r, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestAnalyticsAndConsumptionRoutes(t *testing.T) {
	r, repo := newTestRouter(t, zap.NewNop())
	ctx := context.Background()
	_, err := repo.InsertHome(ctx, models.Home{ID: "h1", Name: "Home 1", LimitLitersPerDay: 100})
	require.NoError(t, err)
	_, err = repo.InsertRecord(ctx, models.DailyConsumptionRecord{
		HomeID:      "h1",
		Date:        models.Today(time.Now(), time.UTC),
		TotalLiters: 60,
		LimitLiters: 100,
	})
	require.NoError(t, err)

	for _, target := range []string{
		"/api/analytics/system-trends?days=7",
		"/api/analytics/consumption-distribution",
		"/api/analytics/homes-with-alerts",
		"/api/analytics/overview",
		"/api/consumption/home/h1?limit=1",
		"/api/consumption/home/h1/weekly",
		"/api/consumption/home/h1/monthly",
		"/api/consumption/home/h1/range?start=2024-01-01&end=2024-01-31",
	} {
		rec := serve(r, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/consumption/home/h1/total", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"homeId":"h1","total":60}`, rec.Body.String())
}

func TestInvalidWindowIsBadRequest(t *testing.T) {
	r, _ := newTestRouter(t, zap.NewNop())

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/analytics/system-trends?days=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/consumption/home/h1/range?start=2024-02-01&end=2024-01-01", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreFailureIsLoggedAtErrorLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r, repo := newTestRouter(t, zap.New(core))
	repo.FailWith(assert.AnError)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/analytics/consumption-distribution", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "/api/analytics/consumption-distribution", entries[0].ContextMap()["route"])
}

func TestMetricsEndpointExposesComputations(t *testing.T) {
	r, _ := newTestRouter(t, zap.NewNop())

	serve(r, httptest.NewRequest(http.MethodGet, "/api/analytics/consumption-distribution", nil))
	rec := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "watermeter_computations_total")
}
