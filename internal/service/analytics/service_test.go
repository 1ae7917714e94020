package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/domain/models"
	"github.com/mamadbah2/watermeter/internal/repository/memory"
)

var fixedNow = time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, store RecordStore) *Service {
	t.Helper()
	svc := NewService(store, Options{}, nil, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func addHome(t *testing.T, repo *memory.Repository, id, name string, limit float64) {
	t.Helper()
	_, err := repo.InsertHome(context.Background(), models.Home{ID: id, Name: name, LimitLitersPerDay: limit, Active: true})
	require.NoError(t, err)
}

func addRecord(t *testing.T, repo *memory.Repository, homeID string, date time.Time, total, limit float64) {
	t.Helper()
	_, err := repo.InsertRecord(context.Background(), models.DailyConsumptionRecord{
		HomeID:      homeID,
		Date:        date,
		TotalLiters: total,
		LimitLiters: limit,
	})
	require.NoError(t, err)
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(memory.NewRepository(), Options{}, nil, nil)
	assert.Equal(t, int64(DefaultSampleSize), svc.sampleSize)
	assert.Equal(t, time.UTC, svc.loc)
	assert.NotNil(t, svc.logger)
}

func TestOverviewCombinesComputations(t *testing.T) {
	repo := memory.NewRepository()
	addHome(t, repo, "a", "Home A", 100)
	addRecord(t, repo, "a", day(2024, 6, 1), 120, 100)
	addRecord(t, repo, "a", day(2024, 5, 31), 40, 100)

	svc := newTestService(t, repo)
	overview, err := svc.Overview(context.Background(), 30)
	require.NoError(t, err)

	assert.Len(t, overview.Trends, 2)
	assert.Len(t, overview.Distribution, 4)
	require.Len(t, overview.Alerts, 1)
	assert.Equal(t, models.AlertCritical, overview.Alerts[0].Status)
}

func TestOverviewPropagatesFirstFailure(t *testing.T) {
	repo := memory.NewRepository()
	boom := errors.New("socket closed")
	repo.FailWith(boom)

	svc := newTestService(t, repo)
	_, err := svc.Overview(context.Background(), 30)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestOverviewRejectsInvalidWindow(t *testing.T) {
	svc := newTestService(t, memory.NewRepository())
	_, err := svc.Overview(context.Background(), 0)
	assert.ErrorIs(t, err, models.ErrInvalidWindow)
}
