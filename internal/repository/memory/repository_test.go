package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, repo *Repository, homeID string, date time.Time, liters float64) {
	t.Helper()
	_, err := repo.InsertRecord(context.Background(), models.DailyConsumptionRecord{
		HomeID:      homeID,
		Date:        date,
		TotalLiters: liters,
		LimitLiters: 100,
	})
	require.NoError(t, err)
}

func TestInsertRecordRejectsDuplicateHomeDay(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	seed(t, repo, "h1", day(2024, 3, 1), 10)

	_, err := repo.InsertRecord(ctx, models.DailyConsumptionRecord{HomeID: "h1", Date: day(2024, 3, 1).Add(5 * time.Hour), TotalLiters: 99})
	assert.ErrorIs(t, err, models.ErrDuplicateRecord)

	_, err = repo.InsertRecord(ctx, models.DailyConsumptionRecord{HomeID: "h2", Date: day(2024, 3, 1)})
	assert.NoError(t, err)

	_, err = repo.InsertRecord(ctx, models.DailyConsumptionRecord{Date: day(2024, 3, 1)})
	assert.ErrorIs(t, err, models.ErrInvalidHomeID)
}

func TestFindRecordsFiltersSortsAndLimits(t *testing.T) {
	repo := NewRepository()
	for i := 1; i <= 5; i++ {
		seed(t, repo, "h1", day(2024, 3, i), float64(i))
	}
	seed(t, repo, "h2", day(2024, 3, 3), 50)

	start, end := day(2024, 3, 2), day(2024, 3, 4)
	records, err := repo.FindRecords(context.Background(), models.RecordQuery{
		HomeID: "h1",
		Window: models.DateWindow{Start: &start, End: &end},
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, day(2024, 3, 2), records[0].Date)
	assert.Equal(t, day(2024, 3, 4), records[2].Date)

	records, err = repo.FindRecords(context.Background(), models.RecordQuery{SortDesc: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, day(2024, 3, 5), records[0].Date)
	assert.Equal(t, day(2024, 3, 4), records[1].Date)
}

func TestAggregateByDayAndHome(t *testing.T) {
	repo := NewRepository()
	seed(t, repo, "h1", day(2024, 3, 1), 10)
	seed(t, repo, "h2", day(2024, 3, 1), 30)
	seed(t, repo, "h1", day(2024, 3, 2), 20)

	byDay, err := repo.Aggregate(context.Background(), models.AggregateQuery{Key: models.GroupByDay})
	require.NoError(t, err)
	assert.Equal(t, []models.GroupStat{
		{Key: "2024-03-01", Sum: 40, Avg: 20, Count: 2},
		{Key: "2024-03-02", Sum: 20, Avg: 20, Count: 1},
	}, byDay)

	byHome, err := repo.Aggregate(context.Background(), models.AggregateQuery{Key: models.GroupByHome, HomeID: "h1"})
	require.NoError(t, err)
	assert.Equal(t, []models.GroupStat{{Key: "h1", Sum: 30, Avg: 15, Count: 2}}, byHome)

	_, err = repo.Aggregate(context.Background(), models.AggregateQuery{Key: "sector"})
	assert.Error(t, err)
}

func TestGetHome(t *testing.T) {
	repo := NewRepository()
	home, err := repo.InsertHome(context.Background(), models.Home{Name: "Casa", LimitLitersPerDay: 300})
	require.NoError(t, err)
	require.NotEmpty(t, home.ID)

	got, err := repo.GetHome(context.Background(), home.ID)
	require.NoError(t, err)
	assert.Equal(t, "Casa", got.Name)

	_, err = repo.GetHome(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrHomeNotFound)
}

func TestFailWithWrapsStoreUnavailable(t *testing.T) {
	repo := NewRepository()
	boom := errors.New("connection refused")
	repo.FailWith(boom)

	_, err := repo.FindRecords(context.Background(), models.RecordQuery{})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, err, boom)

	_, err = repo.Aggregate(context.Background(), models.AggregateQuery{Key: models.GroupByDay})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	_, err = repo.GetHome(context.Background(), "h1")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}
