package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

// SystemTrends returns per-day system totals and per-home averages for the
// trailing windowDays, oldest first. When no record falls inside the window it
// falls back to the windowDays most recent days that have data.
func (s *Service) SystemTrends(ctx context.Context, windowDays int) (points []models.TrendPoint, err error) {
	started := time.Now()
	defer func() { s.observe("system_trends", started, err) }()

	if windowDays < 1 {
		return nil, fmt.Errorf("%w: trend window must be at least 1 day, got %d", models.ErrInvalidWindow, windowDays)
	}

	from := models.DaysBefore(s.today(), windowDays)
	stats, err := s.store.Aggregate(ctx, models.AggregateQuery{
		Key:    models.GroupByDay,
		Window: models.DateWindow{Start: &from},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate daily trends: %w", err)
	}

	if len(stats) == 0 {
		stats, err = s.store.Aggregate(ctx, models.AggregateQuery{Key: models.GroupByDay})
		if err != nil {
			return nil, fmt.Errorf("aggregate historical trends: %w", err)
		}
		stats = mostRecentDays(stats, windowDays)
		if len(stats) > 0 {
			s.metrics.IncTrendFallback()
			s.logger.Debug("trend window empty, using most recent days",
				zap.Int("window_days", windowDays),
				zap.Int("days", len(stats)),
				zap.String("from", stats[0].Key))
		}
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Key < stats[j].Key })

	points = make([]models.TrendPoint, 0, len(stats))
	for _, stat := range stats {
		points = append(points, models.TrendPoint{
			Date:             stat.Key,
			TotalConsumption: stat.Sum,
			AveragePerHome:   stat.Avg,
			HomeCount:        stat.Count,
		})
	}
	return points, nil
}

// mostRecentDays keeps the n latest day groups. Day keys are ISO dates, so
// lexical order is chronological.
func mostRecentDays(stats []models.GroupStat, n int) []models.GroupStat {
	sorted := make([]models.GroupStat, len(stats))
	copy(sorted, stats)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key > sorted[j].Key })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
