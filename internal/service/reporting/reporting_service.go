package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

const (
	weeklyWindowDays  = 7
	monthlyWindowDays = 30
)

// Store is the subset of the record store the rollups need.
type Store interface {
	FindRecords(ctx context.Context, query models.RecordQuery) ([]models.DailyConsumptionRecord, error)
	Aggregate(ctx context.Context, query models.AggregateQuery) ([]models.GroupStat, error)
}

// Service exposes per-home consumption queries and scalar aggregates.
type Service struct {
	store  Store
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(store Store, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, logger: logger, loc: loc, now: time.Now}
}

// ByHome returns a home's records, newest first. A limit of zero or less means no cap.
func (s *Service) ByHome(ctx context.Context, homeID string, limit int64) ([]models.DailyConsumptionRecord, error) {
	homeID, err := normalizeHomeID(homeID)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		limit = 0
	}

	records, err := s.store.FindRecords(ctx, models.RecordQuery{HomeID: homeID, SortDesc: true, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("load records for home %s: %w", homeID, err)
	}
	return records, nil
}

// ByDateRange returns a home's records between start and end, both days inclusive, oldest first.
func (s *Service) ByDateRange(ctx context.Context, homeID string, start, end time.Time) ([]models.DailyConsumptionRecord, error) {
	homeID, err := normalizeHomeID(homeID)
	if err != nil {
		return nil, err
	}

	start, end = models.CalendarDay(start), models.CalendarDay(end)
	window := models.DateWindow{Start: &start, End: &end}
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("%w: start %s is after end %s", err, start.Format(models.DateLayout), end.Format(models.DateLayout))
	}

	records, err := s.store.FindRecords(ctx, models.RecordQuery{HomeID: homeID, Window: window})
	if err != nil {
		return nil, fmt.Errorf("load records for home %s: %w", homeID, err)
	}

	s.logger.Debug("range query",
		zap.String("home_id", homeID),
		zap.String("start", start.Format(models.DateLayout)),
		zap.String("end", end.Format(models.DateLayout)),
		zap.Int("records", len(records)))
	return records, nil
}

// Weekly returns the home's records from seven days ago through today.
func (s *Service) Weekly(ctx context.Context, homeID string) ([]models.DailyConsumptionRecord, error) {
	return s.trailing(ctx, homeID, weeklyWindowDays)
}

// Monthly returns the home's records from thirty days ago through today.
func (s *Service) Monthly(ctx context.Context, homeID string) ([]models.DailyConsumptionRecord, error) {
	return s.trailing(ctx, homeID, monthlyWindowDays)
}

// TotalByHome sums every record of a home. Zero when the home has no records.
func (s *Service) TotalByHome(ctx context.Context, homeID string) (float64, error) {
	stat, err := s.homeStat(ctx, homeID)
	if err != nil {
		return 0, err
	}
	return stat.Sum, nil
}

// AverageByHome averages every record of a home. Zero when the home has no records.
func (s *Service) AverageByHome(ctx context.Context, homeID string) (float64, error) {
	stat, err := s.homeStat(ctx, homeID)
	if err != nil {
		return 0, err
	}
	return stat.Avg, nil
}

func (s *Service) trailing(ctx context.Context, homeID string, days int) ([]models.DailyConsumptionRecord, error) {
	today := models.Today(s.now(), s.loc)
	return s.ByDateRange(ctx, homeID, models.DaysBefore(today, days), today)
}

func (s *Service) homeStat(ctx context.Context, homeID string) (models.GroupStat, error) {
	homeID, err := normalizeHomeID(homeID)
	if err != nil {
		return models.GroupStat{}, err
	}

	stats, err := s.store.Aggregate(ctx, models.AggregateQuery{Key: models.GroupByHome, HomeID: homeID})
	if err != nil {
		return models.GroupStat{}, fmt.Errorf("aggregate home %s: %w", homeID, err)
	}
	if len(stats) == 0 {
		return models.GroupStat{Key: homeID}, nil
	}
	return stats[0], nil
}

func normalizeHomeID(homeID string) (string, error) {
	homeID = strings.TrimSpace(homeID)
	if homeID == "" {
		return "", models.ErrInvalidHomeID
	}
	return homeID, nil
}
