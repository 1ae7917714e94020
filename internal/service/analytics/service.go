package analytics

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/domain/models"
	"github.com/mamadbah2/watermeter/internal/metrics"
)

// DefaultSampleSize is the number of most recent records the distribution looks at.
const DefaultSampleSize = 240

// RecordStore is the read side of the consumption record store.
type RecordStore interface {
	FindRecords(ctx context.Context, query models.RecordQuery) ([]models.DailyConsumptionRecord, error)
	Aggregate(ctx context.Context, query models.AggregateQuery) ([]models.GroupStat, error)
	GetHome(ctx context.Context, homeID string) (*models.Home, error)
}

// Options tunes the computations.
type Options struct {
	SampleSize int64
	Location   *time.Location
}

// Service computes trend series, consumption distribution and threshold alerts.
// It keeps no state between calls; every call re-reads the store.
type Service struct {
	store      RecordStore
	metrics    *metrics.Metrics
	logger     *zap.Logger
	sampleSize int64
	loc        *time.Location
	now        func() time.Time
}

// NewService wires a new analytics service instance.
func NewService(store RecordStore, opts Options, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SampleSize < 1 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		store:      store,
		metrics:    m,
		logger:     logger,
		sampleSize: opts.SampleSize,
		loc:        opts.Location,
		now:        time.Now,
	}
}

func (s *Service) today() time.Time {
	return models.Today(s.now(), s.loc)
}

func (s *Service) observe(name string, started time.Time, err error) {
	s.metrics.ObserveComputation(name, err, time.Since(started))
}

func percentOf(value, limit float64) float64 {
	return value / limit * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
