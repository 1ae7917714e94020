package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

type band struct {
	label string
	// upper is the inclusive upper bound in percent of the limit.
	upper float64
}

// Bands are checked in order; the first whose upper bound covers the ratio wins.
var distributionBands = []band{
	{label: "0-50%", upper: 50},
	{label: "50-80%", upper: 80},
	{label: "80-100%", upper: 100},
	{label: ">100%", upper: math.Inf(1)},
}

// ConsumptionDistribution classifies the most recent records into four
// utilization bands relative to each record's own limit snapshot. Records
// without a positive limit are left out of every count and of the denominator.
func (s *Service) ConsumptionDistribution(ctx context.Context) (buckets []models.DistributionBucket, err error) {
	started := time.Now()
	defer func() { s.observe("consumption_distribution", started, err) }()

	records, err := s.store.FindRecords(ctx, models.RecordQuery{
		SortDesc: true,
		Limit:    s.sampleSize,
	})
	if err != nil {
		return nil, fmt.Errorf("load distribution sample: %w", err)
	}

	counts := make([]int, len(distributionBands))
	valid := 0
	for _, record := range records {
		if record.LimitLiters <= 0 {
			continue
		}
		counts[classify(percentOf(record.TotalLiters, record.LimitLiters))]++
		valid++
	}

	if skipped := len(records) - valid; skipped > 0 {
		s.logger.Debug("skipped records without limit", zap.Int("skipped", skipped), zap.Int("sampled", len(records)))
	}

	buckets = make([]models.DistributionBucket, len(distributionBands))
	for i, b := range distributionBands {
		buckets[i] = models.DistributionBucket{Range: b.label, Count: counts[i]}
		if valid > 0 {
			buckets[i].Percentage = round2(float64(counts[i]) / float64(valid) * 100)
		}
	}
	return buckets, nil
}

func classify(percentage float64) int {
	for i, b := range distributionBands {
		if percentage <= b.upper {
			return i
		}
	}
	return len(distributionBands) - 1
}
