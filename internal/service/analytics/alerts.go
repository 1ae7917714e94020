package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

const (
	warningThreshold  = 80.0
	criticalThreshold = 100.0
)

// HomesWithAlerts evaluates today's record of every home against the home's
// current daily limit and returns the homes at or above 80% of it, highest
// usage first. Homes that cannot be resolved or have no limit are skipped.
//
// The limit used here is the live one from the home, not the snapshot stored
// on the record; ConsumptionDistribution uses the snapshot.
func (s *Service) HomesWithAlerts(ctx context.Context) (alerts []models.HomeAlert, err error) {
	started := time.Now()
	defer func() {
		s.observe("homes_with_alerts", started, err)
		if err == nil {
			s.metrics.SetActiveAlerts(alerts)
		}
	}()

	today := s.today()
	records, err := s.store.FindRecords(ctx, models.RecordQuery{
		Window: models.DateWindow{Start: &today, End: &today},
	})
	if err != nil {
		return nil, fmt.Errorf("load today's records: %w", err)
	}
	if len(records) == 0 {
		return []models.HomeAlert{}, nil
	}

	type scored struct {
		alert      models.HomeAlert
		percentage float64
	}
	candidates := make([]scored, 0, len(records))

	for _, record := range records {
		home, err := s.store.GetHome(ctx, record.HomeID)
		if err != nil {
			if errors.Is(err, models.ErrHomeNotFound) {
				s.logger.Debug("skip record for unknown home", zap.String("home_id", record.HomeID))
				continue
			}
			return nil, fmt.Errorf("resolve home %s: %w", record.HomeID, err)
		}
		if home.LimitLitersPerDay <= 0 {
			continue
		}

		percentage := percentOf(record.TotalLiters, home.LimitLitersPerDay)
		if percentage < warningThreshold {
			continue
		}

		status := models.AlertWarning
		if percentage >= criticalThreshold {
			status = models.AlertCritical
		}

		candidates = append(candidates, scored{
			alert: models.HomeAlert{
				HomeID:         record.HomeID,
				HomeName:       home.Name,
				Consumption:    record.TotalLiters,
				Limit:          home.LimitLitersPerDay,
				PercentageUsed: round2(percentage),
				Status:         status,
			},
			percentage: percentage,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].percentage > candidates[j].percentage
	})

	alerts = make([]models.HomeAlert, 0, len(candidates))
	for _, c := range candidates {
		alerts = append(alerts, c.alert)
	}
	return alerts, nil
}
