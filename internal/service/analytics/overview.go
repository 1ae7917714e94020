package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

// Overview runs the trend, distribution and alert computations concurrently.
// The first failure cancels the remaining ones and is returned.
func (s *Service) Overview(ctx context.Context, windowDays int) (*models.Overview, error) {
	var out models.Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		trends, err := s.SystemTrends(gctx, windowDays)
		out.Trends = trends
		return err
	})
	g.Go(func() error {
		distribution, err := s.ConsumptionDistribution(gctx)
		out.Distribution = distribution
		return err
	})
	g.Go(func() error {
		alerts, err := s.HomesWithAlerts(gctx)
		out.Alerts = alerts
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
