package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/config"
	"github.com/mamadbah2/watermeter/internal/metrics"
	"github.com/mamadbah2/watermeter/internal/repository/memory"
	"github.com/mamadbah2/watermeter/internal/repository/mongodb"
	"github.com/mamadbah2/watermeter/internal/repository/sheets"
	"github.com/mamadbah2/watermeter/internal/scheduler"
	"github.com/mamadbah2/watermeter/internal/server/handlers"
	"github.com/mamadbah2/watermeter/internal/server/router"
	analyticssvc "github.com/mamadbah2/watermeter/internal/service/analytics"
	notifysvc "github.com/mamadbah2/watermeter/internal/service/notify"
	reportingsvc "github.com/mamadbah2/watermeter/internal/service/reporting"
	"github.com/mamadbah2/watermeter/pkg/clients/webhook"
	"github.com/mamadbah2/watermeter/pkg/logger"
)

type recordStore interface {
	analyticssvc.RecordStore
	reportingsvc.Store
	Close(ctx context.Context) error
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Analytics.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	store, err := openStore(context.Background(), cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init record store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close record store", zap.Error(err))
		}
	}()

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		baseLogger.Fatal("failed to register metrics", zap.Error(err))
	}

	analyticsSvc := analyticssvc.NewService(store, analyticssvc.Options{
		SampleSize: cfg.Analytics.DistributionSample,
		Location:   loc,
	}, m, baseLogger.Named("svc.analytics"))
	reportingSvc := reportingsvc.NewService(store, loc, baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Analytics:   handlers.NewAnalyticsHandler(analyticsSvc, cfg.Analytics.TrendWindowDays, baseLogger.Named("handlers.analytics")),
		Consumption: handlers.NewConsumptionHandler(reportingSvc, baseLogger.Named("handlers.consumption")),
	}, prometheus.DefaultGatherer, baseLogger.Named("router"))

	if cfg.Scheduler.Enabled {
		jobs := scheduler.Jobs{Alerts: analyticsSvc, Trends: analyticsSvc}

		if cfg.Alerts.WebhookURL != "" {
			jobs.Digest = notifysvc.NewWebhookNotifier(webhook.NewClient(cfg.Alerts), m, baseLogger.Named("svc.notify"))
		} else {
			baseLogger.Warn("ALERT_WEBHOOK_URL missing, alert digest disabled")
		}

		if cfg.Sheets.Enabled() {
			appender, err := sheets.NewGoogleSheetAppender(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
			if err != nil {
				baseLogger.Fatal("failed to init sheets client", zap.Error(err))
			}
			jobs.Export = sheets.NewTrendExporter(appender, m, baseLogger.Named("svc.export"))
		} else {
			baseLogger.Warn("google sheets credentials missing, trend export disabled")
		}

		sched := scheduler.NewScheduler(cfg.Scheduler, cfg.Analytics.TrendWindowDays, loc, jobs, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, baseLogger *zap.Logger) (recordStore, error) {
	if cfg.Store.Driver == config.StoreMemory {
		baseLogger.Warn("using in-memory record store, data is not persisted")
		return memory.NewRepository(), nil
	}

	repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB, baseLogger.Named("repo.mongodb"))
	if err != nil {
		return nil, err
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = repo.Close(ctx)
		return nil, err
	}
	return repo, nil
}
