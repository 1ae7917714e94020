package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/config"
	"github.com/mamadbah2/watermeter/internal/domain/models"
	"github.com/mamadbah2/watermeter/internal/repository/mongodb"
	"github.com/mamadbah2/watermeter/pkg/logger"
)

var sensors = []string{"kitchen", "bathroom", "laundry", "garden"}

type seedConfig struct {
	envFile string
	homes   int
	days    int
	seed    uint64
}

func main() {
	var sc seedConfig
	flag.StringVar(&sc.envFile, "env", "", "optional env file")
	flag.IntVar(&sc.homes, "homes", 12, "number of demo homes")
	flag.IntVar(&sc.days, "days", 45, "days of history per home, ending today")
	flag.Uint64Var(&sc.seed, "seed", 42, "random seed")
	flag.Parse()

	cfg, err := config.Load(sc.envFile)
	if err != nil {
		panic(err)
	}

	log := logger.Must(logger.New(cfg.Log.Level)).Named("seed")
	defer func() { _ = log.Sync() }()

	if sc.homes <= 0 || sc.days <= 0 {
		log.Fatal("homes and days must be > 0", zap.Int("homes", sc.homes), zap.Int("days", sc.days))
	}

	loc, err := cfg.Analytics.Location()
	if err != nil {
		log.Fatal("invalid timezone", zap.Error(err))
	}

	ctx := context.Background()
	repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB, log.Named("repo.mongodb"))
	if err != nil {
		log.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer func() { _ = repo.Close(ctx) }()

	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal("failed to create indexes", zap.Error(err))
	}

	rng := rand.New(rand.NewPCG(sc.seed, sc.seed^0x5eed))
	today := models.Today(time.Now(), loc)

	var inserted, skipped int
	for i := 0; i < sc.homes; i++ {
		home, err := repo.InsertHome(ctx, demoHome(rng, i))
		if err != nil {
			log.Fatal("failed to insert home", zap.Int("index", i), zap.Error(err))
		}

		for _, record := range demoRecords(rng, home, today, sc.days) {
			if _, err := repo.InsertRecord(ctx, record); err != nil {
				if errors.Is(err, models.ErrDuplicateRecord) {
					skipped++
					continue
				}
				log.Fatal("failed to insert record", zap.String("homeId", home.ID), zap.Error(err))
			}
			inserted++
		}
	}

	log.Info("seed complete",
		zap.Int("homes", sc.homes),
		zap.Int("records", inserted),
		zap.Int("skipped", skipped))
}

func demoHome(rng *rand.Rand, index int) models.Home {
	members := 1 + rng.IntN(6)
	return models.Home{
		Name:              fmt.Sprintf("Demo Home %02d", index+1),
		SectorID:          fmt.Sprintf("sector-%d", index%3+1),
		Active:            true,
		Members:           members,
		LimitLitersPerDay: float64(members) * 120,
	}
}

// demoRecords builds one record per day for the days ending at today. Daily
// usage ranges from 20% to 130% of the home's limit so every band gets data.
func demoRecords(rng *rand.Rand, home models.Home, today time.Time, days int) []models.DailyConsumptionRecord {
	records := make([]models.DailyConsumptionRecord, 0, days)
	for d := days - 1; d >= 0; d-- {
		date := models.DaysBefore(today, d)
		total := round1(home.LimitLitersPerDay * (0.2 + rng.Float64()*1.1))

		record := models.DailyConsumptionRecord{
			HomeID:            home.ID,
			Date:              date,
			TotalLiters:       total,
			BySensor:          splitBySensor(rng, total),
			RecommendedLiters: float64(home.Members) * 100,
			LimitLiters:       home.LimitLitersPerDay,
			CreatedAt:         date.Add(23*time.Hour + 59*time.Minute),
		}
		if total >= home.LimitLitersPerDay {
			record.Alerts = append(record.Alerts, models.RecordAlert{
				Type:        "limit_exceeded",
				Message:     fmt.Sprintf("%.1f L used of %.1f L allowed", total, home.LimitLitersPerDay),
				TriggeredAt: record.CreatedAt,
			})
		}
		records = append(records, record)
	}
	return records
}

// splitBySensor divides total across the sensors. The readings sum to total.
func splitBySensor(rng *rand.Rand, total float64) []models.SensorReading {
	weights := make([]float64, len(sensors))
	var sum float64
	for i := range weights {
		weights[i] = 0.5 + rng.Float64()
		sum += weights[i]
	}

	readings := make([]models.SensorReading, len(sensors))
	remaining := total
	for i, id := range sensors {
		liters := round1(total * weights[i] / sum)
		if i == len(sensors)-1 {
			liters = round1(remaining)
		}
		remaining -= liters
		readings[i] = models.SensorReading{SensorID: id, Liters: liters}
	}
	return readings
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
