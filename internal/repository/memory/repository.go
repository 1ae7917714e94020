package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

// Repository is an in-process record store. It honours the same contract as
// the MongoDB repository and is used for tests and local runs.
type Repository struct {
	mu      sync.RWMutex
	homes   map[string]models.Home
	records []models.DailyConsumptionRecord
	nextID  int
	// failWith, when set, is returned by every read.
	failWith error
}

// NewRepository creates an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{homes: make(map[string]models.Home)}
}

// FailWith makes every subsequent read fail with err. Passing nil restores normal behaviour.
func (r *Repository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

// InsertHome stores or replaces a home.
func (r *Repository) InsertHome(_ context.Context, home models.Home) (models.Home, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if home.ID == "" {
		r.nextID++
		home.ID = "home-" + strconv.Itoa(r.nextID)
	}
	r.homes[home.ID] = home
	return home, nil
}

// InsertRecord stores a new daily record. A second record for the same home
// and day is rejected with ErrDuplicateRecord.
func (r *Repository) InsertRecord(_ context.Context, record models.DailyConsumptionRecord) (models.DailyConsumptionRecord, error) {
	if record.HomeID == "" {
		return models.DailyConsumptionRecord{}, models.ErrInvalidHomeID
	}
	record.Date = models.CalendarDay(record.Date)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.HomeID == record.HomeID && existing.Date.Equal(record.Date) {
			return models.DailyConsumptionRecord{}, models.ErrDuplicateRecord
		}
	}

	r.nextID++
	record.ID = "record-" + strconv.Itoa(r.nextID)
	r.records = append(r.records, record)
	return record, nil
}

// FindRecords returns records matching the query sorted by date.
func (r *Repository) FindRecords(_ context.Context, query models.RecordQuery) ([]models.DailyConsumptionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.failWith != nil {
		return nil, fmt.Errorf("find consumption records: %w: %w", models.ErrStoreUnavailable, r.failWith)
	}

	matched := r.match(query.HomeID, query.Window)
	sort.SliceStable(matched, func(i, j int) bool {
		if query.SortDesc {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].Date.Before(matched[j].Date)
	})

	if query.Limit > 0 && int64(len(matched)) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// Aggregate groups matching records by day or home, sorted by key ascending.
func (r *Repository) Aggregate(_ context.Context, query models.AggregateQuery) ([]models.GroupStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.failWith != nil {
		return nil, fmt.Errorf("aggregate consumption records: %w: %w", models.ErrStoreUnavailable, r.failWith)
	}

	groups := make(map[string]*models.GroupStat)
	for _, record := range r.match(query.HomeID, query.Window) {
		var key string
		switch query.Key {
		case models.GroupByDay:
			key = record.Date.Format(models.DateLayout)
		case models.GroupByHome:
			key = record.HomeID
		default:
			return nil, fmt.Errorf("unsupported group key %q", query.Key)
		}

		stat, ok := groups[key]
		if !ok {
			stat = &models.GroupStat{Key: key}
			groups[key] = stat
		}
		stat.Sum += record.TotalLiters
		stat.Count++
	}

	stats := make([]models.GroupStat, 0, len(groups))
	for _, stat := range groups {
		stat.Avg = stat.Sum / float64(stat.Count)
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Key < stats[j].Key })
	return stats, nil
}

// GetHome looks up a home by id.
func (r *Repository) GetHome(_ context.Context, homeID string) (*models.Home, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.failWith != nil {
		return nil, fmt.Errorf("get home %s: %w: %w", homeID, models.ErrStoreUnavailable, r.failWith)
	}

	home, ok := r.homes[homeID]
	if !ok {
		return nil, models.ErrHomeNotFound
	}
	return &home, nil
}

// Close is a no-op kept for parity with the MongoDB repository.
func (r *Repository) Close(context.Context) error {
	return nil
}

func (r *Repository) match(homeID string, window models.DateWindow) []models.DailyConsumptionRecord {
	out := make([]models.DailyConsumptionRecord, 0, len(r.records))
	for _, record := range r.records {
		if homeID != "" && record.HomeID != homeID {
			continue
		}
		if !window.Contains(record.Date) {
			continue
		}
		out = append(out, record)
	}
	return out
}
