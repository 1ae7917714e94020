package models

import "time"

// DateWindow bounds a query by calendar day. Both ends are inclusive and
// either may be nil for an open bound.
type DateWindow struct {
	Start *time.Time
	End   *time.Time
}

// Validate rejects windows whose start falls after their end.
func (w DateWindow) Validate() error {
	if w.Start != nil && w.End != nil && w.Start.After(*w.End) {
		return ErrInvalidWindow
	}
	return nil
}

// Contains reports whether the calendar day of t lies inside the window.
func (w DateWindow) Contains(t time.Time) bool {
	day := CalendarDay(t)
	if w.Start != nil && day.Before(CalendarDay(*w.Start)) {
		return false
	}
	if w.End != nil && day.After(CalendarDay(*w.End)) {
		return false
	}
	return true
}

// RecordQuery filters daily consumption records.
type RecordQuery struct {
	HomeID   string
	Window   DateWindow
	SortDesc bool
	// Limit caps the number of records returned; zero means no cap.
	Limit int64
}

// GroupKey selects how Aggregate groups records.
type GroupKey string

const (
	GroupByDay  GroupKey = "day"
	GroupByHome GroupKey = "home"
)

// AggregateQuery describes a group-by over daily consumption records.
type AggregateQuery struct {
	Key    GroupKey
	HomeID string
	Window DateWindow
}

// GroupStat is the sum, average and cardinality of one group.
type GroupStat struct {
	Key   string  `bson:"_id"`
	Sum   float64 `bson:"sum"`
	Avg   float64 `bson:"avg"`
	Count int     `bson:"count"`
}
