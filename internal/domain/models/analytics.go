package models

// TrendPoint is one day of the system-wide trend series.
type TrendPoint struct {
	Date             string  `json:"date"`
	TotalConsumption float64 `json:"totalConsumption"`
	AveragePerHome   float64 `json:"averagePerHome"`
	HomeCount        int     `json:"homeCount"`
}

// DistributionBucket is one utilization band of the consumption histogram.
type DistributionBucket struct {
	Range      string  `json:"range"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AlertStatus classifies how far a home is over its daily limit.
type AlertStatus string

const (
	AlertWarning  AlertStatus = "warning"
	AlertCritical AlertStatus = "critical"
)

// HomeAlert is a threshold alert derived from today's consumption.
type HomeAlert struct {
	HomeID         string      `json:"homeId"`
	HomeName       string      `json:"homeName"`
	Consumption    float64     `json:"consumption"`
	Limit          float64     `json:"limit"`
	PercentageUsed float64     `json:"percentageUsed"`
	Status         AlertStatus `json:"status"`
}

// Overview bundles the dashboard computations.
type Overview struct {
	Trends       []TrendPoint         `json:"trends"`
	Distribution []DistributionBucket `json:"distribution"`
	Alerts       []HomeAlert          `json:"alerts"`
}
