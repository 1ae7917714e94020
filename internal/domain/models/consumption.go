package models

import "time"

// SensorReading is one sensor's contribution to a daily total.
type SensorReading struct {
	SensorID string  `bson:"sensorId" json:"sensorId"`
	Liters   float64 `bson:"liters" json:"liters"`
}

// RecordAlert is an alert materialized when the record was written.
type RecordAlert struct {
	Type        string    `bson:"type" json:"type"`
	Message     string    `bson:"message" json:"message"`
	TriggeredAt time.Time `bson:"triggeredAt" json:"triggeredAt"`
}

// DailyConsumptionRecord holds one home's metered water usage for one calendar day.
// Date is the calendar day at midnight UTC. (HomeID, Date) is unique.
type DailyConsumptionRecord struct {
	ID                string          `bson:"-" json:"id,omitempty"`
	HomeID            string          `bson:"-" json:"homeId"`
	Date              time.Time       `bson:"date" json:"date"`
	TotalLiters       float64         `bson:"totalLiters" json:"totalLiters"`
	BySensor          []SensorReading `bson:"bySensor" json:"bySensor"`
	RecommendedLiters float64         `bson:"recommendedLiters" json:"recommendedLiters"`
	// LimitLiters is the home's limit at the time the record was created.
	LimitLiters float64       `bson:"limitLiters" json:"limitLiters"`
	Alerts      []RecordAlert `bson:"alerts" json:"alerts"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
}

// Home is a metered household.
type Home struct {
	ID       string `bson:"-" json:"id"`
	Name     string `bson:"name" json:"name"`
	SectorID string `bson:"sectorId" json:"sectorId"`
	Active   bool   `bson:"active" json:"active"`
	Members  int    `bson:"members" json:"members"`
	// LimitLitersPerDay is the live limit used for alerting.
	LimitLitersPerDay float64 `bson:"limitLitersPerDay" json:"limitLitersPerDay"`
}
