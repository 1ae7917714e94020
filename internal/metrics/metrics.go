package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

const (
	namespace = "watermeter"

	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics exposes the service instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	computations       *prometheus.CounterVec
	computationLatency *prometheus.HistogramVec
	trendFallbacks     prometheus.Counter
	activeAlerts       *prometheus.GaugeVec
	digests            *prometheus.CounterVec
	exports            *prometheus.CounterVec
}

// New creates the instruments and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		computations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "computations_total",
				Help:      "Total analytics computations by name and result",
			},
			[]string{"computation", "result"},
		),
		computationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "computation_latency_seconds",
				Help:      "Analytics computation latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"computation", "result"},
		),
		trendFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trend_fallbacks_total",
				Help:      "Trend computations served from the most recent available days",
			},
		),
		activeAlerts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "homes_alerting",
				Help:      "Homes over their daily threshold at the last evaluation, by status",
			},
			[]string{"status"},
		),
		digests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alert_digests_total",
				Help:      "Alert digests by result",
			},
			[]string{"result"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trend_exports_total",
				Help:      "Trend exports by result",
			},
			[]string{"result"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.computations,
			m.computationLatency,
			m.trendFallbacks,
			m.activeAlerts,
			m.digests,
			m.exports,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// ObserveComputation records one computation run.
func (m *Metrics) ObserveComputation(name string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := resultOf(err)
	m.computations.WithLabelValues(name, result).Inc()
	m.computationLatency.WithLabelValues(name, result).Observe(duration.Seconds())
}

// IncTrendFallback counts a trend computation that fell back to historical days.
func (m *Metrics) IncTrendFallback() {
	if m == nil {
		return
	}
	m.trendFallbacks.Inc()
}

// SetActiveAlerts publishes the number of alerting homes per status.
func (m *Metrics) SetActiveAlerts(alerts []models.HomeAlert) {
	if m == nil {
		return
	}
	counts := map[models.AlertStatus]int{
		models.AlertWarning:  0,
		models.AlertCritical: 0,
	}
	for _, alert := range alerts {
		counts[alert.Status]++
	}
	for status, count := range counts {
		m.activeAlerts.WithLabelValues(string(status)).Set(float64(count))
	}
}

// IncDigest counts an alert digest delivery attempt.
func (m *Metrics) IncDigest(err error) {
	if m == nil {
		return
	}
	m.digests.WithLabelValues(resultOf(err)).Inc()
}

// IncExport counts a trend export attempt.
func (m *Metrics) IncExport(err error) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(resultOf(err)).Inc()
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
