package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

func TestObserveComputation(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveComputation("system_trends", nil, 10*time.Millisecond)
	m.ObserveComputation("system_trends", nil, 12*time.Millisecond)
	m.ObserveComputation("system_trends", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.computations.WithLabelValues("system_trends", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.computations.WithLabelValues("system_trends", ResultError)))
}

func TestSetActiveAlertsResetsMissingStatuses(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.SetActiveAlerts([]models.HomeAlert{{Status: models.AlertCritical}, {Status: models.AlertWarning}, {Status: models.AlertCritical}})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.activeAlerts.WithLabelValues("critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeAlerts.WithLabelValues("warning")))

	m.SetActiveAlerts(nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeAlerts.WithLabelValues("critical")))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveComputation("x", nil, time.Second)
		m.IncTrendFallback()
		m.SetActiveAlerts(nil)
		m.IncDigest(nil)
		m.IncExport(errors.New("x"))
	})
}
