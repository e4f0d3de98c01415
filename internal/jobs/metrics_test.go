package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, m.Track("ledger_integrity").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("ledger_integrity").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("ledger_integrity", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("ledger_integrity", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("ledger_integrity")))
}

func TestAddUnbalancedDefaultsCompany(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddUnbalanced("")
	m.AddUnbalanced("africanut-fish")
	m.AddUnbalanced("africanut-fish")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.unbalanced.WithLabelValues("all")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.unbalanced.WithLabelValues("africanut-fish")))
}

func TestAddMalformedIgnoresZero(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddMalformed("africanut-fish", 0)
	m.AddMalformed("africanut-fish", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.malformed.WithLabelValues("africanut-fish")))
}

func TestNilMetricsTrackerPassesErrorThrough(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("x").End(boom), boom)
	m.AddUnbalanced("x")
	m.AddMalformed("x", 1)
}
