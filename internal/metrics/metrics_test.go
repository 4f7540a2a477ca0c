package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestUpstreamAndSearch(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Upstream(ServicePrice, OutcomeOK)
	m.Upstream(ServicePrice, OutcomeOK)
	m.Upstream(ServicePrice, OutcomeNotFound)
	m.Search("done", 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamCalls.WithLabelValues(ServicePrice, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamCalls.WithLabelValues(ServicePrice, OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues("done")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SearchDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Upstream(ServiceGeocode, OutcomeError)
		m.Search("failed", time.Second)
	})
}
