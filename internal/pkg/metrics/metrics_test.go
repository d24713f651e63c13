package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestMatchRequestsTotal(t *testing.T) {
	before := counterValue(t, MatchRequestsTotal.WithLabelValues("cache"))
	MatchRequestsTotal.WithLabelValues("cache").Inc()
	assert.Equal(t, before+1, counterValue(t, MatchRequestsTotal.WithLabelValues("cache")))
}

func TestTutoringSettlementsTotal(t *testing.T) {
	before := counterValue(t, TutoringSettlementsTotal.WithLabelValues("accepted"))
	TutoringSettlementsTotal.WithLabelValues("accepted").Add(2)
	assert.Equal(t, before+2, counterValue(t, TutoringSettlementsTotal.WithLabelValues("accepted")))
}

func TestRegistered(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["skillx_matching_requests_total"])
	assert.True(t, names["skillx_tutoring_settlements_total"])
}
