package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Singleton(t *testing.T) {
	a := Registry("clipship_test")
	b := Registry("other")
	assert.Same(t, a, b)
}

func TestNew_RegisterOnCustomRegistry(t *testing.T) {
	m := New("clipship")
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	m.WebhookPhases.WithLabelValues("approval", "ok").Inc()
	m.CreditsDebited.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebhookPhases.WithLabelValues("approval", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CreditsDebited))

	require.Error(t, m.Register(reg))
}
