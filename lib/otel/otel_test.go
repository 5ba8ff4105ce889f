package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	assert.Nil(t, p.LogHandler())
	assert.NotNil(t, p.Meter("test"))
	assert.NotNil(t, p.Tracer("test"))

	metrics, err := NewCommandMetrics(p.Meter("test"))
	require.NoError(t, err)
	assert.NotNil(t, metrics.DispatchTotal)

	transport, err := NewTransportMetrics(p.Meter("test"))
	require.NoError(t, err)
	assert.NotNil(t, transport.UpdatesTotal)

	require.NoError(t, p.Shutdown(context.Background()))
}
