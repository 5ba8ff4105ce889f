package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityagautam-dev/aws-telegram-bot/cmd/bot/config"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/commands"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/gateway"
)

func testConfig() *config.Config {
	return &config.Config{
		ImageID:         "ami-1",
		SubnetID:        "subnet-1",
		SSHUser:         "ec2-user",
		CPUWindow:       time.Hour,
		CPUPeriod:       5 * time.Minute,
		ProviderTimeout: time.Second,
		OtelServiceName: "awsbot-test",
	}
}

func TestProvideDispatcherWithTelemetryDisabled(t *testing.T) {
	cfg := testConfig()

	p, cleanup, err := ProvideOtel(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	var gw gateway.Gateway = &gateway.AWS{}
	reg, err := ProvideRegistry(cfg, gw)
	require.NoError(t, err)

	pub, pubCleanup, err := ProvideEventPublisher(cfg, p)
	require.NoError(t, err)
	defer pubCleanup()
	assert.Nil(t, pub)

	hub := ProvideEventHub(p)
	feed, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	d, err := ProvideDispatcher(cfg, reg, ProvideLogger(p), p, pub, hub)
	require.NoError(t, err)

	_, ok := d.Registry().Lookup("create_keypair")
	assert.True(t, ok)

	res := d.Dispatch(context.Background(), commands.Request{Name: "nope"})
	assert.Equal(t, commands.FailureUnknown, res.Failure)
	ev := <-feed
	assert.Equal(t, "unknown_command", ev.Failure)

	metrics, err := ProvideHTTPMetrics(p)
	require.NoError(t, err)
	assert.NotNil(t, metrics)
}
