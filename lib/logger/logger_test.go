package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "", want: slog.LevelInfo},
		{input: "DEBUG", want: slog.LevelDebug},
		{input: " warning ", want: slog.LevelWarn},
		{input: "err", want: slog.LevelError},
		{input: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewConfigSubsystemOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_LEVEL_GATEWAY", "debug")

	cfg := NewConfig()
	assert.Equal(t, slog.LevelWarn, cfg.LevelFor(SubsystemBot))
	assert.Equal(t, slog.LevelDebug, cfg.LevelFor(SubsystemGateway))
}

func TestSubsystemLoggerFanout(t *testing.T) {
	var primary, secondary bytes.Buffer
	cfg := Config{DefaultLevel: slog.LevelInfo, Output: &primary}
	otelHandler := slog.NewJSONHandler(&secondary, nil)

	log := NewSubsystemLogger(SubsystemTelegram, cfg, otelHandler)
	log.Debug("dropped")
	log.Info("delivered", "chat_id", 42)

	var record map[string]any
	require.NoError(t, json.Unmarshal(primary.Bytes(), &record))
	assert.Equal(t, "delivered", record["msg"])
	assert.Equal(t, "TELEGRAM", record["subsystem"])
	assert.Contains(t, secondary.String(), `"chat_id":42`)
	assert.NotContains(t, primary.String(), "dropped")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := AddToContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
