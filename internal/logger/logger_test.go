package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "json")

	log.Info("dropped")
	log.Warn("kept", slog.Int("cycle_count", 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, float64(3), entry["cycle_count"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "text").Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))

	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", RequestID(ctx))
}

func TestFromContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, "debug", "json")
	ctx := WithRequestID(context.Background(), "req-abc")

	Error(ctx, base, "prediction failed", errors.New("boom"), slog.String("route", "/api/v1/phase"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-abc", entry["request_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "/api/v1/phase", entry["route"])
}
