package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waymark/pkg/logger"
)

type ctxKey struct{}

func extractor(ctx context.Context) (slog.Attr, bool) {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return slog.String("request_id", v), true
	}
	return slog.Attr{}, false
}

func TestNewWithConfig_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithConfig(logger.Config{Output: &buf, Level: "debug"}, extractor, nil)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.DebugContext(ctx, "matched", slog.String("route", "blog"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "matched", rec["msg"])
	assert.Equal(t, "blog", rec["route"])
	assert.Equal(t, "req-1", rec["request_id"])
}

func TestNewWithConfig_TextAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithConfig(logger.Config{Output: &buf, Level: "warn", Format: "TEXT"})

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.With("component", "router").Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "component=router")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logger.ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWithSentry_NoDSN(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, flush := logger.NewWithSentry(logger.SentryConfig{Config: logger.Config{Output: &buf}})
	log.Error("fallback")
	assert.Contains(t, buf.String(), "fallback")
	assert.NoError(t, flush(context.Background()))
}

func TestStringValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithConfig(logger.Config{Output: &buf}, logger.StringValue(ctxKey{}, "tenant"))

	log.InfoContext(context.WithValue(context.Background(), ctxKey{}, ""), "empty")
	assert.NotContains(t, buf.String(), "tenant")

	buf.Reset()
	log.InfoContext(context.WithValue(context.Background(), ctxKey{}, "acme"), "set")
	assert.Contains(t, buf.String(), `"tenant":"acme"`)
}

func TestNewContextHandler_WithAttrsKeepsExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := logger.NewContextHandler(slog.NewJSONHandler(&buf, nil), extractor)
	log := slog.New(h).With("component", "router").WithGroup("req")

	log.InfoContext(context.WithValue(context.Background(), ctxKey{}, "req-9"), "grouped", "path", "/blog")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "router", rec["component"])
	group, ok := rec["req"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/blog", group["path"])
	assert.Equal(t, "req-9", group["request_id"])
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
