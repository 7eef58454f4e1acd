package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/frameweavers/showreel/internal/config"
	"github.com/frameweavers/showreel/internal/ctxkeys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(withRequestID(slog.NewJSONHandler(&buf, nil)))

	ctx := ctxkeys.WithRequestID(context.Background(), "req-42")
	log.ErrorContext(ctx, "failed to delete portfolio entry", "ref", "abc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "abc", line["ref"])

	buf.Reset()
	log.Info("server starting")
	var bare map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &bare))
	assert.NotContains(t, bare, "request_id")
}

func TestOptionsFrom_CarriesSentryDSN(t *testing.T) {
	t.Setenv("APP_NAME", "showreel-do")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SENTRY_DSN", "https://key@sentry.test/1")

	opts := OptionsFrom(config.Load())

	assert.Equal(t, Options{
		AppName:   "showreel-do",
		AppEnv:    "production",
		SentryDSN: "https://key@sentry.test/1",
	}, opts)
}
