package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/environment"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/logger"
)

type ctxKey string

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithFormat(logger.FormatJSON),
		logger.WithOutput(&buf),
		logger.WithAttr(slog.String("service", "emailify-api")),
	)

	log.Info("started")

	rec := decodeLine(t, &buf)
	assert.Equal(t, "started", rec["msg"])
	assert.Equal(t, "emailify-api", rec["service"])
}

func TestNew_ContextValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	key := ctxKey("request_id")
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithContextValue("request_id", key),
	)

	ctx := context.WithValue(context.Background(), key, "req-42")
	log.InfoContext(ctx, "handled")

	rec := decodeLine(t, &buf)
	assert.Equal(t, "req-42", rec["request_id"])
}

func TestNew_ContextExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithContextExtractors(
			nil, // dropped, must not panic
			func(ctx context.Context) (slog.Attr, bool) {
				return slog.String("tenant", "acme"), true
			},
			func(ctx context.Context) (slog.Attr, bool) {
				return slog.Attr{}, false
			},
		),
	)

	log.InfoContext(context.Background(), "ok")

	rec := decodeLine(t, &buf)
	assert.Equal(t, "acme", rec["tenant"])
}

func TestNew_EnvironmentPresets(t *testing.T) {
	t.Parallel()

	t.Run("development is debug text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithEnvironment(environment.Development, "emailify-api"),
			logger.WithOutput(&buf),
		)

		log.Debug("verbose detail")
		assert.Contains(t, buf.String(), "verbose detail")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("production drops debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithEnvironment(environment.Production, "emailify-api"),
			logger.WithOutput(&buf),
		)

		log.Debug("noise")
		assert.Empty(t, buf.String())

		log.Info("kept")
		rec := decodeLine(t, &buf)
		assert.Equal(t, "production", rec["env"])
	})
}

func TestWithFormat_InvalidPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}

func TestErrorAttr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf))
	log.Error("failed", logger.Error(errors.New("boom")))

	rec := decodeLine(t, &buf)
	assert.Equal(t, "boom", rec["error"])
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf))
	log.Info("generated",
		logger.Component("generator"),
		logger.ConversationID("c-1"),
		logger.Attempt(3),
	)

	rec := decodeLine(t, &buf)
	assert.Equal(t, "generator", rec["component"])
	assert.Equal(t, "c-1", rec["conversation_id"])
	assert.Equal(t, float64(3), rec["attempt"])
}
