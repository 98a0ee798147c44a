package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns the attached logger", func(t *testing.T) {
		log := zap.NewExample()
		ctx := WithContext(context.Background(), log)

		assert.Same(t, log, FromContext(ctx))
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		log := FromContext(context.Background())

		require.NotNil(t, log)
		// Must be safe to use even though nothing was attached.
		log.Info("ignored")
	})
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	ctx, reqLog := WithRequestID(context.Background(), log, "req-123")
	reqLog.Info("hello")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Same(t, reqLog, FromContext(ctx))

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}

func TestGetRequestID(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}
