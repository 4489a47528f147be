package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestFromContext(t *testing.T) {
	t.Run("returns the attached logger", func(t *testing.T) {
		l, _ := newObservedLogger()
		ctx := WithContext(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		l := FromContext(context.Background())
		require.NotNil(t, l)
		l.Info("discarded")
	})
}

func TestWithRequestID(t *testing.T) {
	l, logs := newObservedLogger()

	ctx, reqLogger := WithRequestID(context.Background(), l, "req-42")
	reqLogger.Info("catalog snapshot served")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
	assert.Equal(t, "req-42", RequestIDFrom(ctx))
	assert.Same(t, reqLogger, FromContext(ctx))
}

func TestWithActorFields(t *testing.T) {
	l, logs := newObservedLogger()
	ctx := context.Background()

	ctx, _ = WithUserID(ctx, l, "cashier-7")
	ctx, enriched := WithTenantID(ctx, FromContext(ctx), "tenant-1")
	enriched.Info("shift opened")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "cashier-7", fields["user_id"])
	assert.Equal(t, "tenant-1", fields["tenant_id"])
}

func TestRequestIDFrom(t *testing.T) {
	assert.Empty(t, RequestIDFrom(context.Background()))
}
