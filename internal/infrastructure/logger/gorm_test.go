package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.Background()
	query := func() (string, int64) { return "SELECT * FROM sales", 3 }

	t.Run("failed query logs at error", func(t *testing.T) {
		zl, logs := newObservedLogger()
		gl := NewGormLogger(zl, gormlogger.Warn)

		gl.Trace(ctx, time.Now(), query, errors.New("connection reset"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.ErrorLevel, entry.Level)
		assert.Equal(t, "query failed", entry.Message)
		assert.Equal(t, "SELECT * FROM sales", entry.ContextMap()["sql"])
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		zl, logs := newObservedLogger()
		gl := NewGormLogger(zl, gormlogger.Warn)

		gl.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)

		assert.Zero(t, logs.Len())
	})

	t.Run("slow query logs at warn", func(t *testing.T) {
		zl, logs := newObservedLogger()
		gl := NewGormLogger(zl, gormlogger.Warn)

		gl.Trace(ctx, time.Now().Add(-time.Second), query, nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.WarnLevel, entry.Level)
		assert.Equal(t, "slow query", entry.Message)
	})

	t.Run("fast query is silent below info", func(t *testing.T) {
		zl, logs := newObservedLogger()
		gl := NewGormLogger(zl, gormlogger.Warn)

		gl.Trace(ctx, time.Now(), query, nil)

		assert.Zero(t, logs.Len())
	})

	t.Run("silent level drops everything", func(t *testing.T) {
		zl, logs := newObservedLogger()
		gl := NewGormLogger(zl, gormlogger.Silent)

		gl.Trace(ctx, time.Now().Add(-time.Second), query, errors.New("ignored"))

		assert.Zero(t, logs.Len())
	})

	t.Run("carries the request id from the context", func(t *testing.T) {
		zl, logs := newObservedLogger()
		gl := NewGormLogger(zl, gormlogger.Warn)
		reqCtx, _ := WithRequestID(ctx, zap.NewNop(), "req-9")

		gl.Trace(reqCtx, time.Now().Add(-time.Second), query, nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-9", logs.All()[0].ContextMap()["request_id"])
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	zl, logs := newObservedLogger()
	gl := NewGormLogger(zl, gormlogger.Silent)

	raised := gl.LogMode(gormlogger.Error)
	raised.Error(context.Background(), "migration %s failed", "20250601090000")

	require.Equal(t, 1, logs.Len())

	// The original keeps its own level
	gl.Error(context.Background(), "still silent")
	assert.Equal(t, 1, logs.Len())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
