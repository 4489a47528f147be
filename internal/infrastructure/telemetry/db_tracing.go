package telemetry

import (
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL includes query variables in spans. Keep off outside
	// development; carts and drawer counts end up in span payloads otherwise.
	LogFullSQL      bool
	SlowQueryThresh time.Duration
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:         false,
		LogFullSQL:      false,
		SlowQueryThresh: 200 * time.Millisecond,
	}
}

// RegisterDBTracing registers the otelgorm plugin plus a slow-query marker
// on the given GORM DB instance.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := registerSlowQueryCallbacks(db, cfg); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func registerSlowQueryCallbacks(db *gorm.DB, cfg DBTracingConfig) error {
	mark := func(tx *gorm.DB) {
		span := trace.SpanFromContext(tx.Statement.Context)
		if !span.IsRecording() {
			return
		}
		if tx.Statement.Context == nil {
			return
		}
		start, ok := tx.Statement.Context.Value(queryStartTimeKey).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		if elapsed >= cfg.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.elapsed_ms", elapsed.Milliseconds()),
			)
		}
	}
	stamp := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = contextWithQueryStart(tx.Statement.Context)
		}
	}

	if err := db.Callback().Create().Before("gorm:create").Register("pos_timing:before_create", stamp); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register("pos_timing:before_query", stamp); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("pos_timing:before_update", stamp); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("pos_timing:before_delete", stamp); err != nil {
		return err
	}

	if err := db.Callback().Create().After("gorm:create").Register("pos_slow_query:create", mark); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("pos_slow_query:query", mark); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("pos_slow_query:update", mark); err != nil {
		return err
	}
	return db.Callback().Delete().After("gorm:delete").Register("pos_slow_query:delete", mark)
}
