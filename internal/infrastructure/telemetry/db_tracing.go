package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables in spans; never in production
	SlowQueryThresh time.Duration
	DBName          string
}

const startTimeKey = "telemetry:query_start"

// RegisterDBTracing installs the otelgorm plugin on db and flags spans of
// queries slower than the threshold.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		tx.InstanceSet(startTimeKey, time.Now())
	}
	after := func(tx *gorm.DB) {
		markSlowQuery(tx, cfg.SlowQueryThresh)
	}

	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("telemetry:before_create", before),
		cb.Query().Before("gorm:query").Register("telemetry:before_query", before),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", before),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", before),
		cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", before),
		cb.Create().After("gorm:create").Register("telemetry:after_create", after),
		cb.Query().After("gorm:query").Register("telemetry:after_query", after),
		cb.Update().After("gorm:update").Register("telemetry:after_update", after),
		cb.Delete().After("gorm:delete").Register("telemetry:after_delete", after),
		cb.Raw().After("gorm:raw").Register("telemetry:after_raw", after),
	)
	if err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

// markSlowQuery reports whether the statement exceeded thresh and tags its span.
func markSlowQuery(tx *gorm.DB, thresh time.Duration) bool {
	v, ok := tx.InstanceGet(startTimeKey)
	if !ok {
		return false
	}
	start, ok := v.(time.Time)
	if !ok {
		return false
	}
	elapsed := time.Since(start)
	if thresh <= 0 || elapsed <= thresh {
		return false
	}
	if tx.Statement.Context != nil {
		span := trace.SpanFromContext(tx.Statement.Context)
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
	return true
}
