package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the otelgorm plugin.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables; never in production
	SlowQueryThresh time.Duration
	DBSystem        string
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm and a slow-query annotator on db.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSlowQuery(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	steps := []struct {
		op  string
		err func() error
	}{
		{"create", func() error {
			if err := cb.Create().Before("gorm:create").Register("ledger_timing:before_create", before); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("ledger_timing:after_create", after)
		}},
		{"query", func() error {
			if err := cb.Query().Before("gorm:query").Register("ledger_timing:before_query", before); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("ledger_timing:after_query", after)
		}},
		{"update", func() error {
			if err := cb.Update().Before("gorm:update").Register("ledger_timing:before_update", before); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("ledger_timing:after_update", after)
		}},
		{"delete", func() error {
			if err := cb.Delete().Before("gorm:delete").Register("ledger_timing:before_delete", before); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("ledger_timing:after_delete", after)
		}},
		{"raw", func() error {
			if err := cb.Raw().Before("gorm:raw").Register("ledger_timing:before_raw", before); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register("ledger_timing:after_raw", after)
		}},
	}
	for _, step := range steps {
		if err := step.err(); err != nil {
			return fmt.Errorf("register %s timing callbacks: %w", step.op, err)
		}
	}

	logger.Info("database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateSlowQuery(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok || threshold <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
