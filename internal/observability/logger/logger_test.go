package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	obscontext "github.com/smallbiznis/mensaplan/internal/observability/context"
	"github.com/smallbiznis/mensaplan/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContextAddsIdentifiers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithRunID(ctx, "42")
	ctx = correlation.ContextWithCorrelationID(ctx, "cid-1")

	WithContext(ctx, base).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "42", fields["run_id"])
	assert.Equal(t, "cid-1", fields["correlation_id"])
	assert.NotContains(t, fields, "trace_id")
}

func TestWithRange(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	from := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	WithRange(zap.New(core), from, from.AddDate(0, 0, 4)).Info("import")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "2025-01-13", fields["from"])
	assert.Equal(t, "2025-01-17", fields["to"])
}

func TestGormLoggerTraceLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())

	sql := func() (string, int64) { return "INSERT INTO meals (name) VALUES (?)", 1 }
	l.Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "INSERT", entry.ContextMap()["operation"])

	l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len())

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Equal(t, "UPDATE", operationFromSQL(" update plan_meals set price = 0"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
	assert.Equal(t, "UPSERT", operationFromSQL("INSERT INTO meals (name) VALUES (?) ON DUPLICATE KEY UPDATE id = id"))
	assert.Equal(t, "UPSERT", operationFromSQL(`INSERT INTO "plan_metadata" ("date") VALUES ($1) ON CONFLICT ("date") DO UPDATE SET "holiday"="excluded"."holiday"`))
}

func TestEncodingOf(t *testing.T) {
	assert.Equal(t, "console", encodingOf(" Console "))
	assert.Equal(t, "json", encodingOf(""))
	assert.Equal(t, "json", encodingOf("logfmt"))
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/health", 500))
	assert.Equal(t, zapcore.ErrorLevel, requestLevel("/api/imports", 502))
	assert.Equal(t, zapcore.WarnLevel, requestLevel("/api/meals/:id", 404))
	assert.Equal(t, zapcore.InfoLevel, requestLevel("/api/plans", 200))
}
