package nuodb

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the minimal structured logging surface the driver calls into.
// It matches the subset of go.uber.org/zap.Logger's API this package uses,
// the same way ydb-go-sdk wires zap through a driver-internal interface
// rather than depending on the concrete *zap.Logger everywhere.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

// nopLogger discards everything. It is the default so the driver is silent
// unless a caller opts in with WithLogger.
type nopLogger struct{}

func (nopLogger) Debug(string, ...zap.Field) {}
func (nopLogger) Warn(string, ...zap.Field)  {}
func (nopLogger) Error(string, ...zap.Field) {}

// NewNopLogger returns a Logger that discards all records.
func NewNopLogger() Logger { return nopLogger{} }

// NewProductionLogger returns a zap-backed Logger built from zap's
// production config (JSON encoding) with the level lowered to Debug, so the
// driver's Debug-level handshake records are emitted.
func NewProductionLogger() Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	l, err := cfg.Build()
	if err != nil {
		return nopLogger{}
	}
	return l.Sugar().Desugar()
}
