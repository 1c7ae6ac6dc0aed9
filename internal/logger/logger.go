package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the minimal structured logging surface components depend on. The
// code string is a stable machine-readable tag; obj carries free-form fields.
type Logger interface {
	DebugObj(msg, code string, obj map[string]any)
	InfoObj(msg, code string, obj map[string]any)
	WarnObj(msg, code string, obj map[string]any)
	ErrorObj(msg, code string, obj map[string]any)
}

// ZapLogger implements Logger on top of a zap.Logger.
type ZapLogger struct {
	base *zap.Logger
}

// New builds a production zap logger at the given level ("debug", "info",
// "warn", "error"; anything else means info).
func New(level string) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{base: base}, nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) fields(code string, obj map[string]any) []zap.Field {
	fields := make([]zap.Field, 0, len(obj)+1)
	fields = append(fields, zap.String("code", code))
	for k, v := range obj {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

func (l *ZapLogger) DebugObj(msg, code string, obj map[string]any) {
	l.base.Debug(msg, l.fields(code, obj)...)
}

func (l *ZapLogger) InfoObj(msg, code string, obj map[string]any) {
	l.base.Info(msg, l.fields(code, obj)...)
}

func (l *ZapLogger) WarnObj(msg, code string, obj map[string]any) {
	l.base.Warn(msg, l.fields(code, obj)...)
}

func (l *ZapLogger) ErrorObj(msg, code string, obj map[string]any) {
	l.base.Error(msg, l.fields(code, obj)...)
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error { return l.base.Sync() }

// NopLogger discards everything. Components default nil loggers to this.
type NopLogger struct{}

func (NopLogger) DebugObj(string, string, map[string]any) {}
func (NopLogger) InfoObj(string, string, map[string]any)  {}
func (NopLogger) WarnObj(string, string, map[string]any)  {}
func (NopLogger) ErrorObj(string, string, map[string]any) {}
