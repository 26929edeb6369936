package logger

import (
	"os"

	"github.com/samvad-hq/samvad-api-helper/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Logger is the structured logging surface the rest of the app depends on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// Init initializes a zap SugaredLogger using settings from config.
func Init(cfg *config.Config) (Logger, error) {
	var level zapcore.Level
	switch cfg.LogLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	// stdout belongs to command output (send, echo); logs go to stderr.
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stderr)),
		level,
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	S = logger.Sugar().With("app", cfg.AppName)
	return &ZapLogger{s: S}, nil
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// ZapLogger adapts a zap SugaredLogger to Logger.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// Sugar exposes the wrapped logger for libraries with printf-style logging.
func (l *ZapLogger) Sugar() *zap.SugaredLogger {
	if l == nil {
		return nil
	}
	return l.s
}

func (l *ZapLogger) InfoObj(msg, key string, obj interface{}) {
	if l == nil || l.s == nil {
		return
	}
	l.s.Desugar().Info(msg, zap.Any(key, obj))
}

func (l *ZapLogger) DebugObj(msg, key string, obj interface{}) {
	if l == nil || l.s == nil {
		return
	}
	l.s.Desugar().Debug(msg, zap.Any(key, obj))
}

func (l *ZapLogger) WarnObj(msg, key string, obj interface{}) {
	if l == nil || l.s == nil {
		return
	}
	l.s.Desugar().Warn(msg, zap.Any(key, obj))
}

func (l *ZapLogger) ErrorObj(msg, key string, obj interface{}) {
	if l == nil || l.s == nil {
		return
	}
	l.s.Desugar().Error(msg, zap.Any(key, obj))
}

// NopLogger discards everything.
type NopLogger struct{}

func (*NopLogger) InfoObj(string, string, interface{})  {}
func (*NopLogger) DebugObj(string, string, interface{}) {}
func (*NopLogger) WarnObj(string, string, interface{})  {}
func (*NopLogger) ErrorObj(string, string, interface{}) {}

// Ensure returns log, or a NopLogger when log is nil.
func Ensure(log Logger) Logger {
	if log == nil {
		return &NopLogger{}
	}
	return log
}

// Minimal object logging helpers -------------------------------------------------
// These log through the package-level logger and are no-ops before Init.
func InfoObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Info(msg, zap.Any(key, obj))
}

func WarnObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Warn(msg, zap.Any(key, obj))
}

func ErrorObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Error(msg, zap.Any(key, obj))
}
