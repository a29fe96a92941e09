// Package logger provides leveled structured logging.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var defaultLogger = zap.NewNop().Sugar()

// Init initializes the default logger with the specified level and format.
// Format "json" emits one JSON object per line; anything else uses the console encoder.
func Init(level string, format string) {
	var l zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		l = zapcore.DebugLevel
	case "info":
		l = zapcore.InfoLevel
	case "warn":
		l = zapcore.WarnLevel
	case "error":
		l = zapcore.ErrorLevel
	default:
		l = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if strings.ToLower(format) == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), l)
	defaultLogger = newLogger(core)
}

// newLogger skips one frame so callers of the package-level wrappers are reported.
func newLogger(core zapcore.Core) *zap.SugaredLogger {
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// With returns a child logger carrying the given key/value pairs.
// The child is called directly, so it does not skip the wrapper frame.
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	return defaultLogger.WithOptions(zap.AddCallerSkip(-1)).With(keysAndValues...)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = defaultLogger.Sync()
}

func Debug(format string, args ...interface{}) {
	defaultLogger.Debugf(format, args...)
}

func Info(format string, args ...interface{}) {
	defaultLogger.Infof(format, args...)
}

func Warn(format string, args ...interface{}) {
	defaultLogger.Warnf(format, args...)
}

func Error(format string, args ...interface{}) {
	defaultLogger.Errorf(format, args...)
}

func Fatal(format string, args ...interface{}) {
	defaultLogger.Fatalf(format, args...)
}
