package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit_LevelsAndFormats(t *testing.T) {
	tests := []struct {
		level  string
		format string
	}{
		{"debug", "json"},
		{"INFO", "text"},
		{"warn", "json"},
		{"error", "text"},
		{"bogus", "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			Init(tt.level, tt.format)
			if defaultLogger == nil {
				t.Fatal("Init left the default logger nil")
			}
			Debug("debug %d", 1)
			Info("info %s", "x")
			Warn("warn")
			Error("error %v", nil)
			With("run_id", "abc").Infow("child logger")
		})
	}
}

func TestInit_LevelFiltering(t *testing.T) {
	Init("warn", "json")
	if defaultLogger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be disabled at warn")
	}
	if !defaultLogger.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error level should be enabled at warn")
	}
}

func TestCallerFrames(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := defaultLogger
	defaultLogger = newLogger(core)
	defer func() { defaultLogger = prev }()

	Info("package level %d", 1)
	With("run_id", "abc").Infof("child %d", 2)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Caller.File, "logger_test.go") {
			t.Errorf("Entry %q reported caller %s", e.Message, e.Caller.String())
		}
	}
	if got := entries[1].ContextMap()["run_id"]; got != "abc" {
		t.Errorf("Expected run_id abc, got %v", got)
	}
}
