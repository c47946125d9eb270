package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/quantmill/momentum/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"WARN", zerolog.WarnLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "debug",
		LogFormat: "json",
	}

	log := New(cfg)
	if log == nil {
		t.Fatal("New() returned nil")
	}

	// Chained field loggers must not mutate the parent
	child := log.WithField("universe", "NIFTY500")
	if child == log {
		t.Error("WithField should return a new logger")
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()

	// Must not panic or emit anything
	log.Debug("debug")
	log.Info("info")
	log.WithFields(map[string]interface{}{"k": "v"}).Warn("warn")
	log.WithError(nil).Error("error")
	log.Infof("formatted %d", 1)
}
