package observability

import (
	"testing"

	"go.uber.org/zap"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zap.AtomicLevel
	}{
		{in: "DEBUG", want: zap.NewAtomicLevelAt(zap.DebugLevel)},
		{in: "debug", want: zap.NewAtomicLevelAt(zap.DebugLevel)},
		{in: " warn ", want: zap.NewAtomicLevelAt(zap.WarnLevel)},
		{in: "ERROR", want: zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{in: "", want: zap.NewAtomicLevelAt(zap.InfoLevel)},
		{in: "bogus", want: zap.NewAtomicLevelAt(zap.InfoLevel)},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got.Level() != tt.want.Level() {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got.Level(), tt.want.Level())
		}
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger returned nil logger")
	}
	logger.Info("logger smoke test")
}
