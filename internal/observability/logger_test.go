package observability

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zerolog.Level
	}{
		{raw: "debug", want: zerolog.DebugLevel},
		{raw: " WARN ", want: zerolog.WarnLevel},
		{raw: "warning", want: zerolog.WarnLevel},
		{raw: "error", want: zerolog.ErrorLevel},
		{raw: "off", want: zerolog.Disabled},
		{raw: "", want: zerolog.InfoLevel},
		{raw: "bogus", want: zerolog.InfoLevel},
	}

	for _, tc := range tests {
		if got := parseLevel(tc.raw); got != tc.want {
			t.Fatalf("expected level %v for %q, got %v", tc.want, tc.raw, got)
		}
	}
}

func TestInitLoggerHonorsEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "console")

	logger := InitLogger("coordctl-test")
	if logger.GetLevel() != zerolog.ErrorLevel {
		t.Fatalf("expected error level from env, got %v", logger.GetLevel())
	}
}
