package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel  = "COORDCTL_LOG_LEVEL"
	EnvLogFormat = "COORDCTL_LOG_FORMAT"
)

// InitLogger configures the process logger for a long-running daemon:
// JSON to stdout by default, console output when COORDCTL_LOG_FORMAT
// is "console", level from COORDCTL_LOG_LEVEL (default info).
func InitLogger(app string) zerolog.Logger {
	var output io.Writer = os.Stdout
	if strings.EqualFold(strings.TrimSpace(os.Getenv(EnvLogFormat)), "console") {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	logger := zerolog.New(output).
		Level(parseLevel(os.Getenv(EnvLogLevel))).
		With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

func parseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
