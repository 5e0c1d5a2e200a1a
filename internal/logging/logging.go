package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process-wide zerolog logger with structured JSON output.
// Components receive children via logger.With().Str("component", …).
func New(level, service string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = true

	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
