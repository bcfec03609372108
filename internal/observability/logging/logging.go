package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger: human-readable console output in dev,
// JSON lines otherwise.
func New(service, env string) zerolog.Logger {
	if env == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().
			Timestamp().
			Str("service", service).
			Logger()
	}

	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
