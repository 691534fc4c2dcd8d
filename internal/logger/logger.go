package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// L is the process logger, set by Init.
var L = zerolog.Nop()

// New builds a zerolog logger. Development gets a console writer, anything
// else JSON lines on stdout.
func New(environment, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if environment == "development" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stdout)
	}

	return log.Level(lvl).With().
		Timestamp().
		Str("service", "file-lifecycle-manager").
		Str("environment", environment).
		Logger()
}

func Init(environment, level string) zerolog.Logger {
	L = New(environment, level)
	return L
}
