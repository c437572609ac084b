package log

import (
	"os"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/config"
	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

// NewLogger builds the process logger. Console output goes to stderr so the
// rendered book on stdout stays readable.
func NewLogger(cfg config.Config) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	var l zerolog.Logger
	if cfg.Logging.Pretty {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return l.Level(level)
}
