package log

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	config "github.com/thirdweb-dev/portal-client/configs"
)

// InitLogger overrides zerolog's package-level global logger with a
// "portalctl"-scoped logger built from configs.Cfg.Log, so any code that
// imports github.com/rs/zerolog/log directly (cobra's own error paths,
// third-party libraries) inherits the configured level and format without
// needing a reference to this package.
func InitLogger() {
	log.Logger = NewLogger("portalctl")
}

// NewLogger builds a component-scoped logger off configs.Cfg.Log: level
// from Log.Level (defaulting to warn on an empty or unparseable value),
// console-formatted when Log.Pretty is set, JSON to stderr otherwise.
func NewLogger(component string) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level := zerolog.WarnLevel
	if lvl, err := zerolog.ParseLevel(config.Cfg.Log.Level); err == nil && lvl != zerolog.NoLevel {
		level = lvl
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("component", component).Logger()
	logger = logger.With().Caller().Logger()
	if config.Cfg.Log.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

// ForStream scopes a "stream"-component logger to one named stream label.
// cmd/stream.go logs through this instead of the bare global logger, so
// its output — including its debug server goroutine's lines — can be told
// apart from other streams by the "stream" field. The sinks it drives do
// not receive this logger: sink/kafka logs through the global logger, and
// sink/cursor and sink/checkpoint do not log.
func ForStream(label string) zerolog.Logger {
	return NewLogger("stream").With().Str("stream", label).Logger()
}
