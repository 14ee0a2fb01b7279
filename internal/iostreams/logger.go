package iostreams

import "github.com/rs/zerolog"

// Logger provides diagnostic file logging for the command layer.
// Production wires logger.Default(); tests use loggertest.NewNop().
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}
