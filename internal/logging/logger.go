// Package logging configures the zerolog logger shared by every surface.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w at the given level name.
// Unknown levels fall back to info.
func New(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Nop is a disabled logger for tests and library defaults.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// Leveled adapts a zerolog logger to the LeveledLogger shape expected by
// go-retryablehttp (msg followed by alternating key/value pairs).
type Leveled struct {
	L zerolog.Logger
}

func (l Leveled) Error(msg string, kv ...interface{}) { l.emit(l.L.Error(), msg, kv) }
func (l Leveled) Info(msg string, kv ...interface{}) { l.emit(l.L.Info(), msg, kv) }
func (l Leveled) Debug(msg string, kv ...interface{}) { l.emit(l.L.Debug(), msg, kv) }
func (l Leveled) Warn(msg string, kv ...interface{}) { l.emit(l.L.Warn(), msg, kv) }

func (l Leveled) emit(ev *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}
