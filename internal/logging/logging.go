package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// New creates a zerolog logger writing to w. format is "console" for human
// readable output or "json" for one object per line.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch format {
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// PrintfLogger adapts a zerolog logger to core.Logger. Every Printf call
// becomes one info-level event.
type PrintfLogger struct {
	logger zerolog.Logger
}

// NewPrintfLogger wraps logger for the renderer packages
func NewPrintfLogger(logger zerolog.Logger) core.Logger {
	return &PrintfLogger{logger: logger}
}

func (l *PrintfLogger) Printf(format string, args ...interface{}) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if msg == "" {
		return
	}
	l.logger.Info().Msg(msg)
}
