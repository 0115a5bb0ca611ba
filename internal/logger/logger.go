package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger exposes logging methods for common severity levels.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Nop implements Logger with no-op methods.
type Nop struct{}

func (Nop) Debugf(string, ...any)         {}
func (Nop) Debugw(string, map[string]any) {}
func (Nop) Infof(string, ...any)          {}
func (Nop) Warnf(string, ...any)          {}
func (Nop) Errorf(string, ...any)         {}

var (
	mu      sync.RWMutex
	out     io.Writer = os.Stderr
	console           = true
	level             = zerolog.InfoLevel
)

// Configure sets the process-wide output used by New. format is "console" or
// "json"; level is any zerolog level name.
func Configure(lvl, format string, w io.Writer) error {
	parsed, err := zerolog.ParseLevel(strings.ToLower(lvl))
	if err != nil {
		return fmt.Errorf("log level %q: %w", lvl, err)
	}
	if parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	var isConsole bool
	switch strings.ToLower(format) {
	case "", "console":
		isConsole = true
	case "json":
	default:
		return fmt.Errorf("unknown log format %s", format)
	}
	mu.Lock()
	defer mu.Unlock()
	if w != nil {
		out = w
	}
	console = isConsole
	level = parsed
	return nil
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// New returns a Logger for the given component using the configured output.
func New(component string) Logger {
	mu.RLock()
	w, c, l := out, console, level
	mu.RUnlock()
	if c {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(component, w, l)
}

// NewWithWriter builds a logger writing JSON lines to w. Tests use it to
// inspect warnings.
func NewWithWriter(component string, w io.Writer, lvl zerolog.Level) Logger {
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
