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

// Options selects the level and format of every logger created by New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Out    io.Writer
}

var (
	optsMu   sync.RWMutex
	defaults = Options{Level: "info", Format: "json"}
)

// Configure sets the options used by subsequent calls to New.
func Configure(o Options) error {
	if _, err := parseLevel(o.Level); err != nil {
		return err
	}
	if o.Format != "" && o.Format != "json" && o.Format != "console" {
		return fmt.Errorf("unknown log format %q", o.Format)
	}
	optsMu.Lock()
	defaults = o
	optsMu.Unlock()
	return nil
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger tagged with the component field.
// APP_ENV=dev forces console output.
func NewZerologLogger(component string) Logger {
	optsMu.RLock()
	o := defaults
	optsMu.RUnlock()
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		o.Format = "console"
	}
	return newZerolog(component, o)
}

func newZerolog(component string, o Options) *ZerologLogger {
	out := o.Out
	if out == nil {
		out = os.Stdout
	}
	if o.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	lvl, err := parseLevel(o.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	z := zerolog.New(out).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func parseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
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
