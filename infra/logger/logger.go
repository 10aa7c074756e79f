package logger

import corelogger "github.com/kilianp07/liftbank/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component using the package defaults
// set by Configure. The APP_ENV variable still switches to console output.
func New(component string) Logger {
	return NewZerologLogger(component)
}
