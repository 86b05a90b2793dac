// Package logger provides the zerolog-backed implementation of the core
// logging contract.
package logger

import corelogger "github.com/procuro/rfqmatch/core/logger"

// Logger re-exports the core interface so infra packages need one import.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods. Tests use it to silence
// components under test.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger for the component. APP_ENV selects the output
// format, see NewZerologLogger.
func New(component string) Logger {
	return NewZerologLogger(component)
}
