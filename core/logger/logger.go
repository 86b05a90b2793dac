// Package logger defines the logging contract shared by the matching and
// notification components. Implementations live under infra/logger so core
// packages never import a concrete logging backend.
package logger

// Logger exposes leveled logging. Debugw carries structured fields and is
// used on high-volume paths such as connection lifecycle events, where
// formatted strings would be wasteful.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
