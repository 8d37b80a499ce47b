// Package telemetry wraps github.com/sirupsen/logrus behind a narrow
// interface, mirroring the joeycumines-go-utilpkg/sql/log wrapper shape
// (Logrus{logrus.Logger} implementing a small Logger surface) rather than
// threading *logrus.Entry through every signature.
package telemetry

import "github.com/sirupsen/logrus"

// Logger is the surface the simulator's components depend on. The cache
// logs fall-through reads at Debug; the oracle search logs each trial at
// Debug and its committed height at Info; the CLI logs preprocessing at
// Info. Cache misses, evictions, adaptation decisions and round summaries
// are not logged, and errors are returned to the caller rather than
// logged.
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	WithError(err error) Logger

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// Logrus adapts a *logrus.Logger (or Entry) to Logger.
type Logrus struct {
	entry *logrus.Entry
}

// NewLogrus builds a Logger backed by a fresh logrus.Logger at the given
// level.
func NewLogrus(level logrus.Level) Logger {
	l := logrus.New()
	l.SetLevel(level)
	return Logrus{entry: logrus.NewEntry(l)}
}

func (x Logrus) WithField(key string, value any) Logger {
	return Logrus{entry: x.entry.WithField(key, value)}
}

func (x Logrus) WithFields(fields map[string]any) Logger {
	return Logrus{entry: x.entry.WithFields(logrus.Fields(fields))}
}

func (x Logrus) WithError(err error) Logger {
	return Logrus{entry: x.entry.WithError(err)}
}

func (x Logrus) Debugf(format string, args ...any) { x.entry.Debugf(format, args...) }
func (x Logrus) Infof(format string, args ...any)  { x.entry.Infof(format, args...) }
func (x Logrus) Errorf(format string, args ...any) { x.entry.Errorf(format, args...) }

// Noop discards everything; used by tests that don't care about logging
// output.
type Noop struct{}

func (Noop) WithField(string, any) Logger          { return Noop{} }
func (Noop) WithFields(map[string]any) Logger      { return Noop{} }
func (Noop) WithError(error) Logger                { return Noop{} }
func (Noop) Debugf(string, ...any)                 {}
func (Noop) Infof(string, ...any)                  {}
func (Noop) Errorf(string, ...any)                 {}
