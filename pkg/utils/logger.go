// Package utils holds small cross-cutting helpers shared by every
// internal package, starting with the structured logger.
package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus.Entry so call sites get a typed, chainable
// WithField/WithFields API without importing logrus directly.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger builds a Logger at the given level ("debug", "info",
// "warn", "error", "fatal") and format ("json" or "text").
func NewLogger(level, format string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	if strings.ToLower(format) == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	return &Logger{entry: logrus.NewEntry(l)}
}

// WithField returns a child Logger carrying an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a child Logger carrying additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithError returns a child Logger carrying the given error under the
// conventional "error" field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

func (l *Logger) Debug(msg string)                          { l.entry.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Info(msg string)                            { l.entry.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warn(msg string)                            { l.entry.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Error(msg string)                           { l.entry.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *Logger) Fatal(msg string)                           { l.entry.Fatal(msg) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

var defaultLogger = NewLogger("info", "json")

// Default returns the process-wide default logger.
func Default() *Logger { return defaultLogger }

// SetDefaultLogger replaces the process-wide default logger.
func SetDefaultLogger(logger *Logger) { defaultLogger = logger }

func Debug(msg string)                          { defaultLogger.Debug(msg) }
func Debugf(format string, args ...interface{}) { defaultLogger.Debugf(format, args...) }
func Info(msg string)                           { defaultLogger.Info(msg) }
func Infof(format string, args ...interface{})  { defaultLogger.Infof(format, args...) }
func Warn(msg string)                           { defaultLogger.Warn(msg) }
func Warnf(format string, args ...interface{})  { defaultLogger.Warnf(format, args...) }
func Error(msg string)                          { defaultLogger.Error(msg) }
func Errorf(format string, args ...interface{}) { defaultLogger.Errorf(format, args...) }
func Fatal(msg string)                          { defaultLogger.Fatal(msg) }
func Fatalf(format string, args ...interface{}) { defaultLogger.Fatalf(format, args...) }
