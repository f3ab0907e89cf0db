// Package logger provides component-scoped diagnostic logging. Debug
// and Info lines are gated on a verbose check so normal runs stay quiet
// on stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Logger writes timestamped, component-tagged lines to a single writer.
type Logger struct {
	component string
	verbose   func() bool
	writer    io.Writer
}

// Field is a key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// New creates a logger for component. verbose may be nil, which
// suppresses Debug and Info output.
func New(component string, verbose func() bool) *Logger {
	return &Logger{
		component: component,
		verbose:   verbose,
		writer:    os.Stderr,
	}
}

// WithComponent returns a logger sharing the writer and verbosity but
// tagged with a different component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		component: component,
		verbose:   l.verbose,
		writer:    l.writer,
	}
}

func (l *Logger) isVerbose() bool {
	return l.verbose != nil && l.verbose()
}

// Debug logs a message shown only in verbose mode.
func (l *Logger) Debug(msg string, fields ...Field) {
	if l.isVerbose() {
		l.log("DEBUG", msg, fields)
	}
}

// Info logs a message shown only in verbose mode.
func (l *Logger) Info(msg string, fields ...Field) {
	if l.isVerbose() {
		l.log("INFO", msg, fields)
	}
}

// Warn logs a warning, always shown.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log("WARN", msg, fields)
}

// Error logs an error, always shown.
func (l *Logger) Error(msg string, fields ...Field) {
	l.log("ERROR", msg, fields)
}

func (l *Logger) log(level, msg string, fields []Field) {
	timestamp := time.Now().Format("15:04:05.000")
	component := l.component
	if component == "" {
		component = "main"
	}

	var fieldsStr string
	if len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		fieldsStr = " [" + strings.Join(parts, " ") + "]"
	}

	// Nothing useful to do if the log write itself fails.
	_, _ = fmt.Fprintf(l.writer, "[%s] %s [%s] %s%s\n", timestamp, level, component, msg, fieldsStr)
}

// Helpers for common field types.

func F(key string, value any) Field { return Field{Key: key, Value: value} }

func Count(value int) Field { return Field{Key: "count", Value: value} }

func Duration(d time.Duration) Field { return Field{Key: "duration", Value: d} }

func Err(err error) Field { return Field{Key: "error", Value: err} }
