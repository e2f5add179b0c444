// Package logging provides the minimal printf-style logging contract used
// across the evaluation engine, so packages can log without binding to a
// concrete sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger is the logging contract. Implementations must be safe for
// concurrent use.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Level controls the minimum severity a writer logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type writerLogger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// New returns a logger writing timestamped lines to w at the given level.
func New(w io.Writer, level Level) Logger {
	return &writerLogger{out: w, level: level}
}

// Default returns the stderr logger used by the CLI.
func Default() Logger { return New(os.Stderr, LevelInfo) }

func (l *writerLogger) log(level Level, tag, format string, args ...any) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s [%s] %s\n", time.Now().Format("15:04:05.000"), tag, fmt.Sprintf(format, args...))
}

func (l *writerLogger) Debug(format string, args ...any) { l.log(LevelDebug, "DEBUG", format, args...) }
func (l *writerLogger) Info(format string, args ...any)  { l.log(LevelInfo, "INFO", format, args...) }
func (l *writerLogger) Warn(format string, args ...any)  { l.log(LevelWarn, "WARN", format, args...) }
func (l *writerLogger) Error(format string, args ...any) { l.log(LevelError, "ERROR", format, args...) }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output. Used by tests and as the
// fallback when no logger is configured.
func Nop() Logger { return nopLogger{} }
