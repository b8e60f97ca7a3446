// Package logger provides the leveled logger shared by all wren packages.
//
// The logger is a thin wrapper around the standard library log package with a
// global level threshold. It exists so that every component logs through the
// same writer, which matters once the TUI owns the terminal and diagnostics
// have to be redirected to a file.
package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// Level is the verbosity threshold used by the logger.
//
// Lower values are more verbose.
type Level int

const (
	// LevelTrace enables extremely verbose logs (wire payloads, reconciler
	// inputs, etc).
	LevelTrace Level = iota
	// LevelDebug enables verbose logs intended for debugging.
	LevelDebug
	// LevelInfo enables informational logs (default).
	LevelInfo
	// LevelWarn enables only warnings and errors.
	LevelWarn
	// LevelError enables only error logs.
	LevelError
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// ParseLevel parses a log level string into a Level.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}

var (
	mu       sync.RWMutex
	minLevel = LevelInfo
	std      = log.New(log.Writer(), "", log.LstdFlags)
)

// SetOutput replaces the writer used by the global logger.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	std.SetOutput(w)
}

// SetFlags sets the underlying log flags used for all output.
func SetFlags(flags int) {
	mu.Lock()
	defer mu.Unlock()
	std.SetFlags(flags)
}

// SetLevel sets the global log level threshold.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// Enabled reports whether a level would be emitted by the current
// configuration.
func Enabled(level Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level >= minLevel
}

func output(level Level, format string, args ...any) {
	if !Enabled(level) {
		return
	}
	mu.RLock()
	l := std
	mu.RUnlock()
	l.Printf("[%s] %s", levelNames[level], fmt.Sprintf(format, args...))
}

// Tracef logs at TRACE level.
func Tracef(format string, args ...any) { output(LevelTrace, format, args...) }

// Debugf logs at DEBUG level.
func Debugf(format string, args ...any) { output(LevelDebug, format, args...) }

// Infof logs at INFO level.
func Infof(format string, args ...any) { output(LevelInfo, format, args...) }

// Warnf logs at WARN level.
func Warnf(format string, args ...any) { output(LevelWarn, format, args...) }

// Errorf logs at ERROR level.
func Errorf(format string, args ...any) { output(LevelError, format, args...) }
