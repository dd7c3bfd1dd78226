// Package logging provides the leveled logger shared by the command-line
// tools and servers.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a case-insensitive level name. Unknown names map to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides leveled logging on top of the standard log package.
type Logger struct {
	level Level
	out   *log.Logger
}

// New creates a logger writing to stderr at the given level.
func New(level string) *Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(level string, w io.Writer) *Logger {
	return &Logger{
		level: ParseLevel(level),
		out:   log.New(w, "", log.LstdFlags),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{level: LevelError + 1, out: log.New(io.Discard, "", 0)}
}

// Level reports the active level.
func (l *Logger) Level() Level { return l.level }

func (l *Logger) enabled(level Level) bool {
	return l != nil && level >= l.level
}

func (l *Logger) logf(level Level, tag, format string, v ...any) {
	if l.enabled(level) {
		l.out.Output(3, tag+fmt.Sprintf(format, v...))
	}
}

// Debugf logs a debug message
func (l *Logger) Debugf(format string, v ...any) { l.logf(LevelDebug, "[DEBUG] ", format, v...) }

// Infof logs an info message
func (l *Logger) Infof(format string, v ...any) { l.logf(LevelInfo, "[INFO] ", format, v...) }

// Warnf logs a warning message
func (l *Logger) Warnf(format string, v ...any) { l.logf(LevelWarn, "[WARN] ", format, v...) }

// Errorf logs an error message
func (l *Logger) Errorf(format string, v ...any) { l.logf(LevelError, "[ERROR] ", format, v...) }
