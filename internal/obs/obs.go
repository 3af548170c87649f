// Package obs wraps the standard library's log.Logger with leveled
// helpers, matching the teacher's own ambient choice (cmd/lsp/server.go
// logs with plain log.Printf throughout; there is no structured-logging
// dependency anywhere in the teacher's go.mod to inherit). A Discard()
// logger is the default so a library consumer must opt in to output.
package obs

import (
	"io"
	"log"
	"os"
)

// Level is a log severity, ordered low to high.
type Level int

const (
	LevelDebug Level = iota
	LevelWarn
	LevelError
)

// Logger is a leveled wrapper over *log.Logger.
type Logger struct {
	l     *log.Logger
	level Level
}

// New wraps l, emitting only messages at or above level.
func New(l *log.Logger, level Level) *Logger {
	return &Logger{l: l, level: level}
}

// Discard returns a Logger that drops every message — the default for a
// library consumer that hasn't opted into output.
func Discard() *Logger {
	return New(log.New(io.Discard, "", 0), LevelError)
}

// Std returns a Logger writing to os.Stderr with the teacher's own
// "prefix + flags" convention (cmd/lsp/server.go uses log's default flags).
func Std(prefix string, level Level) *Logger {
	return New(log.New(os.Stderr, prefix, log.LstdFlags), level)
}

func (lg *Logger) Debugf(format string, args ...any) {
	if lg.level > LevelDebug {
		return
	}
	lg.l.Printf("DEBUG "+format, args...)
}

func (lg *Logger) Warnf(format string, args ...any) {
	if lg.level > LevelWarn {
		return
	}
	lg.l.Printf("WARN "+format, args...)
}

func (lg *Logger) Errorf(format string, args ...any) {
	lg.l.Printf("ERROR "+format, args...)
}
