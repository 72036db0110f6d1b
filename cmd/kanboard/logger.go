package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	charmLog "github.com/charmbracelet/log"
)

// loggerOptions describes the sinks one command run writes to.
type loggerOptions struct {
	Level   string
	Prefix  string
	Console io.Writer
	// FilePath enables the logfmt file sink when non-empty.
	FilePath string
}

// logSink is one charm logger plus whether it writes to the terminal.
type logSink struct {
	logger  *charmLog.Logger
	console bool
}

// runtimeLogger fans events to a styled console sink and an optional logfmt file sink. The
// console can be muted while the TUI owns the terminal.
type runtimeLogger struct {
	sinks []logSink
	muted atomic.Bool
	file  *os.File
}

// newRuntimeLogger opens every sink named by opts.
func newRuntimeLogger(opts loggerOptions) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", opts.Level, err)
	}
	l := &runtimeLogger{}
	if opts.Console != nil {
		l.sinks = append(l.sinks, logSink{
			logger:  newSinkLogger(opts.Console, opts.Prefix, level, charmLog.TextFormatter),
			console: true,
		})
	}
	if opts.FilePath == "" {
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.file = file
	l.sinks = append(l.sinks, logSink{logger: newSinkLogger(file, opts.Prefix, level, charmLog.LogfmtFormatter)})
	return l, nil
}

// newSinkLogger builds one timestamped charm logger.
func newSinkLogger(w io.Writer, prefix string, level charmLog.Level, formatter charmLog.Formatter) *charmLog.Logger {
	return charmLog.NewWithOptions(w, charmLog.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	})
}

// FilePath returns the open log file, or "" without a file sink.
func (l *runtimeLogger) FilePath() string {
	if l == nil || l.file == nil {
		return ""
	}
	return l.file.Name()
}

// MuteConsole stops or resumes terminal output. File output is unaffected.
func (l *runtimeLogger) MuteConsole(muted bool) {
	if l != nil {
		l.muted.Store(muted)
	}
}

// consoleLive reports whether events currently reach the terminal.
func (l *runtimeLogger) consoleLive() bool {
	if l == nil || l.muted.Load() {
		return false
	}
	for _, sink := range l.sinks {
		if sink.console {
			return true
		}
	}
	return false
}

// Close closes the file sink, if any.
func (l *runtimeLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// log writes one event to every live sink.
func (l *runtimeLogger) log(level charmLog.Level, msg string, keyvals ...any) {
	if l == nil {
		return
	}
	muted := l.muted.Load()
	for _, sink := range l.sinks {
		if sink.console && muted {
			continue
		}
		sink.logger.Log(level, msg, keyvals...)
	}
}

func (l *runtimeLogger) Debug(msg string, keyvals ...any) { l.log(charmLog.DebugLevel, msg, keyvals...) }
func (l *runtimeLogger) Info(msg string, keyvals ...any)  { l.log(charmLog.InfoLevel, msg, keyvals...) }
func (l *runtimeLogger) Warn(msg string, keyvals ...any)  { l.log(charmLog.WarnLevel, msg, keyvals...) }
func (l *runtimeLogger) Error(msg string, keyvals ...any) { l.log(charmLog.ErrorLevel, msg, keyvals...) }
