package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
)

// lineWriter is an io.Writer that buffers partial lines and forwards
// complete ones to a callback, one at a time.
type lineWriter struct {
	callback func(string)
	buffer   []byte
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

// Write implements io.Writer.
func (w *lineWriter) Write(data []byte) (int, error) {
	w.buffer = append(w.buffer, data...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCR(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(data), nil
}

// Logger is a hierarchical, level-gated logger built on top of the standard
// library's log package. A nil *Logger is valid and silently discards
// everything, so components can accept a logger without nil-checking it
// before every call.
type Logger struct {
	prefix string
	level  Level
}

// RootLogger is the base logger that all sub-loggers derive from. Its level
// defaults to LevelInfo.
var RootLogger = &Logger{level: LevelInfo}

// SetLevel adjusts the logger's verbosity threshold. It affects this logger
// and any subloggers derived from it afterward; subloggers already created
// retain their own level.
func (l *Logger) SetLevel(level Level) {
	if l != nil {
		l.level = level
	}
}

// Sublogger derives a new logger with an additional name component appended
// to the prefix (e.g. "root" -> "root.planner").
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix, level: l.level}
}

func (l *Logger) output(line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(3, line)
}

func (l *Logger) enabled(level Level) bool {
	return l != nil && l.level >= level
}

// Info logs a line at LevelInfo.
func (l *Logger) Info(v ...any) {
	if l.enabled(LevelInfo) {
		l.output(fmt.Sprint(v...))
	}
}

// Infof logs a formatted line at LevelInfo.
func (l *Logger) Infof(format string, v ...any) {
	if l.enabled(LevelInfo) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Debug logs a line at LevelDebug.
func (l *Logger) Debug(v ...any) {
	if l.enabled(LevelDebug) {
		l.output(fmt.Sprint(v...))
	}
}

// Debugf logs a formatted line at LevelDebug.
func (l *Logger) Debugf(format string, v ...any) {
	if l.enabled(LevelDebug) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Tracef logs a formatted line at LevelTrace, the lowest tier (individual
// hash blocks, individual walked paths).
func (l *Logger) Tracef(format string, v ...any) {
	if l.enabled(LevelTrace) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Warn logs a non-fatal error in yellow, gated at LevelWarn.
func (l *Logger) Warn(err error) {
	if l.enabled(LevelWarn) {
		l.output(color.YellowString("warning: %v", err))
	}
}

// Error logs a fatal-class error in red, gated at LevelError.
func (l *Logger) Error(err error) {
	if l.enabled(LevelError) {
		l.output(color.RedString("error: %v", err))
	}
}

// Writer returns an io.Writer that logs each line it receives at LevelInfo.
// Useful for capturing subprocess output without the caller needing to scan
// lines itself.
func (l *Logger) Writer() io.Writer {
	if !l.enabled(LevelInfo) {
		return io.Discard
	}
	return &lineWriter{callback: l.info1}
}

// info1 logs a single already-assembled line, satisfying the func(string)
// shape that lineWriter's callback expects.
func (l *Logger) info1(s string) { l.Info(s) }
