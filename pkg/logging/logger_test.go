package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

// captureOutput redirects the standard log package's output for the
// duration of fn and returns what was written.
func captureOutput(fn func()) string {
	var buf bytes.Buffer
	original := log.Writer()
	originalFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(original)
		log.SetFlags(originalFlags)
	}()
	fn()
	return buf.String()
}

// TestNilLoggerSafe tests that every method on a nil *Logger is a no-op
// rather than a panic, so callers never need to nil-check a logger before
// using it.
func TestNilLoggerSafe(t *testing.T) {
	var l *Logger
	l.SetLevel(LevelTrace)
	l.Info("should not panic")
	l.Infof("should not %s", "panic")
	l.Debug("should not panic")
	l.Debugf("should not %s", "panic")
	l.Tracef("should not %s", "panic")
	l.Warn(errTest)
	l.Error(errTest)
	if sub := l.Sublogger("child"); sub != nil {
		t.Error("Sublogger on a nil Logger should return nil")
	}
	if w := l.Writer(); w == nil {
		t.Error("Writer on a nil Logger should return a non-nil discarding writer")
	}
}

var errTest = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

// TestLoggerGating tests that messages below the configured level are
// suppressed and messages at or above it are emitted.
func TestLoggerGating(t *testing.T) {
	l := &Logger{level: LevelWarn}

	output := captureOutput(func() {
		l.Info("info line")
		l.Debug("debug line")
		l.Warn(errTest)
	})

	if strings.Contains(output, "info line") {
		t.Error("Info logged below its gating level")
	}
	if strings.Contains(output, "debug line") {
		t.Error("Debug logged below its gating level")
	}
	if !strings.Contains(output, "boom") {
		t.Error("Warn did not log at or above its gating level")
	}
}

// TestSubloggerPrefix tests that Sublogger composes a dotted prefix and
// that the prefix is included in output.
func TestSubloggerPrefix(t *testing.T) {
	root := &Logger{level: LevelInfo}
	child := root.Sublogger("planner")
	grandchild := child.Sublogger("backtrack")

	if grandchild.prefix != "planner.backtrack" {
		t.Errorf("grandchild prefix = %q, expected %q", grandchild.prefix, "planner.backtrack")
	}

	output := captureOutput(func() {
		grandchild.Info("searching")
	})
	if !strings.Contains(output, "[planner.backtrack]") {
		t.Errorf("output %q missing expected prefix tag", output)
	}
}

// TestSubloggerInheritsLevelAtCreation tests that a sublogger's level is
// fixed at creation time and unaffected by later changes to the parent.
func TestSubloggerInheritsLevelAtCreation(t *testing.T) {
	root := &Logger{level: LevelDebug}
	child := root.Sublogger("worker")

	root.SetLevel(LevelDisabled)

	output := captureOutput(func() {
		child.Debug("still enabled")
	})
	if !strings.Contains(output, "still enabled") {
		t.Error("sublogger level changed after parent's SetLevel call")
	}
}

// TestWriterSplitsLines tests that Writer buffers partial writes and emits
// one log line per newline-terminated chunk, stripping trailing \r.
func TestWriterSplitsLines(t *testing.T) {
	l := &Logger{level: LevelInfo}

	output := captureOutput(func() {
		w := l.Writer()
		w.Write([]byte("first pa"))
		w.Write([]byte("rt\r\nsecond part\n"))
	})

	if !strings.Contains(output, "first part") {
		t.Errorf("output %q missing reassembled first line", output)
	}
	if !strings.Contains(output, "second part") {
		t.Errorf("output %q missing second line", output)
	}
	if strings.Contains(output, "\r") {
		t.Error("output retained a carriage return that should have been trimmed")
	}
}

// TestWriterDiscardsWhenDisabled tests that Writer returns io.Discard (or
// an equivalent no-op) when its level is gated off.
func TestWriterDiscardsWhenDisabled(t *testing.T) {
	l := &Logger{level: LevelDisabled}
	w := l.Writer()
	n, err := w.Write([]byte("anything\n"))
	if err != nil {
		t.Fatalf("unexpected error writing to discarding writer: %v", err)
	}
	if n != len("anything\n") {
		t.Errorf("Write returned n = %d, expected %d", n, len("anything\n"))
	}
}
