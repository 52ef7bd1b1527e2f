package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo})

		logger.Info("hello", "component", "test")

		out := buf.String()
		if !strings.Contains(out, "hello") {
			t.Errorf("log output %q does not contain message", out)
		}
		if !strings.Contains(out, "component=test") {
			t.Errorf("log output %q does not contain attribute", out)
		}
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, Config{JSON: true})

		logger.Info("hello")

		out := buf.String()
		if !strings.Contains(out, `"msg":"hello"`) {
			t.Errorf("log output %q is not JSON formatted", out)
		}
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, Config{Level: slog.LevelWarn})

		logger.Debug("should not appear")
		logger.Info("should not appear either")

		if buf.Len() != 0 {
			t.Errorf("expected no output below warn level, got %q", buf.String())
		}

		logger.Warn("should appear")
		if !strings.Contains(buf.String(), "should appear") {
			t.Errorf("warn message missing from output %q", buf.String())
		}
	})
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	if logger == nil {
		t.Fatal("NewNop() returned nil")
	}
	// Must not panic; output is discarded.
	logger.Info("discarded")
	logger.Error("discarded too")
}
