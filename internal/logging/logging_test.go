package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		got := ParseLevel(tt.input)
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "json", zapcore.InfoLevel)
	logger.Info("normalized", zap.Int("records", 42))
	_ = logger.Sync()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "normalized" {
		t.Errorf("msg = %v, want normalized", entry["msg"])
	}
	if entry["records"] != float64(42) {
		t.Errorf("records = %v, want 42", entry["records"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "console", zapcore.InfoLevel)
	logger.Warn("rejects written", zap.String("path", "rejects.jsonl"))

	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "rejects written") {
		t.Errorf("unexpected console output: %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("console output looks like JSON: %q", out)
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "json", zapcore.WarnLevel)
	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}
	logger.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected error entry, got %q", buf.String())
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"json", "JSON", "console", "text"} {
		if err := ValidFormat(f); err != nil {
			t.Errorf("ValidFormat(%q) = %v", f, err)
		}
	}
	if err := ValidFormat("xml"); err == nil {
		t.Error("ValidFormat(xml) should fail")
	}
}
