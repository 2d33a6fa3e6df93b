package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"Warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Debug("debug line")
	l.Info("info line")
	l.Warn("warn %d", 1)
	l.Error("error %s", "two")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("lines below level were written: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn 1") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error two") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestLogger_FieldsSortedAndInherited(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf, Prefix: "test"})

	child := l.WithComponent("hook").WithField("point", "message-send")
	child.Info("installed")

	out := buf.String()
	if !strings.Contains(out, "test: installed {component=hook, point=message-send}") {
		t.Errorf("unexpected line: %q", out)
	}

	buf.Reset()
	l.Info("parent")
	if strings.Contains(buf.String(), "component=") {
		t.Errorf("child fields leaked into parent: %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	if l.Enabled(LevelError) {
		t.Error("Nop logger should not be enabled")
	}
	l.Error("dropped")
	l.WithField("k", "v").Warn("dropped")
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	l.Info("nothing happens")
}

func TestLogger_SetLevelReachesChildren(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf})
	child := l.WithComponent("feature")

	child.Debug("hidden")
	l.SetLevel(LevelDebug)
	child.Debug("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output: %q", out)
	}
	if child.Level() != LevelDebug {
		t.Errorf("child level = %v", child.Level())
	}
}
