package mtl

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name           string
		level          LogLevel
		logFunc        func(l *Logger)
		expectedOutput string
		notExpected    bool
	}{
		{"debug at debug", LogDebug, func(l *Logger) { l.Debug("parsed %d", 3) }, "[DEBUG] parsed 3", false},
		{"debug at info", LogInfo, func(l *Logger) { l.Debug("hidden") }, "hidden", true},
		{"info at info", LogInfo, func(l *Logger) { l.Info("hello") }, "[INFO] hello", false},
		{"info at warn", LogWarn, func(l *Logger) { l.Info("hidden") }, "hidden", true},
		{"warn at warn", LogWarn, func(l *Logger) { l.Warn("careful") }, "[WARN] careful", false},
		{"error at error", LogError, func(l *Logger) { l.Error("broken") }, "[ERROR] broken", false},
		{"error at off", LogOff, func(l *Logger) { l.Error("hidden") }, "hidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(NewLogger(&buf, tt.level))
			output := buf.String()
			if tt.notExpected {
				if strings.Contains(output, tt.expectedOutput) {
					t.Errorf("output %q should not contain %q", output, tt.expectedOutput)
				}
				return
			}
			if !strings.Contains(output, tt.expectedOutput) {
				t.Errorf("output %q does not contain %q", output, tt.expectedOutput)
			}
		})
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&buf, LogInfo)
	child := parent.WithFields(Fields{"zeta": 1, "alpha": "a"})

	child.Info("render")
	if got := buf.String(); !strings.Contains(got, "render alpha=a zeta=1") {
		t.Errorf("fields not sorted in %q", got)
	}

	buf.Reset()
	parent.Info("plain")
	if got := buf.String(); strings.Contains(got, "alpha=") {
		t.Errorf("WithFields modified parent: %q", got)
	}

	child.SetLevel(LogError)
	if parent.Level() != LogError {
		t.Error("derived logger should share its level with the parent")
	}
}

func TestLogger_DebugTemplate(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo)

	logger.DebugTemplate("{foo}", []string{"x"})
	if buf.Len() != 0 {
		t.Errorf("DebugTemplate wrote %q outside debug mode", buf.String())
	}

	logger.SetLevel(LogDebug)
	logger.DebugTemplate("{foo}", []string{"x"})
	if got := buf.String(); !strings.Contains(got, `Template: "{foo}"`) || !strings.Contains(got, `Results: ["x"]`) {
		t.Errorf("DebugTemplate output = %q", got)
	}

	buf.Reset()
	model, err := Parse("a{foo:bar}")
	if err != nil {
		t.Fatal(err)
	}
	logger.DebugPieces(model)
	if got := buf.String(); !strings.Contains(got, `field="foo" subfield="bar"`) {
		t.Errorf("DebugPieces output = %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LogDebug},
		{"INFO", LogInfo},
		{"warning", LogWarn},
		{" error ", LogError},
		{"none", LogOff},
		{"bogus", LogInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Error("dropped")
	if logger.IsDebugMode() {
		t.Error("NopLogger should not be in debug mode")
	}
}
