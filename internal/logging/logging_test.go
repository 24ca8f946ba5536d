package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(level)
	l.SetOutput(&buf)
	l.sink.now = func() time.Time {
		return time.Date(2025, 1, 1, 12, 30, 45, 0, time.UTC)
	}
	return l, &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	l, buf := newTestLogger(LevelWarn)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %d", 3)
	l.Error("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("below-level messages written: %q", out)
	}
	if !strings.Contains(out, "12:30:45.000 [WARN] shown 3") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] shown 4") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestLoggerNamed(t *testing.T) {
	l, buf := newTestLogger(LevelDebug)

	cam := l.Named("camera")
	cam.Info("locked on %s", "Earth")
	cam.Named("timer").Debug("fired")

	out := buf.String()
	if !strings.Contains(out, "[INFO] camera: locked on Earth") {
		t.Errorf("missing named line: %q", out)
	}
	if !strings.Contains(out, "[DEBUG] camera.timer: fired") {
		t.Errorf("missing nested name: %q", out)
	}

	// Children share the parent's level.
	l.SetLevel(LevelError)
	buf.Reset()
	cam.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("child ignored parent level: %q", buf.String())
	}
	if cam.Enabled(LevelInfo) {
		t.Error("Enabled(Info) should be false at error level")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	if l.Enabled(LevelError) {
		t.Error("Discard logger should not enable any level")
	}
}
