package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestHelpersNoopBeforeInit(t *testing.T) {
	Logger = nil
	// Must not panic.
	Info("hello", "k", "v")
	Debug("hello")
	Warn("hello")
	Error("hello")
	WithPrefix("x").Info("discarded")
}

func TestInitLevelFiltering(t *testing.T) {
	defer func() { Logger = nil }()

	var buf bytes.Buffer
	Init(&buf, "warn", false)

	Info("should not appear")
	Warn("visible warning", "channel", "feed")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("info line logged at warn level: %q", out)
	}
	if !strings.Contains(out, "visible warning") || !strings.Contains(out, "channel=feed") {
		t.Errorf("warning missing from output: %q", out)
	}
}

func TestInitUnknownLevelDefaultsToInfo(t *testing.T) {
	defer func() { Logger = nil }()

	var buf bytes.Buffer
	Init(&buf, "chatty", false)

	Debug("hidden")
	Info("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug logged with unknown level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("info missing with unknown level")
	}
}

func TestInitJSON(t *testing.T) {
	defer func() { Logger = nil }()

	var buf bytes.Buffer
	Init(&buf, "info", true)
	Info("structured", "provider", "claude")

	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"provider":"claude"`) {
		t.Errorf("expected JSON line, got %q", out)
	}
}
