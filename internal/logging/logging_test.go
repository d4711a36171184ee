package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"tome/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logging.Level
	}{
		{"debug", logging.LevelDebug},
		{"INFO", logging.LevelInfo},
		{"warning", logging.LevelWarn},
		{"quiet", logging.LevelError},
		{"fatal", logging.LevelFatal},
	}
	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := logging.ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevelFiltersAndFatalSurvivesQuiet(t *testing.T) {
	logging.Isolate(t)
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	logging.SetLevel(logging.LevelError)

	log := logging.ForComponent("driver")
	log.Info("hidden")
	log.Warn("hidden too")
	logging.Error("shown")
	logging.Fatal("always")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("filtered messages leaked: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "level=FATAL") {
		t.Errorf("output = %s", out)
	}
	if logging.CurrentLevel() != logging.LevelError {
		t.Errorf("level = %v", logging.CurrentLevel())
	}
}

func TestComponentLoggerFollowsOutput(t *testing.T) {
	logging.Isolate(t)
	log := logging.ForComponent("watch")

	var buf bytes.Buffer
	logging.SetOutput(&buf)
	logging.SetLevel(logging.LevelDebug)
	log.Debug("tick", "n", 1)

	if out := buf.String(); !strings.Contains(out, "component=watch") || !strings.Contains(out, "n=1") {
		t.Errorf("output = %s", out)
	}
}

func TestSaveRestores(t *testing.T) {
	logging.Isolate(t)
	logging.SetLevel(logging.LevelWarn)
	restore := logging.Save()
	logging.SetLevel(logging.LevelDebug)
	if err := logging.SetFormat("json"); err != nil {
		t.Fatal(err)
	}
	restore()
	if logging.CurrentLevel() != logging.LevelWarn {
		t.Errorf("level after restore = %v", logging.CurrentLevel())
	}
	if logging.Enabled(logging.LevelInfo) {
		t.Error("info enabled after restoring warn")
	}
	if err := logging.SetFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
