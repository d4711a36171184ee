package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Number == "" {
		t.Error("Number should have a default value")
	}
	// GitCommit and BuildDate can be empty (optional)
	_ = GitCommit
	_ = BuildDate
}

func TestColored(t *testing.T) {
	orig, origNoColor := Number, color.NoColor
	defer func() { Number, color.NoColor = orig, origNoColor }()
	color.NoColor = true

	tests := []struct {
		in   string
		want string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.2.3-rc.1+build.123", "1.2.3-rc.1+build.123"},
		{"dev", "dev"},
	}
	for _, tt := range tests {
		Number = tt.in
		if got := Colored(); got != tt.want {
			t.Errorf("Colored(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	color.NoColor = false
	Number = "1.2.3"
	if got := Colored(); got == "1.2.3" {
		t.Error("expected escape sequences with colors enabled")
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origNumber, origGitCommit, origBuildDate := Number, GitCommit, BuildDate
	defer func() { Number, GitCommit, BuildDate = origNumber, origGitCommit, origBuildDate }()

	// simulating build-time ldflags
	Number = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	if Number != "1.2.3" || GitCommit != "abc123def456" || BuildDate != "2024-01-15T10:30:00Z" {
		t.Errorf("overrides lost: %q %q %q", Number, GitCommit, BuildDate)
	}
}
