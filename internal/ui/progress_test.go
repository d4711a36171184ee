package ui

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"tome/internal/driver"
)

func TestProgressModelTracksEvents(t *testing.T) {
	ch := make(chan driver.Event)
	m := NewProgressModel("parsing", []string{"lib/a.rb", "./lib/b.rb", "lib/c.rb"}, ch).(*progressModel)

	for _, ev := range []driver.Event{
		{File: "lib/a.rb", Stage: driver.StageParse, Status: driver.StatusWorking},
		{File: "lib/b.rb", Stage: driver.StageParse, Status: driver.StatusSkipped},
		{File: "lib/c.rb", Stage: driver.StageCommit, Status: driver.StatusError},
		{File: "unknown.rb", Stage: driver.StageCommit, Status: driver.StatusDone},
	} {
		m.Update(eventMsg(ev))
	}

	want := []string{"parsing", "skipped", "error"}
	for i, item := range m.items {
		if item.status != want[i] {
			t.Errorf("item %s status = %q, want %q", item.path, item.status, want[i])
		}
	}
	if got := m.percent(); got < 0.79 || got > 0.81 {
		t.Errorf("percent = %v, want 0.8", got)
	}

	m.Update(eventMsg{Stage: driver.StageCommit, Status: driver.StatusDone})
	m.Update(doneMsg{})
	view := m.View()
	if !strings.Contains(view, "done: parsing (done)") {
		t.Errorf("header missing from view:\n%s", view)
	}
	if !strings.Contains(view, "lib/b.rb") {
		t.Errorf("normalized path missing from view:\n%s", view)
	}
}

func TestProgressModelCapsRows(t *testing.T) {
	files := make([]string, 20)
	for i := range files {
		files[i] = fmt.Sprintf("lib/f%02d.rb", i)
	}
	ch := make(chan driver.Event)
	m := NewProgressModel("parsing", files, ch).(*progressModel)
	m.Update(eventMsg{File: "lib/f19.rb", Stage: driver.StageParse, Status: driver.StatusWorking})
	for i := range 5 {
		m.Update(eventMsg{File: files[i], Stage: driver.StageCommit, Status: driver.StatusDone})
	}

	rows := m.visibleRows()
	if len(rows) != maxRows {
		t.Fatalf("rows = %d, want %d", len(rows), maxRows)
	}
	if !slices.Contains(rows, 19) {
		t.Error("active file hidden")
	}
	view := m.View()
	if !strings.Contains(view, "8 more") || !strings.Contains(view, "5/20 files") {
		t.Errorf("view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"lib/very/long/path.rb", 10, "lib/ver..."},
		{"abcdef", 3, "abc"},
		{"any", 0, "any"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
