// Package observ measures the load, parse and commit phases of a run.
package observ

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Phase is one measured step. Dur stays zero until the step is stopped.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases in start order. Safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
	now    func() time.Time
}

func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 4), now: time.Now}
}

// Start opens a phase; the returned func closes it with a note.
// Closing twice keeps the first duration.
func (t *Timer) Start(name string) (stop func(note string)) {
	t.mu.Lock()
	idx := len(t.phases)
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	t.mu.Unlock()

	var once sync.Once
	return func(note string) {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			p := &t.phases[idx]
			p.Dur = t.now().Sub(p.Start)
			p.Note = note
		})
	}
}

// PhaseReport is the serialisable form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is a snapshot of all phases; TotalMS is the sum of their durations.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	r := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		r.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
	}
	r.TotalMS = millis(total)
	return r
}

// Write renders the report as an aligned `timings:` block. An empty report
// writes nothing.
func (r Report) Write(w io.Writer) error {
	if len(r.Phases) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "timings:"); err != nil {
		return err
	}
	for _, p := range r.Phases {
		line := fmt.Sprintf("  %-8s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			line += "  // " + p.Note
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %-8s %8.2f ms\n", "total", r.TotalMS)
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
