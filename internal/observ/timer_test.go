package observ

import (
	"strings"
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	stopLoad := tm.Start("load")
	stopLoad("3 files")
	stopLoad("again")
	stopParse := tm.Start("parse")
	stopParse("")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(r.Phases))
	}
	if r.Phases[0] != (PhaseReport{Name: "load", DurationMS: 1, Note: "3 files"}) {
		t.Errorf("load = %+v", r.Phases[0])
	}
	if r.TotalMS != 2 {
		t.Errorf("total = %v, want 2", r.TotalMS)
	}

	var b strings.Builder
	if err := r.Write(&b); err != nil {
		t.Fatal(err)
	}
	want := "timings:\n" +
		"  load         1.00 ms  // 3 files\n" +
		"  parse        1.00 ms\n" +
		"  total        2.00 ms\n"
	if b.String() != want {
		t.Errorf("Write =\n%q\nwant\n%q", b.String(), want)
	}
}

func TestOpenPhaseCountsZero(t *testing.T) {
	tm := NewTimer()
	tm.Start("commit")
	if r := tm.Report(); r.Phases[0].DurationMS != 0 {
		t.Errorf("open phase = %+v", r.Phases[0])
	}
}

func TestEmptyReport(t *testing.T) {
	r := NewTimer().Report()
	if r.TotalMS != 0 || r.Phases != nil {
		t.Errorf("empty report = %+v", r)
	}
	var b strings.Builder
	_ = r.Write(&b)
	if b.Len() != 0 {
		t.Errorf("empty report wrote %q", b.String())
	}
}
