package watch

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of events per path and hands them to onFlush
// once the window passes without new events, or when maxBatch distinct
// paths are pending.
type Debouncer struct {
	window   time.Duration
	maxBatch int
	events   map[string]Event
	order    []string
	mu       sync.Mutex
	timer    *time.Timer
	onFlush  func([]Event)
	stopped  bool
}

func NewDebouncer(window time.Duration, maxBatch int, onFlush func([]Event)) *Debouncer {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	return &Debouncer{
		window:   window,
		maxBatch: maxBatch,
		events:   make(map[string]Event),
		onFlush:  onFlush,
	}
}

// Add records evt, replacing an earlier pending event for the same path.
func (d *Debouncer) Add(evt Event) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if _, pending := d.events[evt.Path]; !pending {
		d.order = append(d.order, evt.Path)
	}
	d.events[evt.Path] = evt

	if len(d.events) >= d.maxBatch {
		d.flushLocked()
		return
	}

	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		d.flushLocked()
	})
	d.mu.Unlock()
}

// flushLocked releases d.mu before calling onFlush.
func (d *Debouncer) flushLocked() {
	batch := make([]Event, 0, len(d.order))
	for _, p := range d.order {
		batch = append(batch, d.events[p])
	}
	d.events = make(map[string]Event)
	d.order = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if len(batch) > 0 && d.onFlush != nil {
		d.onFlush(batch)
	}
}

// Stop flushes what is pending and ignores later events.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if len(d.events) > 0 {
		d.flushLocked()
		return
	}
	d.mu.Unlock()
}
