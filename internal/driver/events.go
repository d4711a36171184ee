package driver

import "time"

// Stage describes a pipeline phase.
type Stage string

const (
	StageLoad   Stage = "load"
	StageParse  Stage = "parse"
	StageCommit Stage = "commit"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being lexed, parsed and visited.
	StatusWorking Status = "working"
	// StatusSkipped marks a file whose checksum matched the cache.
	StatusSkipped Status = "skipped"
	StatusDone    Status = "done"
	// StatusError marks a file committed with syntax errors.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole batch when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from worker
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
