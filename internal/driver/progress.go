package driver

import "time"

// Stage identifies the step a file is in.
type Stage string

const (
	// StageLoad reads the file and checks the cache.
	StageLoad Stage = "load"
	// StageFormat runs the template pipeline.
	StageFormat Stage = "format"
	// StageWrite writes the result back to disk.
	StageWrite Stage = "write"
)

// Status reports the state of a file within its stage.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file was processed successfully.
	StatusDone Status = "done"
	// StatusError indicates the file produced an error diagnostic.
	StatusError Status = "error"
)

// Event describes one progress transition of a file.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use.
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

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
