// Package trigger turns user input into recording start/stop events.
package trigger

// EventType indicates whether recording should start or stop.
type EventType int

const (
	// EventStart signals that recording should begin.
	EventStart EventType = iota
	// EventStop signals that recording should end.
	EventStop
)

func (t EventType) String() string {
	if t == EventStart {
		return "start"
	}
	return "stop"
}

// Event is emitted on the channel returned by Events.
type Event struct {
	Type EventType
}

// Trigger emits start/stop events until stopped.
type Trigger interface {
	// Events returns the channel that receives events. It is closed when
	// the trigger ends.
	Events() <-chan Event
	// Start runs the trigger and blocks until it ends. Run it in a goroutine.
	Start()
	// Stop ends the trigger. It is safe to call multiple times.
	Stop()
}
