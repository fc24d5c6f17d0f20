package paramsync

import (
	"fmt"
	"time"
)

// EventType identifies an engine status event
type EventType int

const (
	EventMounted EventType = iota
	EventMountFailed
	EventWriteStarted
	EventWriteSucceeded
	EventWriteFailed
	EventRestored
	EventReloaded
)

// String returns a short name for the event type
func (t EventType) String() string {
	switch t {
	case EventMounted:
		return "mounted"
	case EventMountFailed:
		return "mount_failed"
	case EventWriteStarted:
		return "write_started"
	case EventWriteSucceeded:
		return "write_succeeded"
	case EventWriteFailed:
		return "write_failed"
	case EventRestored:
		return "restored"
	case EventReloaded:
		return "reloaded"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event reports engine progress to a UI
type Event struct {
	Type EventType

	// Seq is the form sequence number the event refers to
	Seq uint64

	// WriteID correlates write events with log lines
	WriteID string

	// Pending is the number of writes in flight after this event
	Pending int

	Err  error
	Time time.Time
}
