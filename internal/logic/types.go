// Package logic contains the consumer side of a debounced button: it drains
// the one-shot flags into timestamped events and keeps running counts.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the debounced state of the button.
type State string

const (
	StateDown State = "DOWN"
	StateUp   State = "UP"
)

// EventType represents a button event.
type EventType string

const (
	EventPress   EventType = "PRESS"
	EventRelease EventType = "RELEASE"
	EventHold    EventType = "HOLD"
)

// Event represents a button event to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Pin       int
	State     State
	// PressMs is the duration of the press the event belongs to: live for
	// a press still held when the event was drained, final otherwise.
	PressMs uint32
}

// Source is the read side of a debounced button.
type Source interface {
	Pin() int
	Down() bool
	Up() bool
	Hold() bool
	PressTime() uint32
	LastPressDuration() uint32
	IsDown() bool
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Press   int
	Release int
	Hold    int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
