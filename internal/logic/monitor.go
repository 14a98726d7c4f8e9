package logic

import "time"

// Monitor drains button flags into events.
// Not safe for concurrent use; call it from a single consumer loop.
type Monitor struct {
	src           Source
	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
	last          *Event
}

// NewMonitor creates a monitor for src.
// The startTime is used for calculating uptime in heartbeat events.
func NewMonitor(src Source, startTime time.Time) *Monitor {
	return &Monitor{
		src:           src,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Poll consumes every pending flag and returns the resulting events in the
// order they happened. Within one press that is PRESS, HOLD, RELEASE. When a
// release and the next press were both accepted since the last poll, the
// release of the old press comes first and carries its final duration.
// A hold pending in that case is attributed to the released press.
func (m *Monitor) Poll(now time.Time) []Event {
	down := m.src.Down()
	hold := m.src.Hold()
	up := m.src.Up()
	if !down && !hold && !up {
		return nil
	}

	pressed := m.src.IsDown()
	live := m.src.PressTime()
	final := m.src.LastPressDuration()

	var events []Event
	emit := func(typ EventType, state State, pressMs uint32) {
		events = append(events, Event{
			Timestamp: now,
			Type:      typ,
			Pin:       m.src.Pin(),
			State:     state,
			PressMs:   pressMs,
		})
		switch typ {
		case EventPress:
			m.eventCounts.Press++
		case EventHold:
			m.eventCounts.Hold++
		case EventRelease:
			m.eventCounts.Release++
		}
	}

	if up && pressed {
		// Released and pressed again: finish the old press first.
		if hold {
			emit(EventHold, StateDown, final)
		}
		emit(EventRelease, StateUp, final)
		if down {
			emit(EventPress, StateDown, live)
		}
	} else {
		ms := live
		if up {
			ms = final
		}
		if down {
			emit(EventPress, StateDown, ms)
		}
		if hold {
			emit(EventHold, StateDown, ms)
		}
		if up {
			emit(EventRelease, StateUp, final)
		}
	}

	last := events[len(events)-1]
	m.last = &last
	return events
}

// CurrentState returns the debounced state and the press time in ms.
func (m *Monitor) CurrentState() (State, uint32) {
	return stateOf(m.src.IsDown()), m.src.PressTime()
}

// EventCountsSnapshot returns a copy of the event counts.
func (m *Monitor) EventCountsSnapshot() EventCounts {
	return m.eventCounts
}

// LastEvent returns the most recent event, or nil if none was seen yet.
func (m *Monitor) LastEvent() *Event {
	if m.last == nil {
		return nil
	}
	e := *m.last
	return &e
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed
// or if interval is <= 0 (disabled).
func (m *Monitor) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(m.lastHeartbeat) < interval {
		return nil
	}

	m.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(m.startTime),
		Counts:    m.eventCounts,
	}
}

func stateOf(down bool) State {
	if down {
		return StateDown
	}
	return StateUp
}
