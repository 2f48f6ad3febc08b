// Package alert converts the per-window probability stream into debounced,
// edge-triggered alert events. Requiring several consecutive positive
// windows suppresses transient spikes (coughs, movement) while still
// reacting within min_snore_count windows of sustained snoring.
package alert

import (
	"time"

	"github.com/google/uuid"
)

// State of the machine.
type State int

const (
	// Idle: no recent positive windows.
	Idle State = iota
	// Accumulating: positive windows seen, below the alert count.
	Accumulating
	// Alerting: enough consecutive positive windows, alert is active.
	Alerting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case Alerting:
		return "alerting"
	default:
		return "unknown"
	}
}

// EventType discriminates the two edge events.
type EventType int

const (
	AlertRaised EventType = iota
	AlertCleared
)

func (e EventType) String() string {
	switch e {
	case AlertRaised:
		return "alert_raised"
	case AlertCleared:
		return "alert_cleared"
	default:
		return "unknown"
	}
}

// Event is emitted on state transitions only: exactly one AlertRaised when
// the hit count crosses the minimum, exactly one AlertCleared when a
// negative window ends an active alert.
type Event struct {
	Type        EventType
	ID          uuid.UUID
	WindowSeq   uint64
	Probability float32
	Hits        int
	Time        time.Time
}

// StateMachine holds the only piece of cross-window memory in the
// pipeline: the consecutive-hit counter and the alerting flag. It must see
// every window exactly once, in order. Not safe for concurrent use.
type StateMachine struct {
	threshold     float32
	minSnoreCount int

	hits     int
	alerting bool

	now func() time.Time
}

// New creates a state machine with the given probability threshold and
// consecutive-hit requirement.
func New(threshold float64, minSnoreCount int) *StateMachine {
	if minSnoreCount < 1 {
		minSnoreCount = 1
	}
	return &StateMachine{
		threshold:     float32(threshold),
		minSnoreCount: minSnoreCount,
		now:           time.Now,
	}
}

// Transition feeds one window probability through the machine and returns
// the emitted event, if any. The event sequence is a pure function of the
// probability sequence and configuration; the uuid and timestamp are
// metadata only.
func (sm *StateMachine) Transition(windowSeq uint64, probability float32) (Event, bool) {
	if probability >= sm.threshold {
		sm.hits++
		if sm.hits >= sm.minSnoreCount && !sm.alerting {
			sm.alerting = true
			return sm.event(AlertRaised, windowSeq, probability), true
		}
		return Event{}, false
	}

	// Any sub-threshold window resets the counter immediately.
	sm.hits = 0
	if sm.alerting {
		sm.alerting = false
		return sm.event(AlertCleared, windowSeq, probability), true
	}
	return Event{}, false
}

func (sm *StateMachine) event(t EventType, windowSeq uint64, probability float32) Event {
	return Event{
		Type:        t,
		ID:          uuid.New(),
		WindowSeq:   windowSeq,
		Probability: probability,
		Hits:        sm.hits,
		Time:        sm.now(),
	}
}

// State reports the current state.
func (sm *StateMachine) State() State {
	switch {
	case sm.alerting:
		return Alerting
	case sm.hits > 0:
		return Accumulating
	default:
		return Idle
	}
}

// Hits reports the current consecutive-hit count.
func (sm *StateMachine) Hits() int {
	return sm.hits
}

// IsAlerting reports whether an alert is currently active.
func (sm *StateMachine) IsAlerting() bool {
	return sm.alerting
}

// Reset returns the machine to Idle without emitting events. Used on
// explicit restart only.
func (sm *StateMachine) Reset() {
	sm.hits = 0
	sm.alerting = false
}
