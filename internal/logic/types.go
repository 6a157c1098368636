// Package logic contains the pure alarm logic: the temperature filter, the
// alarm state machine and the disarm code verifier.
// This package has NO external dependencies (no GPIO, MQTT, serial or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// AlarmState represents whether the alarm is firing.
type AlarmState string

const (
	StateArmedOK AlarmState = "ARMED_OK"
	StateActive  AlarmState = "ACTIVE"
)

// EventType represents a notable transition to be published.
type EventType string

const (
	EventAlarmOn      EventType = "ALARM_ON"
	EventAlarmOff     EventType = "ALARM_OFF"
	EventCodeAccepted EventType = "CODE_ACCEPTED"
	EventCodeRejected EventType = "CODE_REJECTED"
	EventLocked       EventType = "SYSTEM_LOCKED"
	EventCodeChanged  EventType = "CODE_CHANGED"
)

// Source identifies which input path produced a code event.
type Source string

const (
	SourceButtons Source = "BUTTONS"
	SourceSerial  Source = "SERIAL"
)

// KeyCount is the number of code keys (A, B, C, D).
const KeyCount = 4

// CodeSequence holds one "pressed" flag per key, in key order.
type CodeSequence [KeyCount]bool

// DefaultCode is the factory disarm code: A and B pressed, C and D released.
var DefaultCode = CodeSequence{true, true, false, false}

// Causes records which triggers contributed to the current activation.
type Causes struct {
	Gas      bool
	OverTemp bool
}

// Any reports whether at least one cause is set.
func (c Causes) Any() bool {
	return c.Gas || c.OverTemp
}

// Inputs is a single sample of every input, already in logical form.
type Inputs struct {
	Gas           bool // true = gas detected
	Test          bool // test button held
	Enter         bool // enter button held
	Keys          CodeSequence
	Temperature   float64 // normalized LM35 reading, 0.0-1.0
	Potentiometer float64 // normalized potentiometer reading, 0.0-1.0
	Time          time.Time
}

// State is the whole mutable application state. It is owned by the run loop
// and passed by pointer to each component on every tick.
type State struct {
	Alarm  AlarmState
	Causes Causes

	// OverTemp is the instantaneous detector output (not sticky).
	OverTemp     bool
	TemperatureC float64

	// Blink bookkeeping for the alarm LED.
	Accumulated time.Duration
	AlarmLED    bool

	// wasActive is the alarm state seen at the end of the previous engine update.
	wasActive bool

	Code          CodeSequence
	IncorrectCode bool
	Failures      int
	Locked        bool
}

// NewState returns the power-on state with the given stored code.
func NewState(code CodeSequence) State {
	return State{
		Alarm: StateArmedOK,
		Code:  code,
	}
}

// Active reports whether the alarm is firing.
func (s *State) Active() bool {
	return s.Alarm == StateActive
}

// Outputs is the actuator image derived from State.
type Outputs struct {
	Siren            bool // true = siren line driven low
	AlarmLED         bool
	IncorrectCodeLED bool
	SystemBlockedLED bool
}

// OutputsOf derives the actuator image for the current state.
func OutputsOf(s *State) Outputs {
	return Outputs{
		Siren:            s.Active(),
		AlarmLED:         s.AlarmLED,
		IncorrectCodeLED: s.IncorrectCode,
		SystemBlockedLED: s.Locked,
	}
}

// Event represents a transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Alarm     AlarmState
	Causes    Causes
	Source    Source // only set for code events
	Failures  int
	Locked    bool
}

func newEvent(s *State, t EventType, src Source, now time.Time) Event {
	return Event{
		Timestamp: now,
		Type:      t,
		Alarm:     s.Alarm,
		Causes:    s.Causes,
		Source:    src,
		Failures:  s.Failures,
		Locked:    s.Locked,
	}
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	AlarmOn  int
	AlarmOff int
	Accepted int
	Rejected int
}

// Add counts the given events.
func (c *EventCounts) Add(events []Event) {
	for _, e := range events {
		switch e.Type {
		case EventAlarmOn:
			c.AlarmOn++
		case EventAlarmOff:
			c.AlarmOff++
		case EventCodeAccepted:
			c.Accepted++
		case EventCodeRejected:
			c.Rejected++
		}
	}
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
