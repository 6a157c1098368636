package logic

import "time"

// Default engine parameters.
const (
	DefaultTick          = 10 * time.Millisecond
	DefaultOverTempLevel = 50.0 // degrees Celsius

	BlinkGas         = 1000 * time.Millisecond
	BlinkOverTemp    = 500 * time.Millisecond
	BlinkGasOverTemp = 100 * time.Millisecond
)

// Engine is the alarm state machine. It raises the alarm from the gas,
// over-temperature and test inputs, and computes the LED cadence while active.
type Engine struct {
	tick          time.Duration
	overTempLevel float64
}

// NewEngine creates an engine advancing its blink timer by tick per update.
// Non-positive arguments fall back to the defaults.
func NewEngine(tick time.Duration, overTempLevel float64) *Engine {
	if tick <= 0 {
		tick = DefaultTick
	}
	if overTempLevel <= 0 {
		overTempLevel = DefaultOverTempLevel
	}
	return &Engine{
		tick:          tick,
		overTempLevel: overTempLevel,
	}
}

// OverTempLevel returns the over-temperature threshold in degrees Celsius.
func (e *Engine) OverTempLevel() float64 {
	return e.overTempLevel
}

// Update evaluates the triggers against the filtered temperature and the raw
// inputs, then drives the blink timer. It returns ALARM_ON when the alarm
// starts and ALARM_OFF on the first update after it has been disarmed.
func (e *Engine) Update(s *State, in Inputs, tempC float64) []Event {
	s.TemperatureC = tempC
	s.OverTemp = tempC > e.overTempLevel

	// All three triggers are checked every tick; none short-circuits another.
	if in.Gas {
		s.Causes.Gas = true
		s.Alarm = StateActive
	}
	if s.OverTemp {
		s.Causes.OverTemp = true
		s.Alarm = StateActive
	}
	if in.Test {
		s.Causes.Gas = true
		s.Causes.OverTemp = true
		s.Alarm = StateActive
	}

	var events []Event
	if s.Active() {
		if !s.wasActive {
			events = append(events, newEvent(s, EventAlarmOn, "", in.Time))
		}
		s.Accumulated += e.tick
		period, ok := BlinkPeriod(s.Causes)
		switch {
		case !ok:
			s.AlarmLED = false
			s.Accumulated = 0
		case s.Accumulated >= period:
			s.Accumulated = 0
			s.AlarmLED = !s.AlarmLED
		}
	} else {
		Disarm(s)
		if s.wasActive {
			events = append(events, newEvent(s, EventAlarmOff, "", in.Time))
		}
	}
	s.wasActive = s.Active()

	return events
}

// BlinkPeriod selects the LED toggle period for the given causes.
// Both causes win over gas alone, which wins over over-temperature alone.
// ok is false when no cause is set.
func BlinkPeriod(c Causes) (period time.Duration, ok bool) {
	switch {
	case c.Gas && c.OverTemp:
		return BlinkGasOverTemp, true
	case c.Gas:
		return BlinkGas, true
	case c.OverTemp:
		return BlinkOverTemp, true
	default:
		return 0, false
	}
}

// Disarm puts the state back to Armed-OK: causes cleared, LED off, blink
// timer reset. The siren follows from Alarm via OutputsOf and is released.
func Disarm(s *State) {
	s.Alarm = StateArmedOK
	s.Causes = Causes{}
	s.AlarmLED = false
	s.Accumulated = 0
}
