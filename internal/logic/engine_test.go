package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func tickAt(i int) time.Time {
	return t0.Add(time.Duration(i) * DefaultTick)
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(0, 0)
	require.Equal(t, DefaultTick, e.tick)
	require.Equal(t, DefaultOverTempLevel, e.OverTempLevel())

	e = NewEngine(20*time.Millisecond, 60)
	require.Equal(t, 20*time.Millisecond, e.tick)
	require.Equal(t, 60.0, e.OverTempLevel())
}

func TestEngineQuietInputsStayArmed(t *testing.T) {
	e := NewEngine(DefaultTick, DefaultOverTempLevel)
	s := NewState(DefaultCode)

	for i := 0; i < 50; i++ {
		events := e.Update(&s, Inputs{Time: tickAt(i)}, 25)
		require.Empty(t, events)
	}
	require.Equal(t, StateArmedOK, s.Alarm)
	require.False(t, s.Causes.Any())
	require.False(t, OutputsOf(&s).Siren)
	require.False(t, s.AlarmLED)
}

func TestEngineGasTrigger(t *testing.T) {
	e := NewEngine(DefaultTick, DefaultOverTempLevel)
	s := NewState(DefaultCode)

	events := e.Update(&s, Inputs{Gas: true, Time: t0}, 25)
	require.Len(t, events, 1)
	require.Equal(t, EventAlarmOn, events[0].Type)
	require.True(t, events[0].Causes.Gas)
	require.False(t, events[0].Causes.OverTemp)

	require.Equal(t, StateActive, s.Alarm)
	require.True(t, s.Causes.Gas)
	require.False(t, s.Causes.OverTemp)
	require.True(t, OutputsOf(&s).Siren)

	// Gas clears but the alarm and its cause stay latched.
	events = e.Update(&s, Inputs{Time: tickAt(1)}, 25)
	require.Empty(t, events)
	require.Equal(t, StateActive, s.Alarm)
	require.True(t, s.Causes.Gas)
}

func TestEngineOverTempTrigger(t *testing.T) {
	e := NewEngine(DefaultTick, DefaultOverTempLevel)
	s := NewState(DefaultCode)

	e.Update(&s, Inputs{Time: t0}, 50)
	require.False(t, s.OverTemp, "threshold is exclusive")
	require.Equal(t, StateArmedOK, s.Alarm)

	events := e.Update(&s, Inputs{Time: tickAt(1)}, 50.5)
	require.Len(t, events, 1)
	require.True(t, s.OverTemp)
	require.True(t, s.Causes.OverTemp)
	require.False(t, s.Causes.Gas)
	require.Equal(t, StateActive, s.Alarm)
	require.Equal(t, 50.5, s.TemperatureC)

	// The detector follows the temperature, the cause flag does not.
	e.Update(&s, Inputs{Time: tickAt(2)}, 30)
	require.False(t, s.OverTemp)
	require.True(t, s.Causes.OverTemp)
}

func TestEngineTestButtonSetsBothCauses(t *testing.T) {
	e := NewEngine(DefaultTick, DefaultOverTempLevel)
	s := NewState(DefaultCode)

	e.Update(&s, Inputs{Test: true, Time: t0}, 20)
	require.Equal(t, StateActive, s.Alarm)
	require.True(t, s.Causes.Gas)
	require.True(t, s.Causes.OverTemp)
	require.False(t, s.OverTemp, "test button does not touch the detector")
}

func TestBlinkPeriodSelection(t *testing.T) {
	tests := []struct {
		name   string
		causes Causes
		want   time.Duration
		ok     bool
	}{
		{"both", Causes{Gas: true, OverTemp: true}, 100 * time.Millisecond, true},
		{"gas only", Causes{Gas: true}, 1000 * time.Millisecond, true},
		{"over-temp only", Causes{OverTemp: true}, 500 * time.Millisecond, true},
		{"neither", Causes{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BlinkPeriod(tt.causes)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

// countToggles runs n active ticks and returns how many times the LED flipped.
func countToggles(e *Engine, s *State, in Inputs, n int) int {
	toggles := 0
	prev := s.AlarmLED
	for i := 0; i < n; i++ {
		in.Time = tickAt(i)
		e.Update(s, in, 20)
		if s.AlarmLED != prev {
			toggles++
			prev = s.AlarmLED
		}
	}
	return toggles
}

func TestEngineBlinkCadence(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want int // toggles over 2 seconds
	}{
		{"gas", Inputs{Gas: true}, 2},
		{"test", Inputs{Test: true}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(DefaultTick, DefaultOverTempLevel)
			s := NewState(DefaultCode)
			require.Equal(t, tt.want, countToggles(e, &s, tt.in, 200))
		})
	}
}

func TestEngineOverTempCadence(t *testing.T) {
	e := NewEngine(DefaultTick, DefaultOverTempLevel)
	s := NewState(DefaultCode)

	toggles := 0
	prev := false
	for i := 0; i < 200; i++ {
		e.Update(&s, Inputs{Time: tickAt(i)}, 60)
		if s.AlarmLED != prev {
			toggles++
			prev = s.AlarmLED
		}
	}
	require.Equal(t, 4, toggles)
}

func TestEngineFirstToggleAfterPeriod(t *testing.T) {
	e := NewEngine(DefaultTick, DefaultOverTempLevel)
	s := NewState(DefaultCode)

	// 100 ms period at 10 ms per tick: the 10th active tick toggles.
	for i := 0; i < 9; i++ {
		e.Update(&s, Inputs{Test: true, Time: tickAt(i)}, 20)
		require.False(t, s.AlarmLED, "tick %d", i)
	}
	e.Update(&s, Inputs{Test: true, Time: tickAt(9)}, 20)
	require.True(t, s.AlarmLED)
	require.Zero(t, s.Accumulated)
}

func TestEngineActiveWithoutCausesForcesLEDOff(t *testing.T) {
	e := NewEngine(DefaultTick, DefaultOverTempLevel)
	s := NewState(DefaultCode)
	s.Alarm = StateActive
	s.AlarmLED = true
	s.Accumulated = 50 * time.Millisecond

	e.Update(&s, Inputs{Time: t0}, 20)
	require.False(t, s.AlarmLED)
	require.Zero(t, s.Accumulated)
}

func TestEngineDisarmClearsEverything(t *testing.T) {
	e := NewEngine(DefaultTick, DefaultOverTempLevel)
	s := NewState(DefaultCode)

	for i := 0; i < 15; i++ {
		e.Update(&s, Inputs{Test: true, Time: tickAt(i)}, 20)
	}
	require.True(t, s.AlarmLED)
	require.NotZero(t, s.Accumulated)

	// Disarmed externally, as the verifier does.
	s.Alarm = StateArmedOK
	events := e.Update(&s, Inputs{Time: tickAt(15)}, 20)
	require.Len(t, events, 1)
	require.Equal(t, EventAlarmOff, events[0].Type)
	require.Equal(t, StateArmedOK, events[0].Alarm)
	require.False(t, events[0].Causes.Any(), "ALARM_OFF reports the disarmed state")

	require.False(t, s.Causes.Any())
	require.False(t, s.AlarmLED)
	require.Zero(t, s.Accumulated)
	require.False(t, OutputsOf(&s).Siren)

	// ALARM_OFF is emitted once.
	require.Empty(t, e.Update(&s, Inputs{Time: tickAt(16)}, 20))
}

func TestEngineReactivatesWhileTriggerHeld(t *testing.T) {
	e := NewEngine(DefaultTick, DefaultOverTempLevel)
	s := NewState(DefaultCode)

	e.Update(&s, Inputs{Gas: true, Time: t0}, 20)
	s.Alarm = StateArmedOK

	// Gas still present: the alarm never drops, so nothing is emitted.
	events := e.Update(&s, Inputs{Gas: true, Time: tickAt(1)}, 20)
	require.Empty(t, events)
	require.Equal(t, StateActive, s.Alarm)
	require.True(t, OutputsOf(&s).Siren)
}
