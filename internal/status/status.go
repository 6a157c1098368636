// Package status provides a thread-safe status tracker for the gas-alarm daemon.
// The run loop writes it every tick; HTTP handlers and system events read it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/gas-alarm/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display. It never holds the code.
type Config struct {
	PollMs           int64
	HeartbeatMs      int64
	EntryTimeoutMs   int64
	OverTempLevel    float64
	MaxFailures      int
	LockBlocksSerial bool
	SerialDevice     string
	Broker           string
	HTTPPort         string
	WSBroker         string // Websocket broker URL for browser MQTT (empty = disabled)
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Alarm    logic.AlarmState
	Causes   logic.Causes
	AlarmLED bool

	Gas           bool
	OverTemp      bool
	TemperatureC  float64
	Potentiometer float64

	Failures      int
	Locked        bool
	IncorrectCode bool
	ConsoleMode   string

	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Alarm:       logic.StateArmedOK,
			ConsoleMode: "command",
			StartTime:   startTime,
			Config:      cfg,
		},
	}
}

// Update copies the alarm state, the latest inputs and the event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(s *logic.State, in logic.Inputs, consoleMode string, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Alarm = s.Alarm
	t.snap.Causes = s.Causes
	t.snap.AlarmLED = s.AlarmLED
	t.snap.Gas = in.Gas
	t.snap.OverTemp = s.OverTemp
	t.snap.TemperatureC = s.TemperatureC
	t.snap.Potentiometer = in.Potentiometer
	t.snap.Failures = s.Failures
	t.snap.Locked = s.Locked
	t.snap.IncorrectCode = s.IncorrectCode
	t.snap.ConsoleMode = consoleMode
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
