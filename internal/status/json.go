package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Alarm         AlarmJSON    `json:"alarm"`
	Sensors       SensorsJSON  `json:"sensors"`
	Code          CodeJSON     `json:"code"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// AlarmJSON reports the alarm state machine.
type AlarmJSON struct {
	State    string     `json:"state"`
	Causes   CausesJSON `json:"causes"`
	AlarmLED bool       `json:"led"`
}

// CausesJSON lists the triggers of the current activation.
type CausesJSON struct {
	Gas      bool `json:"gas"`
	OverTemp bool `json:"over_temp"`
}

// SensorsJSON reports the latest sensor readings.
type SensorsJSON struct {
	Gas           bool    `json:"gas"`
	OverTemp      bool    `json:"over_temp"`
	TemperatureC  float64 `json:"temperature_c"`
	Potentiometer float64 `json:"potentiometer"`
}

// CodeJSON reports the disarm code bookkeeping.
type CodeJSON struct {
	Failures      int    `json:"failures"`
	Locked        bool   `json:"locked"`
	IncorrectCode bool   `json:"incorrect_code"`
	ConsoleMode   string `json:"console_mode"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	AlarmOn      int `json:"alarm_on"`
	AlarmOff     int `json:"alarm_off"`
	CodeAccepted int `json:"code_accepted"`
	CodeRejected int `json:"code_rejected"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64   `json:"poll_ms"`
	HeartbeatMs      int64   `json:"heartbeat_ms"`
	EntryTimeoutMs   int64   `json:"entry_timeout_ms"`
	OverTempLevel    float64 `json:"over_temp_level"`
	MaxFailures      int     `json:"max_failures"`
	LockBlocksSerial bool    `json:"lock_blocks_serial"`
	SerialDevice     string  `json:"serial_device,omitempty"`
	Broker           string  `json:"broker"`
	HTTPPort         string  `json:"http_port"`
	WSBroker         string  `json:"ws_broker,omitempty"`
}

// round2 keeps readings at the precision the console prints.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.Alarm)
	if state == "" {
		state = "UNKNOWN"
	}

	return StatusInner{
		Alarm: AlarmJSON{
			State:    state,
			Causes:   CausesJSON{Gas: snap.Causes.Gas, OverTemp: snap.Causes.OverTemp},
			AlarmLED: snap.AlarmLED,
		},
		Sensors: SensorsJSON{
			Gas:           snap.Gas,
			OverTemp:      snap.OverTemp,
			TemperatureC:  round2(snap.TemperatureC),
			Potentiometer: round2(snap.Potentiometer),
		},
		Code: CodeJSON{
			Failures:      snap.Failures,
			Locked:        snap.Locked,
			IncorrectCode: snap.IncorrectCode,
			ConsoleMode:   snap.ConsoleMode,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			AlarmOn:      snap.Counts.AlarmOn,
			AlarmOff:     snap.Counts.AlarmOff,
			CodeAccepted: snap.Counts.Accepted,
			CodeRejected: snap.Counts.Rejected,
		},
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			EntryTimeoutMs:   snap.Config.EntryTimeoutMs,
			OverTempLevel:    snap.Config.OverTempLevel,
			MaxFailures:      snap.Config.MaxFailures,
			LockBlocksSerial: snap.Config.LockBlocksSerial,
			SerialDevice:     snap.Config.SerialDevice,
			Broker:           snap.Config.Broker,
			HTTPPort:         snap.Config.HTTPPort,
			WSBroker:         snap.Config.WSBroker,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
