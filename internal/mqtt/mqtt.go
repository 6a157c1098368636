// Package mqtt publishes alarm and system events, with a fake for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/gas-alarm/internal/logic"
)

// Topic is the MQTT topic for alarm events.
const Topic = "home/gas-alarm/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/gas-alarm/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an alarm event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Alarm AlarmPayload `json:"alarm"`
}

// AlarmPayload contains the alarm event details.
type AlarmPayload struct {
	Timestamp string        `json:"timestamp"`
	Event     string        `json:"event"`
	State     string        `json:"state"`
	Causes    CausesPayload `json:"causes"`
	Source    string        `json:"source,omitempty"`
	Failures  int           `json:"failures"`
	Locked    bool          `json:"locked"`
}

// CausesPayload lists the triggers of the current activation.
type CausesPayload struct {
	Gas      bool `json:"gas"`
	OverTemp bool `json:"over_temp"`
}

// FormatPayload creates the JSON payload for an alarm event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Alarm: AlarmPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			State:     string(event.Alarm),
			Causes: CausesPayload{
				Gas:      event.Causes.Gas,
				OverTemp: event.Causes.OverTemp,
			},
			Source:   string(event.Source),
			Failures: event.Failures,
			Locked:   event.Locked,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
