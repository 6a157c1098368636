// Package config loads the alarm controller settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/gas-alarm/internal/adc"
	"github.com/sweeney/gas-alarm/internal/gpio"
	"github.com/sweeney/gas-alarm/internal/logger"
	"github.com/sweeney/gas-alarm/internal/logic"
	"github.com/sweeney/gas-alarm/internal/serialport"
)

// Config represents the application configuration.
type Config struct {
	Alarm   AlarmConfig   `yaml:"alarm"`
	Serial  SerialConfig  `yaml:"serial"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	HTTP    HTTPConfig    `yaml:"http"`
	GPIO    GPIOConfig    `yaml:"gpio"`
	ADC     ADCConfig     `yaml:"adc"`
	Logging LoggingConfig `yaml:"logging"`
}

// AlarmConfig contains the control loop and code settings.
type AlarmConfig struct {
	Poll             time.Duration `yaml:"poll"`
	Heartbeat        time.Duration `yaml:"heartbeat"` // 0 disables
	OverTempLevel    float64       `yaml:"over_temp_level"`
	Code             string        `yaml:"code"` // four '0'/'1' symbols for keys A-D
	MaxFailures      int           `yaml:"max_failures"`
	LockBlocksSerial bool          `yaml:"lock_blocks_serial"`
	EntryTimeout     time.Duration `yaml:"entry_timeout"` // 0 waits forever
}

// SerialConfig contains serial console settings. An empty device disables
// the console.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// MQTTConfig contains broker settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	WSBroker string `yaml:"ws_broker"` // "=broker" derives it, "off" disables
}

// HTTPConfig contains the status server address. Empty disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// GPIOConfig contains the chip name and line offsets.
type GPIOConfig struct {
	Chip             string `yaml:"chip"`
	Gas              int    `yaml:"gas"`
	Test             int    `yaml:"test"`
	Enter            int    `yaml:"enter"`
	Keys             [4]int `yaml:"keys"`
	Siren            int    `yaml:"siren"`
	AlarmLED         int    `yaml:"alarm_led"`
	IncorrectCodeLED int    `yaml:"incorrect_code_led"`
	SystemBlockedLED int    `yaml:"system_blocked_led"`
}

// ADCConfig contains the IIO channel files for the analog inputs.
type ADCConfig struct {
	Temperature   string `yaml:"temperature"`
	Potentiometer string `yaml:"potentiometer"`
	FullScale     int    `yaml:"full_scale"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	pins := gpio.DefaultPins
	return &Config{
		Alarm: AlarmConfig{
			Poll:          logic.DefaultTick,
			Heartbeat:     15 * time.Minute,
			OverTempLevel: logic.DefaultOverTempLevel,
			Code:          "1100",
			MaxFailures:   logic.DefaultMaxFailures,
		},
		Serial: SerialConfig{
			Device: "/dev/ttyACM0",
			Baud:   serialport.DefaultBaudRate,
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://192.168.1.200:1883",
			ClientID: "gas-alarm",
			WSBroker: "=broker",
		},
		HTTP: HTTPConfig{Addr: ":80"},
		GPIO: GPIOConfig{
			Chip:             "gpiochip0",
			Gas:              pins.Gas,
			Test:             pins.Test,
			Enter:            pins.Enter,
			Keys:             pins.Keys,
			Siren:            pins.Siren,
			AlarmLED:         pins.AlarmLED,
			IncorrectCodeLED: pins.IncorrectCodeLED,
			SystemBlockedLED: pins.SystemBlockedLED,
		},
		ADC: ADCConfig{
			Temperature:   "/sys/bus/iio/devices/iio:device0/in_voltage0_raw",
			Potentiometer: "/sys/bus/iio/devices/iio:device0/in_voltage1_raw",
			FullScale:     adc.DefaultFullScale,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file on top of the defaults.
// A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values the control loop cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Alarm.Poll <= 0 {
		errs = append(errs, fmt.Errorf("alarm.poll must be positive, got %v", c.Alarm.Poll))
	}
	if c.Alarm.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("alarm.heartbeat must not be negative, got %v", c.Alarm.Heartbeat))
	}
	if c.Alarm.EntryTimeout < 0 {
		errs = append(errs, fmt.Errorf("alarm.entry_timeout must not be negative, got %v", c.Alarm.EntryTimeout))
	}
	if c.Alarm.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("alarm.max_failures must be at least 1, got %d", c.Alarm.MaxFailures))
	}
	if _, err := c.Code(); err != nil {
		errs = append(errs, err)
	}
	if c.Serial.Device != "" && c.Serial.Baud <= 0 {
		errs = append(errs, fmt.Errorf("serial.baud must be positive, got %d", c.Serial.Baud))
	}
	if c.ADC.FullScale <= 0 {
		errs = append(errs, fmt.Errorf("adc.full_scale must be positive, got %d", c.ADC.FullScale))
	}
	if _, ok := logger.ParseLogLevel(c.Logging.Level); !ok {
		errs = append(errs, fmt.Errorf("logging.level %q is not a known level", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Code parses the configured code sequence.
func (c *Config) Code() (logic.CodeSequence, error) {
	var code logic.CodeSequence

	s := strings.TrimSpace(c.Alarm.Code)
	if len(s) != logic.KeyCount {
		return code, fmt.Errorf("alarm.code must have %d symbols, got %q", logic.KeyCount, c.Alarm.Code)
	}
	for i := 0; i < logic.KeyCount; i++ {
		pressed, ok := logic.ParseSymbol(s[i])
		if !ok {
			return code, fmt.Errorf("alarm.code symbol %d is %q, want '0' or '1'", i, s[i])
		}
		code[i] = pressed
	}

	return code, nil
}

// Pins returns the GPIO line offsets.
func (c *Config) Pins() gpio.Pins {
	return gpio.Pins{
		Gas:              c.GPIO.Gas,
		Test:             c.GPIO.Test,
		Enter:            c.GPIO.Enter,
		Keys:             c.GPIO.Keys,
		Siren:            c.GPIO.Siren,
		AlarmLED:         c.GPIO.AlarmLED,
		IncorrectCodeLED: c.GPIO.IncorrectCodeLED,
		SystemBlockedLED: c.GPIO.SystemBlockedLED,
	}
}
