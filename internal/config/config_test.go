package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/gas-alarm/internal/gpio"
	"github.com/sweeney/gas-alarm/internal/logic"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gas-alarm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10*time.Millisecond, cfg.Alarm.Poll)
	assert.Equal(t, 50.0, cfg.Alarm.OverTempLevel)
	assert.Equal(t, 5, cfg.Alarm.MaxFailures)
	assert.False(t, cfg.Alarm.LockBlocksSerial)
	assert.Zero(t, cfg.Alarm.EntryTimeout)
	assert.Equal(t, gpio.DefaultPins, cfg.Pins())

	code, err := cfg.Code()
	require.NoError(t, err)
	assert.Equal(t, logic.DefaultCode, code)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
alarm:
  poll: 20ms
  heartbeat: 0s
  over_temp_level: 42.5
  code: "0110"
  max_failures: 3
  lock_blocks_serial: true
  entry_timeout: 30s
serial:
  device: /dev/ttyUSB1
  baud: 9600
gpio:
  chip: gpiochip4
  keys: [20, 21, 22, 23]
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Millisecond, cfg.Alarm.Poll)
	assert.Zero(t, cfg.Alarm.Heartbeat)
	assert.Equal(t, 42.5, cfg.Alarm.OverTempLevel)
	assert.Equal(t, 3, cfg.Alarm.MaxFailures)
	assert.True(t, cfg.Alarm.LockBlocksSerial)
	assert.Equal(t, 30*time.Second, cfg.Alarm.EntryTimeout)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Device)
	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, "gpiochip4", cfg.GPIO.Chip)
	assert.Equal(t, [4]int{20, 21, 22, 23}, cfg.Pins().Keys)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset sections keep their defaults.
	assert.Equal(t, "tcp://192.168.1.200:1883", cfg.MQTT.Broker)
	assert.Equal(t, gpio.DefaultPins.Siren, cfg.Pins().Siren)

	code, err := cfg.Code()
	require.NoError(t, err)
	assert.Equal(t, logic.CodeSequence{false, true, true, false}, code)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "alarm: [not, a, map")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
alarm:
  poll: 0s
  code: "12"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alarm.poll")
	assert.Contains(t, err.Error(), "alarm.code")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"negative heartbeat", func(c *Config) { c.Alarm.Heartbeat = -time.Second }, "alarm.heartbeat"},
		{"negative entry timeout", func(c *Config) { c.Alarm.EntryTimeout = -time.Second }, "alarm.entry_timeout"},
		{"zero max failures", func(c *Config) { c.Alarm.MaxFailures = 0 }, "alarm.max_failures"},
		{"bad code symbol", func(c *Config) { c.Alarm.Code = "11x0" }, "symbol 2"},
		{"zero baud", func(c *Config) { c.Serial.Baud = 0 }, "serial.baud"},
		{"zero full scale", func(c *Config) { c.ADC.FullScale = 0 }, "adc.full_scale"},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_SerialDisabledIgnoresBaud(t *testing.T) {
	cfg := Default()
	cfg.Serial.Device = ""
	cfg.Serial.Baud = 0
	require.NoError(t, cfg.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")

	cfg := Default()
	cfg.Alarm.Code = "1010"
	cfg.Alarm.EntryTimeout = time.Minute
	cfg.HTTP.Addr = ""
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
