// Command gas-alarm polls a gas sensor and an LM35 temperature sensor, drives
// the siren and indicator LEDs, verifies the disarm code and serves a serial
// command console. State changes are published to MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/gas-alarm/internal/adc"
	"github.com/sweeney/gas-alarm/internal/config"
	"github.com/sweeney/gas-alarm/internal/gpio"
	"github.com/sweeney/gas-alarm/internal/logger"
	"github.com/sweeney/gas-alarm/internal/logic"
	"github.com/sweeney/gas-alarm/internal/mqtt"
	"github.com/sweeney/gas-alarm/internal/serialport"
	"github.com/sweeney/gas-alarm/internal/status"
	"github.com/sweeney/gas-alarm/internal/web"
)

// defaultConfigPath is read when --config is not given.
const defaultConfigPath = "/etc/gas-alarm.yaml"

var (
	configPath string
	logLevel   string
	printState bool
	pollFlag   time.Duration
	brokerFlag string
	httpFlag   string
	serialFlag string

	rootCmd = &cobra.Command{
		Use:           "gas-alarm",
		Short:         "Gas and over-temperature alarm controller",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return run(context.Background(), cfg, printState)
		},
	}

	portsCmd = &cobra.Command{
		Use:   "ports",
		Short: "List serial ports available for the console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := serialport.Ports()
			if err != nil {
				return err
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	writeConfigCmd = &cobra.Command{
		Use:   "write-config [path]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return config.Default().Save(args[0])
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", defaultConfigPath, "path to configuration file")
	flags.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.BoolVar(&printState, "print-state", false, "Print current inputs and exit")
	flags.DurationVar(&pollFlag, "poll", logic.DefaultTick, "Polling interval")
	flags.StringVar(&brokerFlag, "broker", "", "MQTT broker address override")
	flags.StringVar(&httpFlag, "http", "", `HTTP status address override ("off" disables)`)
	flags.StringVar(&serialFlag, "serial", "", `Serial console device override ("off" disables)`)

	rootCmd.AddCommand(portsCmd, writeConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Errorf(context.Background(), "fatal: %v", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("poll") {
		cfg.Alarm.Poll = pollFlag
	}
	if flags.Changed("broker") {
		cfg.MQTT.Broker = brokerFlag
	}
	if flags.Changed("http") {
		cfg.HTTP.Addr = offToEmpty(httpFlag)
	}
	if flags.Changed("serial") {
		cfg.Serial.Device = offToEmpty(serialFlag)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	level, _ := logger.ParseLogLevel(cfg.Logging.Level)
	logger.SetLevel(level)

	return cfg, nil
}

func offToEmpty(s string) string {
	if s == "off" {
		return ""
	}
	return s
}

func run(ctx context.Context, cfg *config.Config, printState bool) error {
	code, err := cfg.Code()
	if err != nil {
		return err
	}

	board, err := gpio.NewBoard(cfg.GPIO.Chip, cfg.Pins())
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer board.Close()

	temperature, err := adc.NewIIOSampler(cfg.ADC.Temperature, cfg.ADC.FullScale)
	if err != nil {
		return fmt.Errorf("init temperature adc: %w", err)
	}
	potentiometer, err := adc.NewIIOSampler(cfg.ADC.Potentiometer, cfg.ADC.FullScale)
	if err != nil {
		return fmt.Errorf("init potentiometer adc: %w", err)
	}

	if printState {
		return printInputs(os.Stdout, board, temperature, potentiometer)
	}

	var port consolePort
	if cfg.Serial.Device != "" {
		p, err := serialport.Open(cfg.Serial.Device, cfg.Serial.Baud)
		if err != nil {
			return fmt.Errorf("init serial console: %w", err)
		}
		defer p.Close()
		port = p
		logger.InfoKV(ctx, "serial console open", "device", cfg.Serial.Device, "baud", cfg.Serial.Baud)
	}

	publisher := mqtt.NewRealPublisher(ctx, cfg.MQTT.Broker, cfg.MQTT.ClientID)
	defer publisher.Close()

	ws := resolveWSBroker(ctx, cfg.MQTT.WSBroker, cfg.MQTT.Broker)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:           cfg.Alarm.Poll.Milliseconds(),
		HeartbeatMs:      cfg.Alarm.Heartbeat.Milliseconds(),
		EntryTimeoutMs:   cfg.Alarm.EntryTimeout.Milliseconds(),
		OverTempLevel:    cfg.Alarm.OverTempLevel,
		MaxFailures:      cfg.Alarm.MaxFailures,
		LockBlocksSerial: cfg.Alarm.LockBlocksSerial,
		SerialDevice:     cfg.Serial.Device,
		Broker:           cfg.MQTT.Broker,
		HTTPPort:         cfg.HTTP.Addr,
		WSBroker:         ws,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		logger.Warnf(ctx, "failed to publish startup event: %v", err)
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(ctx, cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf(ctx, "http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Infof(ctx, "http status server listening on %s", cfg.HTTP.Addr)
	}

	logger.InfoKV(ctx, "started",
		"poll", cfg.Alarm.Poll,
		"heartbeat", cfg.Alarm.Heartbeat,
		"over_temp_level", cfg.Alarm.OverTempLevel,
		"max_failures", cfg.Alarm.MaxFailures,
		"lock_blocks_serial", cfg.Alarm.LockBlocksSerial,
		"broker", cfg.MQTT.Broker)

	ticker := time.NewTicker(cfg.Alarm.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	deps := loopDeps{
		inputs:        board,
		outputs:       board,
		temperature:   temperature,
		potentiometer: potentiometer,
		console:       port,
		publisher:     publisher,
		mqttStatus:    publisher,
		tracker:       tracker,
	}
	lc := loopConfig{
		tick:             cfg.Alarm.Poll,
		heartbeat:        cfg.Alarm.Heartbeat,
		overTempLevel:    cfg.Alarm.OverTempLevel,
		code:             code,
		maxFailures:      cfg.Alarm.MaxFailures,
		lockBlocksSerial: cfg.Alarm.LockBlocksSerial,
		entryTimeout:     cfg.Alarm.EntryTimeout,
	}

	return runLoop(ctx, deps, lc, time.Now, ticker.C, sigCh)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// resolveWSBroker converts the ws_broker setting into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" or
// empty disables.
func resolveWSBroker(ctx context.Context, ws, broker string) string {
	if ws == "off" || ws == "" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		logger.Warnf(ctx, "ws-broker: cannot parse broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
