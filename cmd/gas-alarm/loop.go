package main

import (
	"context"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/gas-alarm/internal/adc"
	"github.com/sweeney/gas-alarm/internal/console"
	"github.com/sweeney/gas-alarm/internal/gpio"
	"github.com/sweeney/gas-alarm/internal/logger"
	"github.com/sweeney/gas-alarm/internal/logic"
	"github.com/sweeney/gas-alarm/internal/mqtt"
	"github.com/sweeney/gas-alarm/internal/status"
)

// consolePort is the serial side of the command console.
type consolePort interface {
	console.ByteSource
	io.Writer
}

// loopDeps are the collaborators of runLoop. console, mqttStatus and tracker
// may be nil.
type loopDeps struct {
	inputs        gpio.Reader
	outputs       gpio.Writer
	temperature   adc.Sampler
	potentiometer adc.Sampler
	console       consolePort
	publisher     mqtt.Publisher
	mqttStatus    mqtt.ConnectionStatus
	tracker       *status.Tracker
}

// loopConfig holds the startup settings of the alarm logic.
type loopConfig struct {
	tick             time.Duration
	heartbeat        time.Duration
	overTempLevel    float64
	code             logic.CodeSequence
	maxFailures      int
	lockBlocksSerial bool
	entryTimeout     time.Duration
}

// fault logs the first error of a streak and the recovery, not every tick.
type fault struct {
	what   string
	active bool
}

func (f *fault) report(ctx context.Context, err error) {
	if f.active {
		return
	}
	f.active = true
	logger.ErrorKV(ctx, f.what+" failed", "error", err)
}

func (f *fault) clear(ctx context.Context) {
	if !f.active {
		return
	}
	f.active = false
	logger.InfoKV(ctx, f.what+" recovered")
}

func runLoop(ctx context.Context, d loopDeps, cfg loopConfig, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	ctx = logger.WithName(ctx, "loop")

	var (
		state    = logic.NewState(cfg.code)
		filter   logic.Filter
		engine   = logic.NewEngine(cfg.tick, cfg.overTempLevel)
		verifier = logic.NewVerifier(cfg.maxFailures, cfg.lockBlocksSerial)
		counts   logic.EventCounts
		hb       = logic.NewHeartbeat(now())

		readFault    = fault{what: "input read"}
		writeFault   = fault{what: "output write"}
		consoleFault = fault{what: "serial console"}
	)

	var con *console.Console
	if d.console != nil {
		con = console.New(d.console, verifier, cfg.entryTimeout)
	}

	for {
		select {
		case s := <-sig:
			logger.Infof(ctx, "received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if d.tracker != nil {
				if d.mqttStatus != nil {
					d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
				}
				event.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				logger.Warnf(ctx, "failed to publish shutdown event: %v", err)
			} else {
				logger.Infof(ctx, "published shutdown event")
			}
			return nil

		case <-tick:
			t := now()

			in, err := readInputs(d, t)
			if err != nil {
				readFault.report(ctx, err)
				continue
			}
			readFault.clear(ctx)

			avg := filter.Update(in.Temperature)
			events := engine.Update(&state, in, logic.ScaledTemperatureC(avg))
			events = append(events, verifier.ButtonUpdate(&state, in)...)

			if con != nil {
				consoleEvents, err := con.Step(&state, in, d.console)
				if err == nil {
					err = linkErr(d.console)
				}
				if err != nil {
					consoleFault.report(ctx, err)
				} else {
					consoleFault.clear(ctx)
				}
				events = append(events, consoleEvents...)
			}

			if err := d.outputs.Write(gpio.Outputs(logic.OutputsOf(&state))); err != nil {
				writeFault.report(ctx, err)
			} else {
				writeFault.clear(ctx)
			}

			counts.Add(events)
			for _, event := range events {
				logEvent(ctx, event)
				if err := d.publisher.Publish(event); err != nil {
					logger.Warnf(ctx, "publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			if d.tracker != nil {
				consoleMode := "disabled"
				if con != nil {
					consoleMode = con.Mode()
				}
				d.tracker.Update(&state, in, consoleMode, counts)
				if d.mqttStatus != nil {
					d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
				}
			}

			if hbData := hb.Check(t, cfg.heartbeat, counts); hbData != nil {
				logger.InfoKV(ctx, "heartbeat",
					"uptime", hbData.Uptime,
					"alarm_on", hbData.Counts.AlarmOn,
					"alarm_off", hbData.Counts.AlarmOff,
					"accepted", hbData.Counts.Accepted,
					"rejected", hbData.Counts.Rejected)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if d.tracker != nil {
					if net := readNetworkInfo(); net != nil {
						d.tracker.SetNetwork(net)
					}
					hbEvent.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					logger.Warnf(ctx, "heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// linkErr reports a dead receive side, which Step alone cannot see.
func linkErr(p consolePort) error {
	if e, ok := p.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}

// readInputs samples every input once. Any failure skips the tick.
func readInputs(d loopDeps, t time.Time) (logic.Inputs, error) {
	digital, err := d.inputs.Read()
	if err != nil {
		return logic.Inputs{}, err
	}
	temperature, err := d.temperature.Read()
	if err != nil {
		return logic.Inputs{}, err
	}
	pot, err := d.potentiometer.Read()
	if err != nil {
		return logic.Inputs{}, err
	}

	return logic.Inputs{
		Gas:           digital.Gas,
		Test:          digital.Test,
		Enter:         digital.Enter,
		Keys:          logic.CodeSequence(digital.Keys),
		Temperature:   temperature,
		Potentiometer: pot,
		Time:          t,
	}, nil
}

func logEvent(ctx context.Context, e logic.Event) {
	kvs := []any{
		"event", e.Type,
		"state", e.Alarm,
		"gas", e.Causes.Gas,
		"over_temp", e.Causes.OverTemp,
		"failures", e.Failures,
	}
	if e.Source != "" {
		kvs = append(kvs, "source", e.Source)
	}

	switch e.Type {
	case logic.EventAlarmOn, logic.EventCodeRejected:
		logger.WarnKV(ctx, "alarm event", kvs...)
	case logic.EventLocked:
		logger.ErrorKV(ctx, "alarm event", kvs...)
	default:
		logger.InfoKV(ctx, "alarm event", kvs...)
	}
}
