// Package console implements the single-byte serial command protocol.
//
// Every tick the console consumes at most one byte that is already buffered.
// The two multi-byte commands (enter code, set new code) are resumable: the
// console remembers how many symbols it has received and picks up on the next
// tick, so sensor sampling and alarm timing keep running during an entry.
package console

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sweeney/gas-alarm/internal/logic"
)

// ByteSource yields already-received bytes without blocking.
type ByteSource interface {
	// TryReadByte returns the next buffered byte, or ok=false if none is waiting.
	TryReadByte() (b byte, ok bool)
}

type mode int

const (
	modeCommand mode = iota
	modeEnterCode
	modeNewCode
)

func (m mode) String() string {
	switch m {
	case modeEnterCode:
		return "enter-code"
	case modeNewCode:
		return "new-code"
	default:
		return "command"
	}
}

// Console is the command interpreter state.
type Console struct {
	w            io.Writer
	verifier     *logic.Verifier
	entryTimeout time.Duration

	mode    mode
	pos     int
	symbols [logic.KeyCount]byte
	since   time.Time
}

// New creates a Console writing replies to w. A positive entryTimeout abandons
// a code entry that has been waiting that long for its next symbol; zero waits
// forever.
func New(w io.Writer, verifier *logic.Verifier, entryTimeout time.Duration) *Console {
	return &Console{
		w:            w,
		verifier:     verifier,
		entryTimeout: entryTimeout,
	}
}

// InEntry reports whether a code entry or code change is in progress.
func (c *Console) InEntry() bool {
	return c.mode != modeCommand
}

// Mode names the current console mode for status output.
func (c *Console) Mode() string {
	return c.mode.String()
}

// Step handles at most one byte from src. It returns the events produced by
// a completed code entry or code change.
func (c *Console) Step(s *logic.State, in logic.Inputs, src ByteSource) ([]logic.Event, error) {
	if c.InEntry() && c.entryTimeout > 0 && in.Time.Sub(c.since) >= c.entryTimeout {
		c.reset()
		return nil, c.write(msgEntryTimeout)
	}

	b, ok := src.TryReadByte()
	if !ok {
		return nil, nil
	}

	if c.InEntry() {
		return c.receiveSymbol(s, b, in.Time)
	}
	return nil, c.dispatch(s, in, b)
}

func (c *Console) dispatch(s *logic.State, in logic.Inputs, b byte) error {
	switch b {
	case cmdAlarmState:
		if s.Active() {
			return c.write(msgAlarmOn)
		}
		return c.write(msgAlarmOff)

	case cmdGasState:
		if in.Gas {
			return c.write(msgGasDetected)
		}
		return c.write(msgGasNotDetected)

	case cmdOverTemp:
		if s.OverTemp {
			return c.write(msgTempAbove)
		}
		return c.write(msgTempBelow)

	case cmdEnterCode:
		c.begin(modeEnterCode, in.Time)
		return c.write(promptEnterCode)

	case cmdNewCode:
		c.begin(modeNewCode, in.Time)
		return c.write(promptNewCode)

	case cmdPotLower, cmdPotUpper:
		return c.write(fmt.Sprintf(fmtPotentiometer, in.Potentiometer))

	case cmdCelsiusLow, cmdCelsiusUp:
		return c.write(fmt.Sprintf(fmtCelsius, s.TemperatureC))

	case cmdFahrenLow, cmdFahrenUp:
		return c.write(fmt.Sprintf(fmtFahrenheit, logic.CelsiusToFahrenheit(s.TemperatureC)))

	default:
		return c.write(helpText)
	}
}

// receiveSymbol stores one symbol of an entry. Invalid symbols are kept as
// they are; the verifier decides what they mean once all four have arrived.
func (c *Console) receiveSymbol(s *logic.State, b byte, now time.Time) ([]logic.Event, error) {
	c.symbols[c.pos] = b
	c.pos++
	c.since = now

	// The entry completes even if the echo cannot be written.
	echoErr := c.write(echo)
	if c.pos < logic.KeyCount {
		return nil, echoErr
	}

	m, symbols := c.mode, c.symbols
	c.reset()

	if m == modeNewCode {
		events := c.verifier.SetCode(s, symbols, now)
		return events, errors.Join(echoErr, c.write(msgNewCode))
	}

	res, events := c.verifier.SubmitSymbols(s, symbols, now)
	var reply string
	switch res {
	case logic.Accepted:
		reply = msgCodeCorrect
	case logic.Blocked:
		reply = msgCodeBlocked
	default:
		reply = msgCodeIncorrect
	}
	return events, errors.Join(echoErr, c.write(reply))
}

func (c *Console) begin(m mode, now time.Time) {
	c.mode = m
	c.pos = 0
	c.symbols = [logic.KeyCount]byte{}
	c.since = now
}

func (c *Console) reset() {
	c.mode = modeCommand
	c.pos = 0
	c.symbols = [logic.KeyCount]byte{}
}

func (c *Console) write(s string) error {
	if _, err := io.WriteString(c.w, s); err != nil {
		return fmt.Errorf("console write: %w", err)
	}
	return nil
}
