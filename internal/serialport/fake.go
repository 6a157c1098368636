package serialport

import (
	"bytes"
	"errors"
)

// FakePort is an in-memory console connection for tests.
type FakePort struct {
	// Input holds bytes not yet taken by TryReadByte.
	Input []byte

	// Output collects everything written.
	Output bytes.Buffer

	// WriteError, if set, will be returned by Write.
	WriteError error

	Closed bool
}

// NewFakePort creates a FakePort with pending input.
func NewFakePort(input string) *FakePort {
	return &FakePort{Input: []byte(input)}
}

// Send queues more input.
func (f *FakePort) Send(s string) {
	f.Input = append(f.Input, s...)
}

// TryReadByte returns the next queued byte.
func (f *FakePort) TryReadByte() (byte, bool) {
	if len(f.Input) == 0 {
		return 0, false
	}
	b := f.Input[0]
	f.Input = f.Input[1:]
	return b, true
}

// Write records b.
func (f *FakePort) Write(b []byte) (int, error) {
	if f.WriteError != nil {
		return 0, f.WriteError
	}
	if f.Closed {
		return 0, errors.New("fake port closed")
	}
	return f.Output.Write(b)
}

// Close marks the port closed.
func (f *FakePort) Close() error {
	f.Closed = true
	return nil
}
