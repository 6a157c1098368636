// Package serialport connects the command console to a serial device.
//
// A background goroutine moves received bytes into a bounded channel so the
// polling loop can take one byte per tick without ever blocking on the port.
package serialport

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the board's USB console.
const DefaultBaudRate = 115200

// DefaultBufferSize is how many received bytes may wait for the loop.
const DefaultBufferSize = 256

// ErrClosed is reported by Err after Close.
var ErrClosed = errors.New("serial port closed")

// Port is a serial connection with a non-blocking byte receive side.
type Port struct {
	conn io.ReadWriteCloser
	rx   chan byte
	done chan struct{}

	writeMu sync.Mutex

	mu     sync.Mutex
	err    error
	closed bool
}

// Open opens the named device at the given baud rate (8N1).
func Open(device string, baud int) (*Port, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}

	conn, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}

	return NewPort(conn, DefaultBufferSize), nil
}

// NewPort wraps an already open connection and starts the receive goroutine.
func NewPort(conn io.ReadWriteCloser, bufSize int) *Port {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	p := &Port{
		conn: conn,
		rx:   make(chan byte, bufSize),
		done: make(chan struct{}),
	}
	go p.receive()
	return p
}

func (p *Port) receive() {
	buf := make([]byte, 64)
	for {
		n, err := p.conn.Read(buf)
		for _, b := range buf[:n] {
			select {
			case p.rx <- b:
			case <-p.done:
				return
			}
		}
		if err != nil {
			p.setErr(err)
			return
		}
	}
}

func (p *Port) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		if p.closed {
			err = ErrClosed
		}
		p.err = err
	}
}

// TryReadByte returns the next received byte without blocking.
func (p *Port) TryReadByte() (byte, bool) {
	select {
	case b := <-p.rx:
		return b, true
	default:
		return 0, false
	}
}

// Write sends b to the device.
func (p *Port) Write(b []byte) (int, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.Write(b)
}

// Err returns the error that stopped the receive goroutine, if any.
func (p *Port) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close stops the receive goroutine and closes the device.
func (p *Port) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	return p.conn.Close()
}

// Ports lists the serial devices present on the system.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
