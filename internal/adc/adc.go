// Package adc reads analog channels as normalized values in 0.0-1.0.
package adc

// Sampler reads one analog channel.
type Sampler interface {
	// Read returns the current reading scaled to 0.0-1.0 of full scale.
	Read() (float64, error)
}
