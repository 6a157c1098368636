package gpio

import "errors"

// FakeReader is a test double that returns scripted input samples.
type FakeReader struct {
	// Samples contains scripted values to return.
	// Each call to Read() consumes the next sample.
	Samples []Inputs

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Inputs) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (Inputs, error) {
	if f.ReadError != nil {
		return Inputs{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return Inputs{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeWriter records every output image it is given.
type FakeWriter struct {
	// Written contains every image passed to Write, in order.
	Written []Outputs

	// WriteError, if set, will be returned by Write()
	WriteError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeWriter creates an empty FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Write records out.
func (f *FakeWriter) Write(out Outputs) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Written = append(f.Written, out)
	return nil
}

// Last returns the most recent image, or the zero image if none was written.
func (f *FakeWriter) Last() Outputs {
	if len(f.Written) == 0 {
		return Outputs{}
	}
	return f.Written[len(f.Written)-1]
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}
