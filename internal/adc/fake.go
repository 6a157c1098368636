package adc

import "errors"

// FakeSampler is a test double that returns scripted readings.
type FakeSampler struct {
	// Values contains scripted readings. Each call to Read() consumes the
	// next value; once exhausted the last value repeats.
	Values []float64

	index int

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeSampler creates a FakeSampler with the given readings.
func NewFakeSampler(values ...float64) *FakeSampler {
	return &FakeSampler{Values: values}
}

// Read returns the next scripted reading.
func (f *FakeSampler) Read() (float64, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Values) == 0 {
		return 0, errors.New("no values configured")
	}

	v := f.Values[f.index]
	if f.index < len(f.Values)-1 {
		f.index++
	}
	return v, nil
}
