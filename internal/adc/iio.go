package adc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultFullScale is the raw count of a 12-bit converter at its reference voltage.
const DefaultFullScale = 4095

var errFullScale = errors.New("adc: full scale must be positive")

// IIOSampler reads a raw channel attribute exposed by the Linux industrial I/O
// subsystem, e.g. /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
type IIOSampler struct {
	path      string
	fullScale float64
}

// NewIIOSampler creates a sampler for the given sysfs attribute.
func NewIIOSampler(path string, fullScale int) (*IIOSampler, error) {
	if fullScale <= 0 {
		return nil, errFullScale
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("adc channel %s: %w", path, err)
	}
	return &IIOSampler{
		path:      filepath.Clean(path),
		fullScale: float64(fullScale),
	}, nil
}

// Read returns raw/fullScale, clamped to 0.0-1.0.
func (s *IIOSampler) Read() (float64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("read adc %s: %w", s.path, err)
	}

	raw, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse adc %s: %w", s.path, err)
	}

	v := float64(raw) / s.fullScale
	switch {
	case v < 0:
		return 0, nil
	case v > 1:
		return 1, nil
	}
	return v, nil
}
