package adc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRaw(t *testing.T, path, value string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(value), 0o600))
}

func TestIIOSamplerRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	writeRaw(t, path, "2048\n")

	s, err := NewIIOSampler(path, 4096)
	require.NoError(t, err)

	v, err := s.Read()
	require.NoError(t, err)
	require.InDelta(t, 0.5, v, 1e-12)

	// The attribute is re-read every call.
	writeRaw(t, path, "1024")
	v, err = s.Read()
	require.NoError(t, err)
	require.InDelta(t, 0.25, v, 1e-12)
}

func TestIIOSamplerClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage1_raw")
	writeRaw(t, path, "0")
	s, err := NewIIOSampler(path, DefaultFullScale)
	require.NoError(t, err)

	writeRaw(t, path, "5000")
	v, err := s.Read()
	require.NoError(t, err)
	require.Equal(t, 1.0, v)

	writeRaw(t, path, "-3")
	v, err = s.Read()
	require.NoError(t, err)
	require.Equal(t, 0.0, v)
}

func TestIIOSamplerErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewIIOSampler(filepath.Join(dir, "missing"), DefaultFullScale)
	require.Error(t, err)

	path := filepath.Join(dir, "in_voltage2_raw")
	writeRaw(t, path, "12")
	_, err = NewIIOSampler(path, 0)
	require.ErrorIs(t, err, errFullScale)

	s, err := NewIIOSampler(path, DefaultFullScale)
	require.NoError(t, err)
	writeRaw(t, path, "garbage")
	_, err = s.Read()
	require.Error(t, err)
}

func TestFakeSampler(t *testing.T) {
	f := NewFakeSampler(0.1, 0.2)

	v, err := f.Read()
	require.NoError(t, err)
	require.Equal(t, 0.1, v)

	v, _ = f.Read()
	require.Equal(t, 0.2, v)
	v, _ = f.Read()
	require.Equal(t, 0.2, v, "last value repeats")

	f.ReadError = errors.New("adc busy")
	_, err = f.Read()
	require.Error(t, err)

	_, err = NewFakeSampler().Read()
	require.Error(t, err)
}
