package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sweeney/gas-alarm/internal/adc"
	"github.com/sweeney/gas-alarm/internal/gpio"
)

func TestPrintInputs(t *testing.T) {
	reader := gpio.NewFakeReader([]gpio.Inputs{{
		Gas:   true,
		Enter: true,
		Keys:  [4]bool{true, false, false, true},
	}})

	var out bytes.Buffer
	err := printInputs(&out, reader, adc.NewFakeSampler(0.1), adc.NewFakeSampler(0.25))
	require.NoError(t, err)
	require.Equal(t,
		"Gas: DETECTED, Test: RELEASED, Enter: PRESSED, Keys: 1001\n"+
			"Temperature: 33.00 C (91.40 F), Potentiometer: 0.25\n",
		out.String())
}

func TestPrintInputsErrors(t *testing.T) {
	ok := gpio.NewFakeReader([]gpio.Inputs{{}})

	broken := gpio.NewFakeReader(nil)
	broken.ReadError = errors.New("chip gone")
	err := printInputs(&bytes.Buffer{}, broken, adc.NewFakeSampler(0), adc.NewFakeSampler(0))
	require.ErrorContains(t, err, "read gpio")

	temp := adc.NewFakeSampler()
	err = printInputs(&bytes.Buffer{}, ok, temp, adc.NewFakeSampler(0))
	require.ErrorContains(t, err, "read temperature")

	err = printInputs(&bytes.Buffer{}, ok, adc.NewFakeSampler(0), adc.NewFakeSampler())
	require.ErrorContains(t, err, "read potentiometer")
}
