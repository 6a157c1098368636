package main

import (
	"fmt"
	"io"

	"github.com/sweeney/gas-alarm/internal/adc"
	"github.com/sweeney/gas-alarm/internal/gpio"
	"github.com/sweeney/gas-alarm/internal/logic"
)

// printInputs reads every input once and prints it. The temperature is a
// single unfiltered sample.
func printInputs(w io.Writer, inputs gpio.Reader, temperature, potentiometer adc.Sampler) error {
	in, err := inputs.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	temp, err := temperature.Read()
	if err != nil {
		return fmt.Errorf("read temperature: %w", err)
	}
	pot, err := potentiometer.Read()
	if err != nil {
		return fmt.Errorf("read potentiometer: %w", err)
	}

	c := logic.ScaledTemperatureC(temp)
	fmt.Fprintf(w, "Gas: %s, Test: %s, Enter: %s, Keys: %s\n",
		detected(in.Gas), pressed(in.Test), pressed(in.Enter), keys(in.Keys))
	fmt.Fprintf(w, "Temperature: %.2f C (%.2f F), Potentiometer: %.2f\n",
		c, logic.CelsiusToFahrenheit(c), pot)
	return nil
}

func detected(on bool) string {
	if on {
		return "DETECTED"
	}
	return "CLEAR"
}

func pressed(on bool) string {
	if on {
		return "PRESSED"
	}
	return "RELEASED"
}

func keys(k [4]bool) string {
	b := make([]byte, len(k))
	for i, on := range k {
		b[i] = '0'
		if on {
			b[i] = '1'
		}
	}
	return string(b)
}
