//go:build linux

package gpio

import (
	"fmt"
	"slices"

	"github.com/warthog618/go-gpiocdev"
)

// Board drives the alarm hardware through the Linux GPIO character device.
type Board struct {
	chip   *gpiocdev.Chip
	inputs *gpiocdev.Lines // gas, test, enter, keys A-D
	leds   *gpiocdev.Lines // alarm, incorrect code, system blocked
	siren  *gpiocdev.Line

	sirenDriven bool
	lastLEDs    []int
	rawInputs   []int
}

// NewBoard requests every line on the named chip. The siren starts released.
func NewBoard(chipName string, pins Pins) (*Board, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	inputOffsets := []int{pins.Gas, pins.Test, pins.Enter, pins.Keys[0], pins.Keys[1], pins.Keys[2], pins.Keys[3]}

	// Buttons idle low with pull-down, matching the board's switch wiring.
	// The MQ-2 module drives its own output, the pull only matters when it
	// is unplugged, where the low level reads as "gas detected".
	inputs, err := chip.RequestLines(inputOffsets, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request input pins %v: %w", inputOffsets, err)
	}

	ledOffsets := []int{pins.AlarmLED, pins.IncorrectCodeLED, pins.SystemBlockedLED}
	leds, err := chip.RequestLines(ledOffsets, gpiocdev.AsOutput(0, 0, 0))
	if err != nil {
		inputs.Close()
		chip.Close()
		return nil, fmt.Errorf("request led pins %v: %w", ledOffsets, err)
	}

	// Released siren: the line floats and the external pull-up keeps it quiet.
	siren, err := chip.RequestLine(pins.Siren, gpiocdev.AsInput)
	if err != nil {
		leds.Close()
		inputs.Close()
		chip.Close()
		return nil, fmt.Errorf("request siren pin %d: %w", pins.Siren, err)
	}

	return &Board{
		chip:      chip,
		inputs:    inputs,
		leds:      leds,
		siren:     siren,
		lastLEDs:  []int{0, 0, 0},
		rawInputs: make([]int, len(inputOffsets)),
	}, nil
}

// Read returns the logical input states.
// The gas line is inverted: raw low = gas detected.
func (b *Board) Read() (Inputs, error) {
	if err := b.inputs.Values(b.rawInputs); err != nil {
		return Inputs{}, fmt.Errorf("read input pins: %w", err)
	}

	raw := b.rawInputs
	return Inputs{
		Gas:   raw[0] == 0,
		Test:  raw[1] == 1,
		Enter: raw[2] == 1,
		Keys:  [4]bool{raw[3] == 1, raw[4] == 1, raw[5] == 1, raw[6] == 1},
	}, nil
}

// Write applies the output image. The siren is an open-drain output driven
// low while active; when inactive the line is switched back to input so it
// floats instead of sourcing current.
func (b *Board) Write(out Outputs) error {
	if out.Siren != b.sirenDriven {
		var err error
		if out.Siren {
			err = b.siren.Reconfigure(gpiocdev.AsOutput(0), gpiocdev.AsOpenDrain)
		} else {
			err = b.siren.Reconfigure(gpiocdev.AsInput)
		}
		if err != nil {
			return fmt.Errorf("set siren %v: %w", out.Siren, err)
		}
		b.sirenDriven = out.Siren
	}

	leds := []int{level(out.AlarmLED), level(out.IncorrectCodeLED), level(out.SystemBlockedLED)}
	if !slices.Equal(leds, b.lastLEDs) {
		if err := b.leds.SetValues(leds); err != nil {
			return fmt.Errorf("set leds: %w", err)
		}
		b.lastLEDs = leds
	}

	return nil
}

// Close releases GPIO resources.
// Outputs are switched off and every line is left as an input, the board's
// power-on state, so nothing keeps sounding after the daemon exits.
func (b *Board) Close() error {
	var errs []error

	if b.leds != nil {
		if err := b.leds.SetValues([]int{0, 0, 0}); err != nil {
			errs = append(errs, fmt.Errorf("clear leds: %w", err))
		}
		if err := b.leds.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close leds: %w", err))
		}
	}
	if b.siren != nil {
		if err := b.siren.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("release siren: %w", err))
		}
		if err := b.siren.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close siren: %w", err))
		}
	}
	if b.inputs != nil {
		if err := b.inputs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close inputs: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}
