// Package gpio provides digital input and output with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Inputs is one sample of every digital input, in logical form.
type Inputs struct {
	Gas   bool    // true = gas detected (MQ-2 output is active low)
	Test  bool    // alarm test button held
	Enter bool    // enter button held
	Keys  [4]bool // code keys A, B, C, D held
}

// Outputs is the desired level of every actuator.
type Outputs struct {
	Siren            bool // true = siren line driven low; false = released
	AlarmLED         bool
	IncorrectCodeLED bool
	SystemBlockedLED bool
}

// Reader reads digital inputs.
type Reader interface {
	// Read returns the logical input states.
	Read() (Inputs, error)

	// Close releases GPIO resources.
	Close() error
}

// Writer drives the actuators.
type Writer interface {
	// Write applies the output image. Implementations may skip lines whose
	// level has not changed.
	Write(out Outputs) error

	// Close releases GPIO resources.
	Close() error
}

// Pins holds line offsets on the GPIO chip (BCM numbering on a Pi).
type Pins struct {
	Gas              int
	Test             int
	Enter            int
	Keys             [4]int
	Siren            int
	AlarmLED         int
	IncorrectCodeLED int
	SystemBlockedLED int
}

// DefaultPins is the wiring used by the reference board.
var DefaultPins = Pins{
	Gas:              12,
	Test:             2,
	Enter:            3,
	Keys:             [4]int{4, 5, 6, 7},
	Siren:            10,
	AlarmLED:         17,
	IncorrectCodeLED: 27,
	SystemBlockedLED: 22,
}
