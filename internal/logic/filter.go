package logic

// SampleCount is the size of the temperature moving-average window.
const SampleCount = 100

// LM35 conversion constants: 3.3 V ADC reference, 10 mV per degree.
const (
	adcReferenceVolts = 3.3
	lm35VoltsPerDegC  = 0.01
)

// Filter is a fixed-size moving average over raw temperature samples.
// Slots start at zero, so the first SampleCount averages are pulled toward
// zero until the ring has been filled once.
type Filter struct {
	samples [SampleCount]float64
	index   int
}

// Update stores raw in the ring and returns the mean over all slots.
// The sum is recomputed on every call.
func (f *Filter) Update(raw float64) float64 {
	f.samples[f.index] = raw
	f.index = (f.index + 1) % SampleCount

	var sum float64
	for _, v := range f.samples {
		sum += v
	}
	return sum / SampleCount
}

// ScaledTemperatureC converts a normalized LM35 reading to degrees Celsius.
func ScaledTemperatureC(reading float64) float64 {
	return reading * adcReferenceVolts / lm35VoltsPerDegC
}

// CelsiusToFahrenheit converts degrees Celsius to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}
