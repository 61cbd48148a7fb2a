// Package curve implements the stateless hardware-value -> volume mapping.
package curve

import (
	"math"

	"pcpaneld/internal/model"
)

// Apply maps a hardware sample through the power-law curve (v/255)^e.
//
// Contract: Apply(0, e) == 0; Apply(255, e) == 1; strictly monotonic
// non-decreasing in v for any fixed e > 0.
func Apply(v model.HwValue, exponent float64) model.Volume {
	frac := float64(v) / 255.0
	return model.Volume(math.Pow(frac, exponent)).Clamp()
}

// Inverse maps a normalized volume back to the hardware domain for the same
// exponent: the inverse of Apply, used by round-trip property tests.
func Inverse(vol model.Volume, exponent float64) model.HwValue {
	frac := math.Pow(float64(vol.Clamp()), 1.0/exponent)
	hw := frac * 255.0
	if hw < 0 {
		hw = 0
	}
	if hw > 255 {
		hw = 255
	}
	return model.HwValue(hw + 0.5) // round to nearest
}
