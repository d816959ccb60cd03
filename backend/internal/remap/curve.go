package remap

import "math"

// ApplyCurve shapes a raw analog value in -1..1 with a deadzone and a
// quadratic response. Values whose magnitude is below deadzone map to 0;
// the rest map to sign(v) * ((|v|-deadzone)/(1-deadzone))^2.
func ApplyCurve(v, deadzone float64) float64 {
	if deadzone >= 1 {
		return 0
	}
	a := math.Abs(v)
	if a < deadzone {
		return 0
	}
	if a > 1 {
		a = 1
	}
	n := (a - deadzone) / (1 - deadzone)
	return math.Copysign(n*n, v)
}
