package inventory

import "math"

// zeroThreshold is the magnitude below which a display value reads as zero.
const zeroThreshold = 1e-4

// Round3Sig rounds v to three significant figures for display.
func Round3Sig(v float64) float64 {
	return RoundSigFigs(v, 3)
}

// RoundSigFigs rounds v to n significant figures. Halves round toward
// positive infinity. NaN and infinities are returned unchanged.
func RoundSigFigs(v float64, n int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if math.Abs(v) < zeroThreshold {
		return 0
	}
	magnitude := int(math.Floor(math.Log10(math.Abs(v)))) + 1
	exp := n - magnitude
	if exp >= 0 {
		scale := math.Pow10(exp)
		return roundHalfUp(v*scale) / scale
	}
	scale := math.Pow10(-exp)
	return roundHalfUp(v/scale) * scale
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
