package display

import "math"

// Display limits. Values outside are pegged to the nearest limit.
const (
	MinShownLambda = 0.550
	MaxShownLambda = 1.500
	MinShownAFR    = 8.09
	MaxShownAFR    = 21.0
)

// Lambda warning bands (inclusive).
const (
	LambdaAboveWarning  = 1.12
	LambdaAboveCritical = 1.20
	LambdaBelowWarning  = 0.86
	LambdaBelowCritical = 0.80
)

// Exhaust temperature bands in °C (inclusive).
const (
	TempWarning  = 600
	TempCritical = 850
)

// Heater voltage fault limits, compared against |v|.
const (
	VoltError  = 0.15
	VoltWarmUp = 0.20
)

// Clamp pegs value into the display band of kind. NaN maps to the lower limit.
func Clamp(value float64, kind Kind) float64 {
	lo, hi := MinShownLambda, MaxShownLambda
	if kind == KindAFR {
		lo, hi = MinShownAFR, MaxShownAFR
	}
	if math.IsNaN(value) {
		return lo
	}
	return math.Max(math.Min(value, hi), lo)
}

// Saturated reports whether a clamped lambda value sits on a display limit.
func Saturated(lambda float64) bool {
	return lambda >= MaxShownLambda || lambda <= MinShownLambda
}

// ClassifyLambda returns the tier of a lambda value. Critical is tested first.
func ClassifyLambda(v float64) Tier {
	if v >= LambdaAboveCritical || v <= LambdaBelowCritical {
		return TierCritical
	}
	if v >= LambdaAboveWarning || v <= LambdaBelowWarning {
		return TierWarning
	}
	return TierNormal
}

// ClassifyTemperature returns the tier of an exhaust temperature.
// Cold readings are never flagged.
func ClassifyTemperature(v float64) Tier {
	if v >= TempCritical {
		return TierCritical
	}
	if v >= TempWarning {
		return TierWarning
	}
	return TierNormal
}

// ClassifyVoltageFault returns the heater fault for a bank voltage.
func ClassifyVoltageFault(v float64) Fault {
	a := math.Abs(v)
	if a <= VoltError {
		return FaultError
	}
	if a <= VoltWarmUp {
		return FaultWarmUp
	}
	return FaultNone
}

// TierColor maps a tier to its text color.
func TierColor(t Tier) Color {
	switch t {
	case TierCritical:
		return ColorRed
	case TierWarning:
		return ColorOrange
	default:
		return ColorBlack
	}
}
