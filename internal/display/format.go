package display

import (
	"fmt"
	"strconv"
)

// Placeholder replaces numeric text while a bank reports a heater fault.
const Placeholder = "---"

// Bank label texts.
const (
	LabelBank1  = "Bank 1"
	LabelBank2  = "Bank 2"
	LabelError  = "Error"
	LabelWarmUp = "Warm-up"
)

type bank struct {
	label, lambda, afr, temp ChannelID
	labelText                string
	lambdaValue, afrValue    float64
	tempValue, voltValue     *float64
}

// FormatDisplay renders one snapshot. Severity is classified on the clamped
// value so text and color always agree. It has no side effects.
func FormatDisplay(s Snapshot, prefs Preferences) Frame {
	prefs = prefs.Normalized()
	frame := Frame{Channels: make(map[ChannelID]Render, len(ChannelOrder))}

	banks := []bank{
		{Bank1, Lambda1, AFR1, Temp1, LabelBank1, s.Lambda1, s.AFR1, s.Temp1, s.Volt1},
		{Bank2, Lambda2, AFR2, Temp2, LabelBank2, s.Lambda2, s.AFR2, s.Temp2, s.Volt2},
	}
	for _, b := range banks {
		if formatBank(frame.Channels, b, prefs) {
			frame.Blink = append(frame.Blink, b.lambda)
		}
	}
	return frame
}

// formatBank fills the channels of one bank and reports whether its lambda
// channel should blink.
func formatBank(out map[ChannelID]Render, b bank, prefs Preferences) bool {
	if b.tempValue != nil {
		t := *b.tempValue
		tier := ClassifyTemperature(t)
		out[b.temp] = Render{Text: FormatTemperature(t), Color: TierColor(tier), Tier: tier}
	}

	fault := FaultNone
	if b.voltValue != nil {
		fault = ClassifyVoltageFault(*b.voltValue)
	}

	switch fault {
	case FaultError, FaultWarmUp:
		text := LabelError
		if fault == FaultWarmUp {
			text = LabelWarmUp
		}
		// A heater fault is display state, not a reading severity.
		out[b.label] = Render{Text: text, Color: ColorRed, Tier: TierNormal}
		out[b.lambda] = Render{Text: Placeholder, Color: ColorBlack}
		out[b.afr] = Render{Text: Placeholder, Color: ColorBlack}
		return false
	}

	out[b.label] = Render{Text: b.labelText, Color: ColorBlack}

	lambda := Clamp(b.lambdaValue, KindLambda)
	tier := ClassifyLambda(lambda)
	out[b.lambda] = Render{Text: FormatLambda(lambda, prefs.DecimalPlaces), Color: TierColor(tier), Tier: tier}

	afr := Clamp(b.afrValue, KindAFR)
	out[b.afr] = Render{Text: FormatAFR(afr), Color: ColorBlack}

	return tier == TierCritical && prefs.BlinkingEnabled && !Saturated(lambda)
}

// FormatLambda formats a lambda value with the given number of fractional digits.
func FormatLambda(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64) + " λ"
}

// FormatAFR formats an air-fuel ratio with two fractional digits.
func FormatAFR(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + " AFR"
}

// FormatTemperature formats a temperature as whole degrees Celsius.
func FormatTemperature(v float64) string {
	return fmt.Sprintf("%.0f °C", v)
}
