package display

import (
	"math"
	"testing"
)

func TestClampLambda(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.0, MinShownLambda},
		{-3, MinShownLambda},
		{0.55, 0.55},
		{0.95, 0.95},
		{1.5, 1.5},
		{1.51, MaxShownLambda},
		{42, MaxShownLambda},
		{math.Inf(1), MaxShownLambda},
		{math.Inf(-1), MinShownLambda},
		{math.NaN(), MinShownLambda},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in, KindLambda); got != tt.want {
			t.Errorf("Clamp(%v, lambda): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClampAFR(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, MinShownAFR},
		{8.09, 8.09},
		{14.7, 14.7},
		{21.0, 21.0},
		{30, MaxShownAFR},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in, KindAFR); got != tt.want {
			t.Errorf("Clamp(%v, afr): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClampAlwaysInBand(t *testing.T) {
	for v := -5.0; v <= 30; v += 0.037 {
		l := Clamp(v, KindLambda)
		if l < MinShownLambda || l > MaxShownLambda {
			t.Fatalf("lambda Clamp(%v) = %v out of band", v, l)
		}
		if v >= MinShownLambda && v <= MaxShownLambda && l != v {
			t.Fatalf("lambda Clamp(%v) = %v, in-range value changed", v, l)
		}
		a := Clamp(v, KindAFR)
		if a < MinShownAFR || a > MaxShownAFR {
			t.Fatalf("afr Clamp(%v) = %v out of band", v, a)
		}
	}
}

func TestClassifyLambda(t *testing.T) {
	tests := []struct {
		v    float64
		want Tier
	}{
		{0.55, TierCritical},
		{0.80, TierCritical},
		{0.81, TierWarning},
		{0.86, TierWarning},
		{0.87, TierNormal},
		{1.00, TierNormal},
		{1.11, TierNormal},
		{1.12, TierWarning},
		{1.19, TierWarning},
		{1.20, TierCritical},
		{1.50, TierCritical},
	}
	for _, tt := range tests {
		if got := ClassifyLambda(tt.v); got != tt.want {
			t.Errorf("ClassifyLambda(%v): got %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestClassifyTemperature(t *testing.T) {
	tests := []struct {
		v    float64
		want Tier
	}{
		{-20, TierNormal},
		{20, TierNormal},
		{599, TierNormal},
		{600, TierWarning},
		{849.9, TierWarning},
		{850, TierCritical},
		{1200, TierCritical},
	}
	for _, tt := range tests {
		if got := ClassifyTemperature(tt.v); got != tt.want {
			t.Errorf("ClassifyTemperature(%v): got %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestClassifyVoltageFault(t *testing.T) {
	tests := []struct {
		v    float64
		want Fault
	}{
		{0, FaultError},
		{0.10, FaultError},
		{-0.15, FaultError},
		{0.15, FaultError},
		{0.18, FaultWarmUp},
		{-0.20, FaultWarmUp},
		{0.21, FaultNone},
		{3.3, FaultNone},
	}
	for _, tt := range tests {
		if got := ClassifyVoltageFault(tt.v); got != tt.want {
			t.Errorf("ClassifyVoltageFault(%v): got %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestSaturated(t *testing.T) {
	if !Saturated(MaxShownLambda) {
		t.Error("ceiling should be saturated")
	}
	if !Saturated(MinShownLambda) {
		t.Error("floor should be saturated")
	}
	if Saturated(1.25) {
		t.Error("1.25 should not be saturated")
	}
}

func TestTierColor(t *testing.T) {
	if TierColor(TierNormal) != ColorBlack {
		t.Errorf("normal: got %s", TierColor(TierNormal))
	}
	if TierColor(TierWarning) != ColorOrange {
		t.Errorf("warning: got %s", TierColor(TierWarning))
	}
	if TierColor(TierCritical) != ColorRed {
		t.Errorf("critical: got %s", TierColor(TierCritical))
	}
}
