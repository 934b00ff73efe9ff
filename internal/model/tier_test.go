package model

import (
	"math"
	"testing"
)

func TestParseCadence(t *testing.T) {
	tests := map[string]Cadence{
		"single":   SingleUse,
		"One-Time": SingleUse,
		"month":    Monthly,
		"monthly":  Monthly,
		" year ":   Yearly,
		"annual":   Yearly,
	}
	for in, want := range tests {
		got, ok := ParseCadence(in)
		if !ok || got != want {
			t.Errorf("ParseCadence(%q) = %v, %v; want %v, true", in, got, ok, want)
		}
	}
	if _, ok := ParseCadence("weekly"); ok {
		t.Error("ParseCadence(weekly) accepted an unknown cadence")
	}
}

func TestCadenceText(t *testing.T) {
	for _, c := range []Cadence{SingleUse, Monthly, Yearly} {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", c, err)
		}
		var back Cadence
		if err := back.UnmarshalText(text); err != nil || back != c {
			t.Fatalf("UnmarshalText(%q) = %v, %v; want %v", text, back, err, c)
		}
	}
	if _, err := Cadence(42).MarshalText(); err == nil {
		t.Fatal("MarshalText accepted unknown cadence")
	}
}

func TestPricingTier_MonthlyEquivalent(t *testing.T) {
	tests := []struct {
		tier PricingTier
		want float64
	}{
		{PricingTier{Price: 120, Cadence: Yearly}, 10},
		{PricingTier{Price: 9.5, Cadence: Monthly}, 9.5},
		{PricingTier{Price: 100, Cadence: SingleUse, Uses: 5}, 20},
		{PricingTier{Price: 100, Cadence: SingleUse, Uses: 0}, 100},
		{PricingTier{Price: 30, Cadence: Monthly, Uses: 3}, 30},
	}
	for _, tt := range tests {
		if got := tt.tier.MonthlyEquivalent(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("MonthlyEquivalent(%+v) = %v, want %v", tt.tier, got, tt.want)
		}
	}
}

func TestPricingTier_Valid(t *testing.T) {
	valid := []PricingTier{
		{Price: 0, AdoptionFraction: 0, Cadence: Monthly},
		{Price: 10, AdoptionFraction: 1, Cadence: Yearly},
		{Price: 10, AdoptionFraction: 0.5, Cadence: SingleUse, Uses: 1},
		{Price: 10, AdoptionFraction: 0.5, Cadence: Monthly, Uses: 0},
	}
	for _, tier := range valid {
		if !tier.Valid() {
			t.Errorf("Valid(%+v) = false, want true", tier)
		}
	}

	invalid := []PricingTier{
		{Price: -0.01, AdoptionFraction: 0.5, Cadence: Monthly},
		{Price: math.Inf(1), AdoptionFraction: 0.5, Cadence: Monthly},
		{Price: 10, AdoptionFraction: 1.5, Cadence: Monthly},
		{Price: 10, AdoptionFraction: math.NaN(), Cadence: Monthly},
		{Price: 10, AdoptionFraction: 0.5, Cadence: SingleUse, Uses: 0},
		{Price: 10, AdoptionFraction: 0.5, Cadence: Cadence(-1)},
	}
	for _, tier := range invalid {
		if tier.Valid() {
			t.Errorf("Valid(%+v) = true, want false", tier)
		}
	}
}

func TestParseRateMode(t *testing.T) {
	for in, want := range map[string]RateMode{"percentage": Percentage, "%": Percentage, "ABS": Absolute, "absolute": Absolute} {
		got, ok := ParseRateMode(in)
		if !ok || got != want {
			t.Errorf("ParseRateMode(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseRateMode("log"); ok {
		t.Error("ParseRateMode(log) accepted an unknown mode")
	}
}

func TestRateSpecString(t *testing.T) {
	if got := (RateSpec{Value: 8, Mode: Percentage}).String(); got != "8%" {
		t.Errorf("String() = %q, want 8%%", got)
	}
	if got := (RateSpec{Value: 25, Mode: Absolute}).String(); got != "25/mo" {
		t.Errorf("String() = %q, want 25/mo", got)
	}
}
