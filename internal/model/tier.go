// Package model defines domain types for finproj projections and pricing.
package model

import (
	"fmt"
	"math"
	"strings"
)

// MonthsPerYear converts yearly prices to a monthly equivalent.
const MonthsPerYear = 12

// Cadence is the billing frequency of a pricing tier.
type Cadence int

const (
	// SingleUse is a one-time payment amortized over Uses months.
	SingleUse Cadence = iota
	// Monthly is billed every month.
	Monthly
	// Yearly is billed once a year.
	Yearly
)

// String returns the canonical text form of the cadence.
func (c Cadence) String() string {
	switch c {
	case SingleUse:
		return "single"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	default:
		return fmt.Sprintf("cadence(%d)", int(c))
	}
}

// Known reports whether c is one of the defined cadences.
func (c Cadence) Known() bool {
	return c == SingleUse || c == Monthly || c == Yearly
}

// ParseCadence maps user-facing cadence names to a Cadence.
// e.g., "single", "one-time" -> SingleUse; "month" -> Monthly; "annual" -> Yearly
func ParseCadence(s string) (Cadence, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "single-use", "single_use", "one-time", "onetime":
		return SingleUse, true
	case "month", "monthly":
		return Monthly, true
	case "year", "yearly", "annual", "annually":
		return Yearly, true
	}
	return SingleUse, false
}

// MarshalText implements encoding.TextMarshaler.
func (c Cadence) MarshalText() ([]byte, error) {
	if !c.Known() {
		return nil, fmt.Errorf("unknown cadence %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cadence) UnmarshalText(text []byte) error {
	parsed, ok := ParseCadence(string(text))
	if !ok {
		return fmt.Errorf("unknown cadence %q", string(text))
	}
	*c = parsed
	return nil
}

// PricingTier is one monetization unit contributing to the blended ARPU.
type PricingTier struct {
	Price            float64 `json:"price"`
	AdoptionFraction float64 `json:"adoption_fraction"` // 0-1 share of the user base
	Cadence          Cadence `json:"cadence"`
	Uses             int     `json:"uses,omitempty"` // SingleUse only
}

// Valid reports whether the tier may take part in the ARPU blend.
func (t PricingTier) Valid() bool {
	if math.IsNaN(t.Price) || math.IsInf(t.Price, 0) || t.Price < 0 {
		return false
	}
	if math.IsNaN(t.AdoptionFraction) || t.AdoptionFraction < 0 || t.AdoptionFraction > 1 {
		return false
	}
	if !t.Cadence.Known() {
		return false
	}
	if t.Cadence == SingleUse && t.Uses < 1 {
		return false
	}
	return true
}

// MonthlyEquivalent converts the tier price to a per-month amount.
func (t PricingTier) MonthlyEquivalent() float64 {
	switch t.Cadence {
	case Yearly:
		return t.Price / MonthsPerYear
	case SingleUse:
		return t.Price / float64(max(t.Uses, 1))
	default:
		return t.Price
	}
}

// Contribution is the tier's share of the blended ARPU.
func (t PricingTier) Contribution() float64 {
	return t.MonthlyEquivalent() * t.AdoptionFraction
}
