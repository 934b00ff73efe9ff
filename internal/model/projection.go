package model

import (
	"fmt"
	"strings"
)

// RateMode selects how a growth or churn rate is applied each month.
type RateMode int

const (
	// Percentage applies Value as a percent of the current user base (8 means 8%).
	Percentage RateMode = iota
	// Absolute applies Value as a fixed head-count per month.
	Absolute
)

// String returns the canonical text form of the mode.
func (m RateMode) String() string {
	switch m {
	case Percentage:
		return "percentage"
	case Absolute:
		return "absolute"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Known reports whether m is a defined mode.
func (m RateMode) Known() bool {
	return m == Percentage || m == Absolute
}

// ParseRateMode maps user-facing mode names to a RateMode.
func ParseRateMode(s string) (RateMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percentage", "percent", "pct", "%":
		return Percentage, true
	case "absolute", "abs", "count":
		return Absolute, true
	}
	return Percentage, false
}

// MarshalText implements encoding.TextMarshaler.
func (m RateMode) MarshalText() ([]byte, error) {
	if !m.Known() {
		return nil, fmt.Errorf("unknown rate mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RateMode) UnmarshalText(text []byte) error {
	parsed, ok := ParseRateMode(string(text))
	if !ok {
		return fmt.Errorf("unknown rate mode %q", string(text))
	}
	*m = parsed
	return nil
}

// RateSpec is a growth or churn assumption.
type RateSpec struct {
	Value float64  `json:"value"`
	Mode  RateMode `json:"mode"`
}

// String renders the rate the way users enter it, e.g. "8%" or "25/mo".
func (r RateSpec) String() string {
	if r.Mode == Absolute {
		return fmt.Sprintf("%g/mo", r.Value)
	}
	return fmt.Sprintf("%g%%", r.Value)
}

// ProjectionConfig holds the fixed parameters of one projection run.
type ProjectionConfig struct {
	StartingUsers int64         `json:"starting_users"`
	Growth        RateSpec      `json:"growth"`
	Churn         RateSpec      `json:"churn"`
	Months        int           `json:"months"`
	Tiers         []PricingTier `json:"tiers"`
}

// Clone returns a deep copy so a running engine never shares the tier slice.
func (c ProjectionConfig) Clone() ProjectionConfig {
	out := c
	if c.Tiers != nil {
		out.Tiers = make([]PricingTier, len(c.Tiers))
		copy(out.Tiers, c.Tiers)
	}
	return out
}

// ProjectionRecord is one month of simulation output.
type ProjectionRecord struct {
	Month   int     `json:"month"`
	Users   int64   `json:"users"`
	Revenue float64 `json:"revenue"`
}

// ProjectionResult is the ordered output of a run, indexed by month.
type ProjectionResult struct {
	EffectiveARPU float64            `json:"effective_arpu"`
	Records       []ProjectionRecord `json:"records"`
}

// Final returns the last record, or a zero record for an empty result.
func (r ProjectionResult) Final() ProjectionRecord {
	if len(r.Records) == 0 {
		return ProjectionRecord{}
	}
	return r.Records[len(r.Records)-1]
}

// Users returns the user series as float64 values for charting.
func (r ProjectionResult) Users() []float64 {
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		out[i] = float64(rec.Users)
	}
	return out
}

// Revenue returns the revenue series.
func (r ProjectionResult) Revenue() []float64 {
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Revenue
	}
	return out
}

// ProjectionSummary holds derived totals for a finished run.
type ProjectionSummary struct {
	StartUsers        int64   `json:"start_users"`
	FinalUsers        int64   `json:"final_users"`
	NetUserChange     int64   `json:"net_user_change"`
	PeakUsers         int64   `json:"peak_users"`
	PeakMonth         int     `json:"peak_month"`
	FinalMRR          float64 `json:"final_mrr"`
	CumulativeRevenue float64 `json:"cumulative_revenue"`
	// FirstNonPositiveMonth is -1 when users never reach zero.
	FirstNonPositiveMonth int `json:"first_non_positive_month"`
}
