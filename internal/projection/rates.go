// Package projection simulates month-by-month user and revenue trajectories.
package projection

import (
	"math"

	"github.com/theirongolddev/finproj/internal/model"
)

// ComputeEffectiveArpu returns the blended monthly revenue per user across
// all valid tiers. Invalid tiers are skipped; an empty list yields 0.
func ComputeEffectiveArpu(tiers []model.PricingTier) float64 {
	arpu, _ := BlendTiers(tiers)
	return arpu
}

// BlendTiers computes the blended ARPU and reports how many tiers were
// excluded for out-of-range fields.
func BlendTiers(tiers []model.PricingTier) (arpu float64, skipped int) {
	for _, t := range tiers {
		if !t.Valid() {
			skipped++
			continue
		}
		arpu += t.Contribution()
	}
	return arpu, skipped
}

// maxUsers is 2^63, the first whole number past the int64 range.
const maxUsers = 1 << 63

// ComputeDelta resolves a rate into a whole-user delta for one month.
// Percentage rates apply to current; absolute rates ignore it. Both truncate
// toward zero. Deltas outside the int64 range saturate.
func ComputeDelta(current int64, rate model.RateSpec) int64 {
	d, _ := checkedDelta(current, rate)
	return d
}

// checkedDelta is ComputeDelta that reports whether the delta fit in an
// int64. On overflow the saturated bound is returned with false.
func checkedDelta(current int64, rate model.RateSpec) (int64, bool) {
	var v float64
	if rate.Mode == model.Absolute {
		v = math.Trunc(rate.Value)
	} else {
		v = math.Trunc(float64(current) * rate.Value / 100)
	}
	switch {
	case math.IsNaN(v):
		return 0, false
	case v >= maxUsers:
		return math.MaxInt64, false
	case v < -maxUsers:
		return math.MinInt64, false
	}
	return int64(v), true
}

func addUsers(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

func subUsers(a, b int64) (int64, bool) {
	d := a - b
	if (b > 0 && d > a) || (b < 0 && d < a) {
		return 0, false
	}
	return d, true
}
