package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/finproj/internal/model"
)

var (
	// ErrInvalidTierSpec is returned for tier strings that don't parse.
	ErrInvalidTierSpec = errors.New("invalid tier spec")
	// ErrUnknownCadence is returned for cadence names ParseCadence rejects.
	ErrUnknownCadence = errors.New("unknown cadence")
	// ErrUnknownRateMode is returned for rate modes ParseRateMode rejects.
	ErrUnknownRateMode = errors.New("unknown rate mode")
)

// Scenario is the text-facing form of a projection: rates as entered by a
// person and tier adoption as a percentage.
type Scenario struct {
	StartingUsers int64       `toml:"starting_users"`
	Months        int         `toml:"months"`
	Growth        float64     `toml:"growth"`
	GrowthMode    string      `toml:"growth_mode"`
	Churn         float64     `toml:"churn"`
	ChurnMode     string      `toml:"churn_mode"`
	Tiers         []TierEntry `toml:"tiers,omitempty"`
}

// TierEntry is one pricing tier row.
type TierEntry struct {
	Price       float64 `toml:"price"`
	AdoptionPct float64 `toml:"adoption_pct"`
	Cadence     string  `toml:"cadence"`
	Uses        int     `toml:"uses,omitempty"`
}

// DefaultScenario returns the starting assumptions of a new scenario.
func DefaultScenario() Scenario {
	return Scenario{
		StartingUsers: 50,
		Months:        60,
		Growth:        8,
		GrowthMode:    model.Percentage.String(),
		Churn:         2,
		ChurnMode:     model.Percentage.String(),
	}
}

// LoadScenario reads a scenario TOML file on top of base. Fields missing
// from the file keep base's values.
func LoadScenario(path string, base Scenario) (Scenario, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return base, fmt.Errorf("reading scenario: %w", err)
	}

	// Decode tiers into a fresh slice so file rows never inherit base fields.
	sc := base
	sc.Tiers = nil
	md, err := toml.Decode(string(data), &sc)
	if err != nil {
		return base, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if !md.IsDefined("tiers") {
		sc.Tiers = base.Tiers
	}
	return sc, nil
}

// Tier converts the entry into a model tier. Only an unknown cadence is an
// error here; range checks happen in the ARPU blend.
func (e TierEntry) Tier() (model.PricingTier, error) {
	cadenceName := e.Cadence
	if strings.TrimSpace(cadenceName) == "" {
		cadenceName = model.SingleUse.String()
	}
	cadence, ok := model.ParseCadence(cadenceName)
	if !ok {
		return model.PricingTier{}, fmt.Errorf("%w: %q", ErrUnknownCadence, e.Cadence)
	}

	uses := e.Uses
	if uses == 0 || cadence != model.SingleUse {
		uses = 1
	}

	return model.PricingTier{
		Price:            e.Price,
		AdoptionFraction: e.AdoptionPct / 100,
		Cadence:          cadence,
		Uses:             uses,
	}, nil
}

// EntryFromTier converts a model tier back to its text-facing form.
func EntryFromTier(t model.PricingTier) TierEntry {
	e := TierEntry{
		Price:       t.Price,
		AdoptionPct: t.AdoptionFraction * 100,
		Cadence:     t.Cadence.String(),
	}
	if t.Cadence == model.SingleUse {
		e.Uses = t.Uses
	}
	return e
}

// ProjectionConfig converts the scenario into engine input. Tier rows that
// fail to convert are dropped and counted.
func (s Scenario) ProjectionConfig() (model.ProjectionConfig, int, error) {
	growth, err := parseRate("growth", s.Growth, s.GrowthMode)
	if err != nil {
		return model.ProjectionConfig{}, 0, err
	}
	churn, err := parseRate("churn", s.Churn, s.ChurnMode)
	if err != nil {
		return model.ProjectionConfig{}, 0, err
	}

	cfg := model.ProjectionConfig{
		StartingUsers: s.StartingUsers,
		Growth:        growth,
		Churn:         churn,
		Months:        s.Months,
		Tiers:         make([]model.PricingTier, 0, len(s.Tiers)),
	}

	dropped := 0
	for _, e := range s.Tiers {
		t, err := e.Tier()
		if err != nil {
			dropped++
			continue
		}
		cfg.Tiers = append(cfg.Tiers, t)
	}
	return cfg, dropped, nil
}

func parseRate(name string, value float64, mode string) (model.RateSpec, error) {
	if strings.TrimSpace(mode) == "" {
		return model.RateSpec{Value: value, Mode: model.Percentage}, nil
	}
	m, ok := model.ParseRateMode(mode)
	if !ok {
		return model.RateSpec{}, fmt.Errorf("%w for %s: %q", ErrUnknownRateMode, name, mode)
	}
	return model.RateSpec{Value: value, Mode: m}, nil
}

// ParseTierSpec parses "price:adoption_pct[:cadence[:uses]]".
// e.g., "9.99:40:monthly", "100:10:single:5", "49:25" (single, 1 use)
func ParseTierSpec(spec string) (TierEntry, error) {
	parts := strings.Split(strings.TrimSpace(spec), ":")
	if len(parts) < 2 || len(parts) > 4 {
		return TierEntry{}, fmt.Errorf("%w: %q (want price:adoption_pct[:cadence[:uses]])", ErrInvalidTierSpec, spec)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return TierEntry{}, fmt.Errorf("%w: price %q", ErrInvalidTierSpec, parts[0])
	}
	adoption, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(parts[1]), "%"), 64)
	if err != nil {
		return TierEntry{}, fmt.Errorf("%w: adoption %q", ErrInvalidTierSpec, parts[1])
	}

	e := TierEntry{Price: price, AdoptionPct: adoption, Cadence: model.SingleUse.String()}
	if len(parts) >= 3 {
		c, ok := model.ParseCadence(parts[2])
		if !ok {
			return TierEntry{}, fmt.Errorf("%w: %q", ErrUnknownCadence, parts[2])
		}
		e.Cadence = c.String()
	}
	if len(parts) == 4 {
		uses, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil {
			return TierEntry{}, fmt.Errorf("%w: uses %q", ErrInvalidTierSpec, parts[3])
		}
		e.Uses = uses
	}
	return e, nil
}

// ParseTierSpecs parses a list of tier strings, skipping blank lines. Rows
// that fail are returned as errors alongside the entries that parsed.
func ParseTierSpecs(specs []string) ([]TierEntry, []error) {
	var (
		entries []TierEntry
		errs    []error
	)
	for _, s := range specs {
		if strings.TrimSpace(s) == "" {
			continue
		}
		e, err := ParseTierSpec(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, errs
}

// FormatTierSpec is the inverse of ParseTierSpec.
func FormatTierSpec(e TierEntry) string {
	s := strconv.FormatFloat(e.Price, 'f', -1, 64) + ":" +
		strconv.FormatFloat(e.AdoptionPct, 'f', -1, 64) + ":" + e.Cadence
	if c, ok := model.ParseCadence(e.Cadence); ok && c == model.SingleUse && e.Uses > 1 {
		s += ":" + strconv.Itoa(e.Uses)
	}
	return s
}
