package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/finproj/internal/config"

	"github.com/charmbracelet/huh"
)

// ErrNoTiers is returned when a scenario has no usable payment tier.
var ErrNoTiers = errors.New("add at least one payment tier")

// ScenarioValues holds the form fields as text, the way huh edits them.
type ScenarioValues struct {
	StartingUsers string
	Months        string
	Growth        string
	GrowthMode    string
	Churn         string
	ChurnMode     string
	Tiers         string // one price:adoption_pct[:cadence[:uses]] per line
}

// ValuesFromScenario fills form fields from a scenario.
func ValuesFromScenario(sc config.Scenario) ScenarioValues {
	lines := make([]string, len(sc.Tiers))
	for i, e := range sc.Tiers {
		lines[i] = config.FormatTierSpec(e)
	}
	return ScenarioValues{
		StartingUsers: strconv.FormatInt(sc.StartingUsers, 10),
		Months:        strconv.Itoa(sc.Months),
		Growth:        strconv.FormatFloat(sc.Growth, 'f', -1, 64),
		GrowthMode:    modeOrDefault(sc.GrowthMode),
		Churn:         strconv.FormatFloat(sc.Churn, 'f', -1, 64),
		ChurnMode:     modeOrDefault(sc.ChurnMode),
		Tiers:         strings.Join(lines, "\n"),
	}
}

func modeOrDefault(m string) string {
	if m == "" {
		return "percentage"
	}
	return m
}

// Scenario parses the fields. Tier lines that fail to parse are skipped
// and returned as errors; at least one tier must parse.
func (v ScenarioValues) Scenario() (config.Scenario, []error, error) {
	users, err := strconv.ParseInt(strings.TrimSpace(v.StartingUsers), 10, 64)
	if err != nil {
		return config.Scenario{}, nil, fmt.Errorf("starting users: %w", err)
	}
	months, err := strconv.Atoi(strings.TrimSpace(v.Months))
	if err != nil {
		return config.Scenario{}, nil, fmt.Errorf("months: %w", err)
	}
	growth, err := strconv.ParseFloat(strings.TrimSpace(v.Growth), 64)
	if err != nil {
		return config.Scenario{}, nil, fmt.Errorf("growth: %w", err)
	}
	churn, err := strconv.ParseFloat(strings.TrimSpace(v.Churn), 64)
	if err != nil {
		return config.Scenario{}, nil, fmt.Errorf("churn: %w", err)
	}

	entries, tierErrs := config.ParseTierSpecs(strings.Split(v.Tiers, "\n"))
	if len(entries) == 0 {
		return config.Scenario{}, tierErrs, ErrNoTiers
	}

	return config.Scenario{
		StartingUsers: users,
		Months:        months,
		Growth:        growth,
		GrowthMode:    v.GrowthMode,
		Churn:         churn,
		ChurnMode:     v.ChurnMode,
		Tiers:         entries,
	}, tierErrs, nil
}

func validateInt(minVal int64) func(string) error {
	return func(s string) error {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return errors.New("enter a whole number")
		}
		if n < minVal {
			return fmt.Errorf("must be at least %d", minVal)
		}
		return nil
	}
}

func validateRate(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("enter a number")
	}
	if f < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func validateTiers(s string) error {
	entries, _ := config.ParseTierSpecs(strings.Split(s, "\n"))
	if len(entries) == 0 {
		return ErrNoTiers
	}
	return nil
}

func modeOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Percentage of users", "percentage"),
		huh.NewOption("Absolute users / month", "absolute"),
	}
}

// NewScenarioForm builds the huh form that edits v in place.
func NewScenarioForm(v *ScenarioValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("finproj scenario").
				Description("Starting position and monthly growth assumptions."),
			huh.NewInput().
				Title("Starting users").
				Value(&v.StartingUsers).
				Validate(validateInt(0)),
			huh.NewInput().
				Title("Months to project").
				Value(&v.Months).
				Validate(validateInt(1)),
			huh.NewInput().
				Title("Growth").
				Value(&v.Growth).
				Validate(validateRate),
			huh.NewSelect[string]().
				Title("Growth mode").
				Options(modeOptions()...).
				Value(&v.GrowthMode),
			huh.NewInput().
				Title("Churn").
				Value(&v.Churn).
				Validate(validateRate),
			huh.NewSelect[string]().
				Title("Churn mode").
				Options(modeOptions()...).
				Value(&v.ChurnMode),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Payment tiers").
				Description("One per line: price:adoption%:cadence[:uses]\ne.g. 9.99:40:monthly, 120:10:yearly, 100:5:single:5").
				Lines(6).
				Value(&v.Tiers).
				Validate(validateTiers),
		),
	).WithTheme(huh.ThemeBase16())
}
