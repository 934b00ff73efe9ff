package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/finproj/internal/config"
	"github.com/theirongolddev/finproj/internal/logging"
	"github.com/theirongolddev/finproj/internal/model"
	"github.com/theirongolddev/finproj/internal/projection"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNoTiers = errors.New("add at least one payment tier (--tier price:adoption_pct[:cadence[:uses]])")

var (
	flagConfig        string
	flagScenario      string
	flagStartingUsers int64
	flagMonths        int
	flagGrowth        float64
	flagGrowthMode    string
	flagChurn         float64
	flagChurnMode     string
	flagTiers         []string
	flagVerbose       bool
	flagQuiet         bool
)

var rootCmd = &cobra.Command{
	Use:   "finproj",
	Short: "User growth and revenue projections",
	Long: "Project users and monthly revenue from a starting user base, growth and churn\n" +
		"rates and a set of payment tiers.",
	RunE:          runProject,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default $XDG_CONFIG_HOME/finproj/config.toml)")
	pf.StringVarP(&flagScenario, "scenario", "s", "", "Scenario TOML file layered over config defaults")
	pf.Int64VarP(&flagStartingUsers, "starting-users", "u", 0, "Users at month 0")
	pf.IntVarP(&flagMonths, "months", "n", 0, "Months to project")
	pf.Float64VarP(&flagGrowth, "growth", "g", 0, "Monthly growth rate")
	pf.StringVar(&flagGrowthMode, "growth-mode", "", "Growth mode: percentage or absolute")
	pf.Float64VarP(&flagChurn, "churn", "c", 0, "Monthly churn rate")
	pf.StringVar(&flagChurnMode, "churn-mode", "", "Churn mode: percentage or absolute")
	pf.StringArrayVarP(&flagTiers, "tier", "t", nil, "Payment tier price:adoption_pct[:cadence[:uses]] (repeatable)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging to stderr")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress notices")
}

// loadConfig reads the config file and FINPROJ_* environment overrides.
func loadConfig() (config.Config, error) {
	if flagConfig != "" {
		config.SetPath(flagConfig)
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// resolveScenario layers config defaults, the scenario file and flags, in
// that order.
func resolveScenario(cmd *cobra.Command, cfg config.Config) (config.Scenario, error) {
	sc := cfg.Defaults
	if flagScenario != "" {
		var err error
		sc, err = config.LoadScenario(flagScenario, sc)
		if err != nil {
			return sc, err
		}
	}

	f := cmd.Flags()
	if f.Changed("starting-users") {
		sc.StartingUsers = flagStartingUsers
	}
	if f.Changed("months") {
		sc.Months = flagMonths
	}
	if f.Changed("growth") {
		sc.Growth = flagGrowth
	}
	if f.Changed("growth-mode") {
		sc.GrowthMode = flagGrowthMode
	}
	if f.Changed("churn") {
		sc.Churn = flagChurn
	}
	if f.Changed("churn-mode") {
		sc.ChurnMode = flagChurnMode
	}
	if len(flagTiers) > 0 {
		entries, errs := config.ParseTierSpecs(flagTiers)
		for _, err := range errs {
			notice("Skipping tier: %v", err)
		}
		sc.Tiers = entries
	}
	return sc, nil
}

// projectionInput converts a scenario into engine input and refuses to run
// without at least one usable tier.
func projectionInput(sc config.Scenario) (model.ProjectionConfig, error) {
	input, dropped, err := sc.ProjectionConfig()
	if err != nil {
		return input, err
	}
	if dropped > 0 {
		notice("Skipped %d tier(s) with an unknown cadence", dropped)
	}

	_, skipped := projection.BlendTiers(input.Tiers)
	if skipped > 0 {
		notice("Skipped %d tier(s) with out-of-range price, adoption or uses", skipped)
	}
	if len(input.Tiers)-skipped == 0 {
		return input, errNoTiers
	}
	return input, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	lc := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"}
	if flagVerbose {
		lc.Level = "debug"
	}
	return logging.New(lc)
}

func notice(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
