// Package cmd implements the finproj CLI commands.
package cmd

import (
	"fmt"

	"github.com/theirongolddev/finproj/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Fprintln(w, "  Status: loaded")
	} else {
		fmt.Fprintln(w, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [General]")
	fmt.Fprintf(w, "    Theme:       %s\n", cfg.General.Theme)
	fmt.Fprintf(w, "    Table every: %d month(s)\n", cfg.General.TableEvery)
	fmt.Fprintln(w)

	d := cfg.Defaults
	fmt.Fprintln(w, "  [Defaults]")
	fmt.Fprintf(w, "    Starting users: %d\n", d.StartingUsers)
	fmt.Fprintf(w, "    Months:         %d\n", d.Months)
	fmt.Fprintf(w, "    Growth:         %v (%s)\n", d.Growth, d.GrowthMode)
	fmt.Fprintf(w, "    Churn:          %v (%s)\n", d.Churn, d.ChurnMode)
	if len(d.Tiers) == 0 {
		fmt.Fprintln(w, "    Tiers:          none")
	}
	for _, t := range d.Tiers {
		fmt.Fprintf(w, "    Tier:           %s\n", config.FormatTierSpec(t))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Export]")
	fmt.Fprintf(w, "    Format: %s\n", cfg.Export.Format)
	if cfg.Export.Dir != "" {
		fmt.Fprintf(w, "    Dir:    %s\n", cfg.Export.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Server]")
	fmt.Fprintf(w, "    Addr:         %s\n", cfg.Server.Addr)
	fmt.Fprintf(w, "    Max months:   %d\n", cfg.Server.MaxMonths)
	fmt.Fprintf(w, "    Read timeout: %ds\n", cfg.Server.ReadTimeoutSec)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Log]")
	fmt.Fprintf(w, "    Level:  %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "    Format: %s\n", cfg.Log.Format)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Run `finproj setup` to reconfigure.")
	return nil
}
