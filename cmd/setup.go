package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/finproj/internal/config"
	"github.com/theirongolddev/finproj/internal/tui"
	"github.com/theirongolddev/finproj/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive wizard for default assumptions",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	vals := tui.ValuesFromScenario(cfg.Defaults)
	if err := tui.NewScenarioForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	sc, tierErrs, err := vals.Scenario()
	if err != nil {
		return err
	}
	for _, e := range tierErrs {
		notice("Skipping tier: %v", e)
	}

	themeName := cfg.General.Theme
	opts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		opts = append(opts, huh.NewOption(t.Name, t.Name))
	}
	themeForm := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Color theme").
			Options(opts...).
			Value(&themeName),
	)).WithTheme(huh.ThemeBase16())
	if err := themeForm.Run(); err != nil && !errors.Is(err, huh.ErrUserAborted) {
		return fmt.Errorf("theme form: %w", err)
	}

	cfg.Defaults = sc
	cfg.General.Theme = themeName
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `finproj` to project, or `finproj tui` to explore.")
	fmt.Println()
	return nil
}
