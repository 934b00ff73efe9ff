package cmd

import (
	"fmt"

	"github.com/theirongolddev/finproj/internal/config"
	"github.com/theirongolddev/finproj/internal/tui"
	"github.com/theirongolddev/finproj/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagSaveDefaults bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Explore a projection interactively",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagSaveDefaults, "save", false, "Save the final scenario as the config defaults on exit")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.General.Theme)

	sc, err := resolveScenario(cmd, cfg)
	if err != nil {
		return err
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	p := tea.NewProgram(tui.NewApp(cfg, sc), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if flagSaveDefaults {
		app, ok := final.(tui.App)
		if !ok {
			return nil
		}
		cfg.Defaults = app.Scenario()
		if err := config.Save(cfg); err != nil {
			return err
		}
		notice("Saved scenario to %s", config.ConfigPath())
	}
	return nil
}
