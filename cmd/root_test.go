package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/finproj/internal/config"
	"github.com/theirongolddev/finproj/internal/export"
	"github.com/theirongolddev/finproj/internal/model"
	"github.com/theirongolddev/finproj/internal/projection"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores the package flag state between tests that run the
// command tree in-process.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		flagConfig, flagScenario = "", ""
		flagStartingUsers, flagMonths = 0, 0
		flagGrowth, flagChurn = 0, 0
		flagGrowthMode, flagChurnMode = "", ""
		flagTiers = nil
		flagVerbose, flagQuiet = false, false
		flagEvery, flagFormat = 0, ""
		cmds := []*cobra.Command{rootCmd}
		cmds = append(cmds, rootCmd.Commands()...)
		for _, c := range cmds {
			c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
			c.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		}
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		config.SetPath("")
	})
}

func testCommand(t *testing.T) *cobra.Command {
	t.Helper()
	resetFlags(t)
	c := &cobra.Command{Use: "test"}
	c.Flags().AddFlagSet(rootCmd.PersistentFlags())
	return c
}

func TestResolveScenario_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.toml")
	body := "starting_users = 1000\nmonths = 24\n\n[[tiers]]\nprice = 5\nadoption_pct = 100\ncadence = \"monthly\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	c := testCommand(t)
	flagScenario = path
	if err := c.Flags().Set("months", "12"); err != nil {
		t.Fatal(err)
	}
	if err := c.Flags().Set("churn-mode", "absolute"); err != nil {
		t.Fatal(err)
	}

	sc, err := resolveScenario(c, config.DefaultConfig())
	if err != nil {
		t.Fatalf("resolveScenario: %v", err)
	}
	if sc.StartingUsers != 1000 {
		t.Fatalf("StartingUsers = %d, want 1000 from file", sc.StartingUsers)
	}
	if sc.Months != 12 || sc.ChurnMode != "absolute" {
		t.Fatalf("flags not applied: months=%d churn_mode=%q", sc.Months, sc.ChurnMode)
	}
	if sc.Growth != 8 {
		t.Fatalf("Growth = %v, want config default 8", sc.Growth)
	}
	if len(sc.Tiers) != 1 || sc.Tiers[0].Price != 5 {
		t.Fatalf("tiers = %+v", sc.Tiers)
	}
}

func TestResolveScenario_TierFlagsReplaceTiers(t *testing.T) {
	c := testCommand(t)
	flagQuiet = true
	for _, s := range []string{"10:50:monthly", "bogus", "120:50:yearly"} {
		if err := c.Flags().Set("tier", s); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Defaults.Tiers = []config.TierEntry{{Price: 1, AdoptionPct: 1, Cadence: "monthly"}}

	sc, err := resolveScenario(c, cfg)
	if err != nil {
		t.Fatalf("resolveScenario: %v", err)
	}
	if len(sc.Tiers) != 2 || sc.Tiers[1].Cadence != "yearly" {
		t.Fatalf("tiers = %+v, want the two parsable flag tiers", sc.Tiers)
	}
}

func TestProjectionInput_NoUsableTiers(t *testing.T) {
	resetFlags(t)
	flagQuiet = true

	sc := config.DefaultScenario()
	if _, err := projectionInput(sc); !errors.Is(err, errNoTiers) {
		t.Fatalf("err = %v, want errNoTiers", err)
	}

	sc.Tiers = []config.TierEntry{{Price: -1, AdoptionPct: 50, Cadence: "monthly"}}
	if _, err := projectionInput(sc); !errors.Is(err, errNoTiers) {
		t.Fatalf("invalid-only tiers: err = %v, want errNoTiers", err)
	}

	sc.Tiers = append(sc.Tiers, config.TierEntry{Price: 10, AdoptionPct: 100, Cadence: "monthly"})
	input, err := projectionInput(sc)
	if err != nil {
		t.Fatalf("projectionInput: %v", err)
	}
	if len(input.Tiers) != 2 {
		t.Fatalf("tiers = %d, want 2 (invalid kept for the engine to skip)", len(input.Tiers))
	}
}

func TestExportFormat(t *testing.T) {
	tests := []struct {
		path, flag, fallback string
		want                 export.Format
	}{
		{"out.csv", "json", "csv", export.JSON},
		{"out.db", "", "csv", export.SQLite},
		{"out.txt", "", "json", export.JSON},
		{"", "", "sqlite", export.SQLite},
	}
	for _, tt := range tests {
		got, err := exportFormat(tt.path, tt.flag, tt.fallback)
		if err != nil {
			t.Fatalf("exportFormat(%q, %q, %q): %v", tt.path, tt.flag, tt.fallback, err)
		}
		if got != tt.want {
			t.Errorf("exportFormat(%q, %q, %q) = %v, want %v", tt.path, tt.flag, tt.fallback, got, tt.want)
		}
	}
	if _, err := exportFormat("", "xml", "csv"); !errors.Is(err, export.ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestRootCommand_PrintsProjection(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(dir, "config.toml"),
		"-u", "50", "-n", "2", "-g", "8", "-c", "2",
		"-t", "10:100:monthly", "--quiet",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := out.String()
	for _, want := range []string{"PROJECTION", "Final users", "56", "$560.00", "$10.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestExportCommand_WritesCSV(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "run.csv")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"export", path,
		"--config", filepath.Join(dir, "config.toml"),
		"-u", "50", "-n", "2", "-t", "10:100:monthly", "--quiet",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	want := "Month,Users,Revenue\n0,50,500.00\n1,53,530.00\n2,56,560.00\n"
	if string(data) != want {
		t.Fatalf("csv = %q, want %q", data, want)
	}
	if !strings.Contains(out.String(), "Exported 3 months") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRenderProjection_ZeroUsersWarning(t *testing.T) {
	input := model.ProjectionConfig{
		StartingUsers: 0,
		Growth:        model.RateSpec{Value: 8, Mode: model.Percentage},
		Churn:         model.RateSpec{Value: 2, Mode: model.Percentage},
		Months:        3,
		Tiers:         []model.PricingTier{{Price: 10, AdoptionFraction: 1, Cadence: model.Monthly, Uses: 1}},
	}
	res, err := projection.Project(input)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	renderProjection(&out, input, res, projection.Summarize(res), 1)
	if !strings.Contains(out.String(), "Users reach zero or below at month 0.") {
		t.Fatalf("output missing zero-users warning:\n%s", out.String())
	}
}

func TestARPUCommand_ShowsTierSpecs(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"arpu",
		"--config", filepath.Join(dir, "config.toml"),
		"-t", "120:50:yearly", "-t", "10:50:monthly", "--quiet",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"120:50:yearly", "10:50:monthly", "$10.00"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRootCommand_UserOverflowIsAnError(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetErr(nil) })
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(dir, "config.toml"),
		"-u", "50", "-n", "70", "-g", "100", "-c", "0",
		"-t", "10:100:monthly", "--quiet",
	})
	if err := rootCmd.Execute(); !errors.Is(err, projection.ErrUserOverflow) {
		t.Fatalf("Execute err = %v, want ErrUserOverflow", err)
	}
}

func TestExportCommand_InfiniteARPUIsAnError(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "p.csv")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetErr(nil) })
	rootCmd.SetArgs([]string{
		"export", path,
		"--config", filepath.Join(dir, "config.toml"),
		"-n", "2", "-t", "1e308:100:monthly", "-t", "1e308:100:monthly", "--quiet",
	})
	if err := rootCmd.Execute(); !errors.Is(err, projection.ErrInvalidConfig) {
		t.Fatalf("Execute err = %v, want ErrInvalidConfig", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("export file written despite error: %v", err)
	}
}
