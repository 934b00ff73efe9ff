package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/finproj/internal/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

func newTestApp(t *testing.T) App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Export.Dir = t.TempDir()

	sc := config.DefaultScenario()
	sc.Tiers = []config.TierEntry{{Price: 10, AdoptionPct: 100, Cadence: "monthly"}}

	a := NewApp(cfg, sc)
	a.now = func() time.Time { return time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC) }
	return a
}

func press(a App, key string) (App, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

func TestNewApp_RunsProjection(t *testing.T) {
	a := newTestApp(t)
	if a.needSetup {
		t.Fatal("app with a valid tier should skip the form")
	}
	if len(a.result.Records) != 61 {
		t.Fatalf("records = %d, want 61", len(a.result.Records))
	}
	if a.result.EffectiveARPU != 10 {
		t.Fatalf("arpu = %v, want 10", a.result.EffectiveARPU)
	}
}

func TestNewApp_NoTiersOpensForm(t *testing.T) {
	a := NewApp(config.DefaultConfig(), config.DefaultScenario())
	if !a.needSetup || a.form == nil {
		t.Fatal("expected scenario form when no tiers are configured")
	}
}

func TestRecompute_ClearsDroppedTierNotice(t *testing.T) {
	sc := config.DefaultScenario()
	sc.Tiers = []config.TierEntry{
		{Price: 10, AdoptionPct: 100, Cadence: "monthly"},
		{Price: 5, AdoptionPct: 50, Cadence: "weekly"},
	}
	a := NewApp(config.DefaultConfig(), sc)
	if !strings.Contains(a.notice, "unknown cadence") {
		t.Fatalf("notice = %q, want dropped-tier notice", a.notice)
	}

	a.scenario.Tiers = a.scenario.Tiers[:1]
	a.recompute()
	if a.notice != "" {
		t.Fatalf("notice = %q after a clean recompute, want empty", a.notice)
	}
}

func TestRecompute_OverflowSurfacesError(t *testing.T) {
	a := newTestApp(t)
	a.scenario.Growth = 100
	a.scenario.Months = 70
	a.recompute()
	if a.err == nil || !strings.Contains(a.err.Error(), "out of range") {
		t.Fatalf("err = %v, want user count out of range", a.err)
	}
}

func TestNewApp_InvalidTiersOpenForm(t *testing.T) {
	sc := config.DefaultScenario()
	sc.Tiers = []config.TierEntry{{Price: 10, AdoptionPct: 150, Cadence: "monthly"}}
	a := NewApp(config.DefaultConfig(), sc)
	if !a.needSetup {
		t.Fatal("a tier with adoption over 100% should not count as usable")
	}
}

func TestGrowthKeys(t *testing.T) {
	a := newTestApp(t)
	before := a.summary.FinalUsers

	a, _ = press(a, "G")
	if a.scenario.Growth != 8.5 {
		t.Fatalf("growth = %v, want 8.5", a.scenario.Growth)
	}
	if a.summary.FinalUsers <= before {
		t.Fatalf("final users %d did not increase from %d", a.summary.FinalUsers, before)
	}

	for i := 0; i < 40; i++ {
		a, _ = press(a, "g")
	}
	if a.scenario.Growth != 0 {
		t.Fatalf("growth = %v, want clamp at 0", a.scenario.Growth)
	}
}

func TestChurnKeys_AbsoluteStep(t *testing.T) {
	a := newTestApp(t)
	a.scenario.ChurnMode = "absolute"
	a.scenario.Churn = 3

	a, _ = press(a, "C")
	if a.scenario.Churn != 4 {
		t.Fatalf("churn = %v, want 4", a.scenario.Churn)
	}
	a, _ = press(a, "c")
	a, _ = press(a, "c")
	if a.scenario.Churn != 2 {
		t.Fatalf("churn = %v, want 2", a.scenario.Churn)
	}
}

func TestHorizonKeys(t *testing.T) {
	a := newTestApp(t)

	a, _ = press(a, "M")
	if a.scenario.Months != 72 || len(a.result.Records) != 73 {
		t.Fatalf("months = %d, records = %d", a.scenario.Months, len(a.result.Records))
	}

	for i := 0; i < 10; i++ {
		a, _ = press(a, "m")
	}
	if a.scenario.Months != 1 || len(a.result.Records) != 2 {
		t.Fatalf("months = %d, records = %d; want floor of 1 month", a.scenario.Months, len(a.result.Records))
	}
}

func TestHorizonKeys_CappedByMaxMonths(t *testing.T) {
	a := newTestApp(t)
	a.cfg.Server.MaxMonths = 65

	a, _ = press(a, "M")
	if a.scenario.Months != 65 {
		t.Fatalf("months = %d, want cap 65", a.scenario.Months)
	}
}

func TestTabSwitching(t *testing.T) {
	a := newTestApp(t)

	a, _ = press(a, "2")
	if a.activeTab != 1 {
		t.Fatalf("activeTab = %d, want 1", a.activeTab)
	}
	a, _ = press(a, "tab")
	if a.activeTab != 0 {
		t.Fatalf("activeTab = %d, want wrap to 0", a.activeTab)
	}
	a, _ = press(a, "shift+tab")
	if a.activeTab != 1 {
		t.Fatalf("activeTab = %d, want 1", a.activeTab)
	}
}

func TestHelpToggle(t *testing.T) {
	a := newTestApp(t)

	a, _ = press(a, "?")
	if !a.showHelp {
		t.Fatal("? should open help")
	}
	a, _ = press(a, "G")
	if a.showHelp {
		t.Fatal("any key should close help")
	}
	if a.scenario.Growth != 8 {
		t.Fatal("the key that closes help should not also act")
	}
}

func TestQuit(t *testing.T) {
	a := newTestApp(t)
	_, cmd := press(a, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
}

func TestExportKey(t *testing.T) {
	a := newTestApp(t)

	a, cmd := press(a, "e")
	if cmd == nil {
		t.Fatal("e returned no command")
	}
	msg, ok := cmd().(ExportedMsg)
	if !ok {
		t.Fatalf("export command returned %T", cmd())
	}
	if msg.Err != nil {
		t.Fatalf("export: %v", msg.Err)
	}
	if !strings.HasSuffix(msg.Path, "projection-20260501-093000.csv") {
		t.Fatalf("path = %s", msg.Path)
	}

	data, err := os.ReadFile(msg.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Month,Users,Revenue\n0,50,500.00\n") {
		t.Fatalf("csv starts with %q", string(data[:40]))
	}

	m, _ := a.Update(msg)
	if notice := m.(App).notice; !strings.HasPrefix(notice, "exported ") {
		t.Fatalf("notice = %q", notice)
	}
}

func TestFormAbortWithoutTiersQuits(t *testing.T) {
	a := NewApp(config.DefaultConfig(), config.DefaultScenario())
	a.form.State = huh.StateAborted

	_, cmd := a.updateForm(nil)
	if cmd == nil {
		t.Fatal("aborting the first form should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("abort did not quit")
	}
}

func TestView(t *testing.T) {
	a := newTestApp(t)
	if a.View() != "" {
		t.Fatal("View before WindowSizeMsg should be empty")
	}

	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a = m.(App)
	out := a.View()
	for _, want := range []string{"Overview", "Final users", "Revenue", "ARPU mix"} {
		if !strings.Contains(out, want) {
			t.Errorf("overview missing %q", want)
		}
	}

	a, _ = press(a, "2")
	if out := a.View(); !strings.Contains(out, "Month") {
		t.Error("table tab missing header")
	}

	m, _ = a.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	if out := m.(App).View(); !strings.Contains(out, "too narrow") {
		t.Error("narrow terminal message missing")
	}
}

func TestStepRate(t *testing.T) {
	if got := stepRate(2, "percentage", 1); got != 2.5 {
		t.Fatalf("stepRate pct = %v", got)
	}
	if got := stepRate(2, "abs", -1); got != 1 {
		t.Fatalf("stepRate abs = %v", got)
	}
	if got := stepRate(0.2, "", -1); got != 0 {
		t.Fatalf("stepRate clamp = %v", got)
	}
}
