// Package tui provides the interactive Bubble Tea projection explorer.
package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/theirongolddev/finproj/internal/config"
	"github.com/theirongolddev/finproj/internal/export"
	"github.com/theirongolddev/finproj/internal/model"
	"github.com/theirongolddev/finproj/internal/projection"
	"github.com/theirongolddev/finproj/internal/tui/components"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// ExportedMsg is sent when a CSV export finishes.
type ExportedMsg struct {
	Path string
	Err  error
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 180
	minContentHeight = 5

	horizonStep = 12
)

// App is the root Bubble Tea model.
type App struct {
	cfg      config.Config
	scenario config.Scenario

	// Last successful run
	input   model.ProjectionConfig
	result  model.ProjectionResult
	summary model.ProjectionSummary
	skipped int
	err     error
	notice  string

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	table     viewport.Model

	// Scenario form (huh)
	form      *huh.Form
	formVals  *ScenarioValues
	needSetup bool

	now func() time.Time
}

// NewApp creates the explorer for a starting scenario. When the scenario has
// no usable tier the scenario form is shown first.
func NewApp(cfg config.Config, sc config.Scenario) App {
	a := App{
		cfg:      cfg,
		scenario: sc,
		table:    viewport.New(0, 0),
		now:      time.Now,
	}
	a.recompute()

	if a.validTiers() == 0 {
		a.openForm()
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.needSetup && a.form != nil {
		return a.form.Init()
	}
	return nil
}

// Scenario returns the scenario currently on screen.
func (a App) Scenario() config.Scenario {
	return a.scenario
}

func (a *App) validTiers() int {
	return len(a.input.Tiers) - a.skipped
}

// recompute runs a fresh engine for the current scenario.
func (a *App) recompute() {
	input, dropped, err := a.scenario.ProjectionConfig()
	if err != nil {
		a.err = err
		return
	}
	_, skipped := projection.BlendTiers(input.Tiers)

	res, err := projection.Project(input)
	if err != nil {
		a.err = err
		return
	}

	a.err = nil
	a.input = input
	a.result = res
	a.summary = projection.Summarize(res)
	a.skipped = skipped
	if dropped > 0 {
		a.notice = fmt.Sprintf("%d tier(s) with unknown cadence ignored", dropped)
	} else {
		a.notice = ""
	}
	a.table.SetContent(a.renderTable())
}

func (a *App) openForm() {
	vals := ValuesFromScenario(a.scenario)
	a.formVals = &vals
	a.form = NewScenarioForm(a.formVals)
	if a.width > 0 {
		a.form = a.form.WithWidth(a.width).WithHeight(a.height)
	}
	a.needSetup = true
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.table.Width = a.contentWidth()
		a.table.Height = max(a.height-4, minContentHeight)
		if a.form != nil {
			a.form = a.form.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case ExportedMsg:
		if msg.Err != nil {
			a.notice = "export failed: " + msg.Err.Error()
		} else {
			a.notice = "exported " + msg.Path
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.needSetup && a.form != nil {
			return a.updateForm(msg)
		}
		return a.updateKeys(msg)
	}

	// Forward unhandled messages to the form (cursor blinks, etc.)
	if a.needSetup && a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "g":
		a.scenario.Growth = stepRate(a.scenario.Growth, a.scenario.GrowthMode, -1)
	case "G":
		a.scenario.Growth = stepRate(a.scenario.Growth, a.scenario.GrowthMode, 1)
	case "c":
		a.scenario.Churn = stepRate(a.scenario.Churn, a.scenario.ChurnMode, -1)
	case "C":
		a.scenario.Churn = stepRate(a.scenario.Churn, a.scenario.ChurnMode, 1)
	case "m":
		a.scenario.Months = max(a.scenario.Months-horizonStep, 1)
	case "M":
		a.scenario.Months = min(a.scenario.Months+horizonStep, a.maxMonths())
	case "s":
		a.openForm()
		return a, a.form.Init()
	case "e":
		return a, a.exportCmd()
	case "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
				return a, nil
			}
		}
		if a.activeTab == 1 {
			var cmd tea.Cmd
			a.table, cmd = a.table.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	a.notice = ""
	a.recompute()
	return a, nil
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		sc, tierErrs, err := a.formVals.Scenario()
		a.form = nil
		a.needSetup = false
		if err != nil {
			a.notice = err.Error()
			return a, nil
		}
		a.scenario = sc
		a.notice = ""
		a.recompute()
		if len(tierErrs) > 0 {
			a.notice = fmt.Sprintf("%d tier line(s) skipped", len(tierErrs))
		}
		if a.validTiers() == 0 {
			a.openForm()
			return a, a.form.Init()
		}
		return a, nil

	case huh.StateAborted:
		a.form = nil
		if a.validTiers() == 0 {
			return a, tea.Quit
		}
		a.needSetup = false
		return a, nil
	}

	return a, cmd
}

// stepRate nudges a rate by one step: half a percent for percentage rates,
// one user for absolute rates. Rates never go below zero here.
func stepRate(v float64, mode string, dir int) float64 {
	step := 0.5
	if m, ok := model.ParseRateMode(mode); ok && m == model.Absolute {
		step = 1
	}
	return max(v+step*float64(dir), 0)
}

func (a App) maxMonths() int {
	if a.cfg.Server.MaxMonths > 0 {
		return a.cfg.Server.MaxMonths
	}
	return 1200
}

func (a App) exportCmd() tea.Cmd {
	dir := a.cfg.Export.Dir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, export.DefaultFilename(export.CSV, a.now()))
	run := export.NewRun(a.input, a.result)

	return func() tea.Msg {
		return ExportedMsg{Path: path, Err: export.WriteFile(path, export.CSV, run)}
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func monthLabels(records []model.ProjectionRecord) []string {
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = strconv.Itoa(r.Month)
	}
	return labels
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needSetup && a.form != nil {
		return a.form.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  finproj needs at least %d columns.\n",
		a.width, minTerminalWidth)
	h := max(a.height, 5)
	return padHeight(truncateHeight(msg, h), h)
}
