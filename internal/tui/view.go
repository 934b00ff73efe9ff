package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/finproj/internal/cli"
	"github.com/theirongolddev/finproj/internal/tui/components"
	"github.com/theirongolddev/finproj/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderHeader() string {
	t := theme.Active
	w := a.width

	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	sc := a.scenario
	growth, churn := a.input.Growth, a.input.Churn
	line := pill.Render(" users ") + accent.Render(cli.FormatNumber(sc.StartingUsers)) +
		pill.Render(" │ growth ") + accent.Render(growth.String()) +
		pill.Render(" │ churn ") + accent.Render(churn.String()) +
		pill.Render(" │ months ") + accent.Render(strconv.Itoa(sc.Months)) +
		pill.Render(" │ ARPU ") + accent.Render(cli.FormatARPU(a.result.EffectiveARPU)) +
		pill.Render(" ")

	row := lipgloss.NewStyle().Background(t.Surface).Width(w)
	return components.RenderTabBar(a.activeTab, w) + "\n" + row.Render(line)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := a.renderHeader()

	notice := a.notice
	if a.err != nil {
		notice = a.err.Error()
	}
	statusBar := components.RenderStatusBar(w, notice)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderOverview(cw, contentH)
	case 1:
		vp := a.table
		vp.Width = cw
		vp.Height = contentH
		content = vp.View()
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) overviewMetrics() []components.Metric {
	s := a.summary
	metrics := []components.Metric{
		{
			Label: "Final users",
			Value: cli.FormatNumber(s.FinalUsers),
			Delta: cli.FormatUserDelta(s.NetUserChange) + " since month 0",
			Alert: s.FinalUsers < 0,
		},
		{
			Label: "Final MRR",
			Value: cli.FormatMoney(s.FinalMRR),
			Alert: s.FinalMRR < 0,
		},
		{
			Label: "Cumulative revenue",
			Value: cli.FormatMoney(s.CumulativeRevenue),
			Delta: fmt.Sprintf("months 1-%d", a.input.Months),
		},
		{
			Label: "Peak users",
			Value: cli.FormatCompact(s.PeakUsers),
			Delta: fmt.Sprintf("month %d", s.PeakMonth),
		},
	}
	if s.FirstNonPositiveMonth >= 0 {
		metrics = append(metrics, components.Metric{
			Label: "Users at or below zero",
			Value: fmt.Sprintf("month %d", s.FirstNonPositiveMonth),
			Alert: true,
		})
	}
	return metrics
}

func (a App) renderOverview(cw, h int) string {
	t := theme.Active

	cards := components.MetricCardRow(a.overviewMetrics(), cw)
	remaining := h - lipgloss.Height(cards)

	labels := monthLabels(a.result.Records)
	tierCard := a.renderTierMix(cw)
	chartH := max(min(remaining-lipgloss.Height(tierCard)-5, 16), 4)

	var charts string
	if cw >= 100 {
		widths := components.LayoutRow(cw, 2)
		users := components.ContentCard("Users",
			components.BarChart(a.result.Users(), labels, t.Users, components.CardInnerWidth(widths[0]), chartH), widths[0])
		revenue := components.ContentCard("Revenue",
			components.BarChart(a.result.Revenue(), labels, t.Revenue, components.CardInnerWidth(widths[1]), chartH), widths[1])
		charts = components.CardRow([]string{users, revenue})
	} else {
		half := max(chartH/2, 3)
		users := components.ContentCard("Users",
			components.BarChart(a.result.Users(), labels, t.Users, components.CardInnerWidth(cw), half), cw)
		revenue := components.ContentCard("Revenue",
			components.BarChart(a.result.Revenue(), labels, t.Revenue, components.CardInnerWidth(cw), half), cw)
		charts = users + "\n" + revenue
	}

	return cards + "\n" + charts + "\n" + tierCard
}

func (a App) renderTierMix(cw int) string {
	arpu := a.result.EffectiveARPU
	var b strings.Builder
	for i, tier := range a.input.Tiers {
		if i > 0 {
			b.WriteString("\n")
		}
		label := fmt.Sprintf("%s %s", cli.FormatARPU(tier.Price), tier.Cadence)
		share := 0.0
		if tier.Valid() && arpu > 0 {
			share = tier.Contribution() / arpu
		}
		if !tier.Valid() {
			label += " (skipped)"
		}
		b.WriteString(components.ShareBar(label, share, 22, max(components.CardInnerWidth(cw)-30, 10)))
	}
	title := fmt.Sprintf("ARPU mix (%s)", cli.FormatARPU(arpu))
	return components.ContentCard(title, b.String(), cw)
}

// renderTable builds the full month table shown in the scrollable viewport.
func (a App) renderTable() string {
	rows := make([][]string, len(a.result.Records))
	for i, r := range a.result.Records {
		rows[i] = []string{
			strconv.Itoa(r.Month),
			cli.FormatNumber(r.Users),
			cli.FormatMoney(r.Revenue),
		}
	}
	return cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Users", "Revenue"},
		Rows:    rows,
	})
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"g G", "Growth down / up"},
		{"c C", "Churn down / up"},
		{"m M", "Horizon -/+ 12 months"},
		{"s", "Edit scenario"},
		{"e", "Export CSV"},
		{"1 2 tab", "Switch tab"},
		{"↑ ↓ pgup pgdn", "Scroll table"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-14s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
