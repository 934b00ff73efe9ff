package components

import (
	"fmt"

	"github.com/theirongolddev/finproj/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ShareBar renders a labeled bar for a 0-1 share, such as one tier's part
// of the blended ARPU.
func ShareBar(label string, share float64, labelW, barWidth int) string {
	t := theme.Active

	share = min(max(share, 0), 1)

	bar := progress.New(
		progress.WithSolidFill(string(t.Revenue)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		space +
		bar.ViewAs(share) +
		space +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", share*100))
}
