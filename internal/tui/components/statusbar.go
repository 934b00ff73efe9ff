package components

import (
	"strings"

	"github.com/theirongolddev/finproj/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left and
// a notice (last export, errors) on the right.
func RenderStatusBar(width int, notice string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [g/G]growth  [c/C]churn  [m/M]months  [e]xport  [?]help  [q]uit"
	right := ""
	if notice != "" {
		right = notice + " "
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
