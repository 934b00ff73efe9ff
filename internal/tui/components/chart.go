package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/finproj/internal/cli"
	"github.com/theirongolddev/finproj/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var partialBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a one-line sparkline scaled between the series min and max.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface)
	return style.Render(cli.RenderSparkline(values))
}

// BarChart renders values as vertical bars above a zero line. Values below
// zero hang under the line in the theme's negative color. Series wider than
// the chart are sampled down to fit.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}

	t := theme.Active

	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	yLabelW := max(len(formatChartLabel(hi)), len(formatChartLabel(lo))) + 1
	yLabelW = max(yLabelW, 4)
	chartW := max(width-yLabelW-1, 5)

	values, labels = fitSeries(values, labels, chartW)
	n := len(values)

	gap := 1
	barW := (chartW - (n - 1)) / n
	if barW < 1 {
		gap, barW = 0, 1
	}
	barW = min(barW, 6)
	axisLen := n*barW + max(0, n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	posStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	negStyle := lipgloss.NewStyle().Foreground(t.Negative).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	span := hi - lo
	zeroRow := -1
	var b strings.Builder

	for row := height; row >= 1; row-- {
		rowTop := lo + span*float64(row)/float64(height)
		rowBottom := lo + span*float64(row-1)/float64(height)

		label := ""
		switch {
		case row == height:
			label = formatChartLabel(hi)
		case row == 1 && lo < 0:
			label = formatChartLabel(lo)
		case lo < 0 && rowBottom < 0 && rowTop >= 0 && zeroRow < 0:
			label = "0"
		}
		if rowBottom < 0 && rowTop >= 0 {
			zeroRow = row
		}

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		b.WriteString(axisStyle.Render("│"))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			r, negative := barCell(v, rowBottom, rowTop)
			style := posStyle
			if negative {
				style = negStyle
			}
			b.WriteString(style.Render(strings.Repeat(string(r), barW)))
		}
		b.WriteString("\n")
	}

	axisLabel := "0"
	if lo < 0 {
		axisLabel = ""
	}
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, axisLabel)))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	if len(labels) == n && n > 0 {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(xAxisLabels(labels, barW, gap, axisLen)))
	}

	return b.String()
}

// barCell picks the glyph for value v in the row spanning [bottom, top].
func barCell(v, bottom, top float64) (rune, bool) {
	if v >= 0 {
		floor := max(bottom, 0)
		if top <= 0 || v <= floor {
			return ' ', false
		}
		frac := (min(v, top) - floor) / (top - bottom)
		idx := min(max(int(frac*8), 1), 8)
		return partialBlocks[idx], false
	}
	ceil := min(top, 0)
	if bottom >= 0 || v >= ceil {
		return ' ', true
	}
	return '█', true
}

// fitSeries samples values (and labels, if aligned) down to at most maxN
// points, keeping the first and last.
func fitSeries(values []float64, labels []string, maxN int) ([]float64, []string) {
	n := len(values)
	if n <= maxN || maxN < 2 {
		return values, labels
	}

	sampled := make([]float64, maxN)
	var sampledLabels []string
	if len(labels) == n {
		sampledLabels = make([]string, maxN)
	}
	for i := range sampled {
		src := i * (n - 1) / (maxN - 1)
		sampled[i] = values[src]
		if sampledLabels != nil {
			sampledLabels[i] = labels[src]
		}
	}
	return sampled, sampledLabels
}

func xAxisLabels(labels []string, barW, gap, axisLen int) string {
	buf := []byte(strings.Repeat(" ", axisLen))
	n := len(labels)
	step := max(1, (n*8)/(axisLen+1))

	lastEnd := -1
	place := func(i int) {
		lbl := labels[i]
		pos := i * (barW + gap)
		if pos+len(lbl) > axisLen {
			pos = axisLen - len(lbl)
		}
		if pos <= lastEnd || pos < 0 {
			return
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}
	for i := 0; i < n-1; i += step {
		place(i)
	}
	place(n - 1)

	return strings.TrimRight(string(buf), " ")
}

func formatChartLabel(v float64) string {
	if v < 0 {
		return "-" + formatChartLabel(-v)
	}
	switch {
	case v >= 1e9:
		return trimUnit(v/1e9, "B")
	case v >= 1e6:
		return trimUnit(v/1e6, "M")
	case v >= 1e3:
		return trimUnit(v/1e3, "k")
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimUnit(v float64, unit string) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f%s", v, unit)
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}
