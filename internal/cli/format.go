// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatCompact formats a count with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M", 1234567890 -> "1.2B"
func FormatCompact(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatMoney formats a currency amount. Values of 1,000 and above drop
// the cents.
func FormatMoney(v float64) string {
	if nonFinite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if v < 0 {
		return "-" + FormatMoney(-v)
	}
	d := decimal.NewFromFloat(v)
	if v >= 1000 {
		return "$" + groupDigits(d.Round(0).String())
	}
	return "$" + d.StringFixed(2)
}

// FormatARPU formats a per-user monthly rate, always with two decimals.
func FormatARPU(v float64) string {
	if nonFinite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func nonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// groupDigits inserts commas into a plain run of digits of any length.
func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatUserDelta formats a signed change in users.
func FormatUserDelta(delta int64) string {
	if delta >= 0 {
		return "+" + FormatNumber(delta)
	}
	return FormatNumber(delta)
}
