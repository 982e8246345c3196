package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/warp/loan-engine/amortization"
)

var (
	colorBorder = lipgloss.Color("#282726")
	colorText   = lipgloss.Color("#FFFCF0")
	colorAccent = lipgloss.Color("#3AA99F")
	colorDim    = lipgloss.Color("#575653")
	colorGreen  = lipgloss.Color("#879A39")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText).Align(lipgloss.Center)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText)
	savedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// table is a bordered text table. The first column is left-aligned, the
// rest are right-aligned.
type table struct {
	Headers []string
	Rows    [][]string
}

func renderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(48).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

func renderTable(t table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], len(h))
	}
	for _, row := range t.Rows {
		for i := 0; i < numCols && i < len(row); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	var b strings.Builder
	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}
	line := func(cells []string, style lipgloss.Style) {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == 0 {
				b.WriteString(style.Render(fmt.Sprintf(" %-*s ", widths[i], cell)))
			} else {
				b.WriteString(style.Render(fmt.Sprintf(" %*s ", widths[i], cell)))
			}
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		line(row, valueStyle)
	}
	rule("╰", "┴", "╯")
	return b.String()
}

// formatMoney renders an amount with two decimals and thousands separators.
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(amortization.MoneyPlaces)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

func formatMonths(n int) string {
	years, months := n/12, n%12
	switch {
	case years == 0:
		return fmt.Sprintf("%d mo", n)
	case months == 0:
		return fmt.Sprintf("%d mo (%dy)", n, years)
	default:
		return fmt.Sprintf("%d mo (%dy %dm)", n, years, months)
	}
}
