package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"scadenze/internal/recurring"
)

// Theme colors
var (
	ColorBorder = lipgloss.Color("#575653")
	ColorText   = lipgloss.Color("#FFFCF0")
	ColorAccent = lipgloss.Color("#3AA99F")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorOrange = lipgloss.Color("#DA702C")
	ColorRed    = lipgloss.Color("#D14D41")
	ColorMuted  = lipgloss.Color("#6F6E69")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Table is a bordered text table for CLI output.
type Table struct {
	Headers []string
	Rows    [][]string
	// RightAlign lists the columns rendered right-aligned.
	RightAlign []int
}

// RenderTitle renders a title in a rounded box.
func RenderTitle(title string) string {
	return titleStyle.Render(title)
}

// RenderMuted renders secondary text.
func RenderMuted(s string) string {
	return mutedStyle.Render(s)
}

// RenderTable renders t with a rounded border.
func RenderTable(t Table) string {
	if len(t.Headers) == 0 && len(t.Rows) == 0 {
		return ""
	}
	right := make(map[int]bool, len(t.RightAlign))
	for _, c := range t.RightAlign {
		right[c] = true
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if right[col] {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})
	return tbl.String() + "\n"
}

// RenderRisk colors a risk tier.
func RenderRisk(r recurring.Risk) string {
	color := ColorGreen
	switch r {
	case recurring.RiskHigh:
		color = ColorRed
	case recurring.RiskMedium:
		color = ColorOrange
	}
	return lipgloss.NewStyle().Foreground(color).Render(string(r))
}
