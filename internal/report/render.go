package report

import (
	"fmt"
	"strings"

	"fjacquet/ledger-gaps/internal/models"
	"fjacquet/ledger-gaps/internal/pattern"

	"github.com/charmbracelet/lipgloss"
)

const (
	gapMarker   = "·"
	shiftMarker = "→"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorAccent = lipgloss.Color("#3AA99F")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorRed    = lipgloss.Color("#D14D41")
	colorOrange = lipgloss.Color("#DA702C")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	gapStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	shiftStyle  = lipgloss.NewStyle().Foreground(colorOrange)
	dimStyle    = lipgloss.NewStyle().Foreground(colorBorder)
)

// cell is a table value with the style it is rendered in. Widths are
// computed on the plain text so styling never breaks alignment.
type cell struct {
	text  string
	style lipgloss.Style
}

func (g *ReportGenerator) renderText(result *models.AnalysisResult) string {
	var b strings.Builder

	title := fmt.Sprintf("Recurring entries: %d groups, %d with gaps", result.GroupCount, result.GapGroupCount)
	if result.FiscalYear > 0 {
		title += fmt.Sprintf(" (fiscal year %d)", result.FiscalYear)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d entries analyzed, %d outside the fiscal year", result.EntryCount, result.ExcludedCount)))
	b.WriteString("\n\n")

	if len(result.Reports) == 0 {
		b.WriteString(mutedStyle.Render("No recurring entries found."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(renderMatrix(result.Reports))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s gap   %s shift (amount landed in a neighbouring month)", gapMarker, shiftMarker)))
	b.WriteString("\n\n")
	b.WriteString(g.renderMissing(result.Reports))

	if result.Summary != "" {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Summary"))
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(result.Summary))
		b.WriteString("\n")
	}
	return b.String()
}

func matrixRow(r models.GroupReport) []cell {
	row := make([]cell, 0, models.MonthsPerYear+2)
	row = append(row, cell{text: r.Key, style: valueStyle})

	marks := make(map[int]cell, len(r.Gaps)+len(r.Shifts))
	for _, m := range r.Gaps {
		marks[m] = cell{text: gapMarker, style: gapStyle}
	}
	for _, m := range r.Shifts {
		marks[m] = cell{text: shiftMarker, style: shiftStyle}
	}

	for m := 0; m < models.MonthsPerYear; m++ {
		switch {
		case r.MonthlyCounts[m] > 0:
			row = append(row, cell{text: r.MonthlyAmounts[m].StringFixed(0), style: valueStyle})
		case marks[m].text != "":
			row = append(row, marks[m])
		default:
			row = append(row, cell{style: mutedStyle})
		}
	}

	row = append(row, cell{text: r.Total.StringFixed(2), style: valueStyle})
	return row
}

func renderMatrix(reports []models.GroupReport) string {
	headers := make([]string, 0, models.MonthsPerYear+2)
	headers = append(headers, "Group")
	headers = append(headers, MonthLabels[:]...)
	headers = append(headers, "Total")

	rows := make([][]cell, len(reports))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for i, r := range reports {
		rows[i] = matrixRow(r)
		for j, c := range rows[i] {
			if w := lipgloss.Width(c.text); w > widths[j] {
				widths[j] = w
			}
		}
	}

	var b strings.Builder
	border := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < len(widths)-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}
	line := func(cells []cell) {
		b.WriteString(dimStyle.Render("│"))
		for i, c := range cells {
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(c.text))
			if i == 0 {
				b.WriteString(" " + c.style.Render(c.text) + pad + " ")
			} else {
				b.WriteString(" " + pad + c.style.Render(c.text) + " ")
			}
			if i < len(cells)-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	headerCells := make([]cell, len(headers))
	for i, h := range headers {
		headerCells[i] = cell{text: h, style: headerStyle}
	}

	border("╭", "┬", "╮")
	line(headerCells)
	border("├", "┼", "┤")
	for _, row := range rows {
		line(row)
	}
	border("╰", "┴", "╯")
	return b.String()
}

// renderMissing lists the groups with gaps, most gaps first.
func (g *ReportGenerator) renderMissing(reports []models.GroupReport) string {
	missing := pattern.WithGaps(reports)
	if len(missing) == 0 {
		return mutedStyle.Render("No missing items.") + "\n"
	}
	missing = pattern.Top(missing, g.opts.Top)

	var b strings.Builder
	b.WriteString(headerStyle.Render("Missing items"))
	b.WriteString("\n")
	for _, r := range missing {
		fmt.Fprintf(&b, "  %s %s  %s %s\n",
			gapStyle.Render(gapMarker),
			valueStyle.Render(r.Key),
			gapStyle.Render(monthList(r.Gaps, ", ")),
			mutedStyle.Render(fmt.Sprintf("(expected ~%s per month)", r.AverageAmount.StringFixed(2))))
	}
	return b.String()
}
