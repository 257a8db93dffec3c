package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ebirch/rsvdemand/pkg/application/dto"
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("35")).
				Padding(0, 1)

	reportMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("99"))

	tableRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	tableRowAltStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))
)

// RenderRunHeader renders the report title line for one projection run
func RenderRunHeader(run *entities.ProjectionRun) string {
	title := reportTitleStyle.Render("Demand Projection Report")
	meta := reportMetaStyle.Render(fmt.Sprintf("run %s · %s · %s cohorts",
		run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Interval))
	return title + "\n" + meta
}

// RenderSummaryTable renders record and dose counts for the run
func RenderSummaryTable(run *entities.ProjectionRun, records []*entities.DemandRecord) string {
	total := decimal.Zero
	for _, record := range records {
		total = total.Add(record.Doses)
	}
	rows := [][]string{
		{"Scenarios", strings.Join(run.Scenarios, ", ")},
		{"Demand records", fmt.Sprintf("%d", len(records))},
		{"Total doses", total.StringFixed(0)},
	}
	return sectionStyle.Render("Summary") + "\n" + renderTable([]string{"", ""}, rows)
}

// RenderTotalsTable renders one aggregate as a styled table. dateColumn names
// the time bucket column and is omitted for whole-season totals.
func RenderTotalsTable(title string, totals []dto.DoseTotal, dateColumn string) string {
	headers := []string{"Scenario", "Quantity", "Doses"}
	if dateColumn != "" {
		headers = []string{"Scenario", dateColumn, "Quantity", "Doses"}
	}

	rows := make([][]string, 0, len(totals))
	for _, total := range totals {
		if dateColumn == "" {
			rows = append(rows, []string{
				total.Scenario, total.Quantity.Key(), total.Doses.StringFixed(0),
			})
			continue
		}
		rows = append(rows, []string{
			total.Scenario,
			total.Date.Format(entities.DateFormat),
			total.Quantity.Key(),
			total.Doses.StringFixed(0),
		})
	}

	return sectionStyle.Render(title) + "\n" + renderTable(headers, rows)
}

// RenderMixTable renders the dose-mix shares as a styled table
func RenderMixTable(title string, mix []dto.MixShare) string {
	headers := []string{"Scenario", "Quantity", "Doses", "Share"}
	rows := make([][]string, 0, len(mix))
	for _, row := range mix {
		rows = append(rows, []string{
			row.Scenario, row.Quantity.Key(), row.Doses.StringFixed(0), row.Share.String(),
		})
	}
	return sectionStyle.Render(title) + "\n" + renderTable(headers, rows)
}

// renderTable lays out rows in aligned columns with alternating row styles
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder

	if strings.Join(headers, "") != "" {
		b.WriteString(tableHeaderStyle.Render(formatRow(headers, widths)))
		b.WriteString("\n")
	}

	for i, row := range rows {
		style := tableRowStyle
		if i%2 == 1 {
			style = tableRowAltStyle
		}
		b.WriteString(style.Render(formatRow(row, widths)))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func formatRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
	}
	return "  " + strings.Join(padded, "   ")
}
