package output

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/ebirch/rsvdemand/pkg/application/dto"
	"github.com/ebirch/rsvdemand/pkg/application/services/projection"
)

// HTMLReport renders a projection run as a standalone HTML document with the
// weekly chart inlined as SVG
type HTMLReport struct {
	chart *WeeklyChart
}

// reportRow is one pre-formatted table row for the template
type reportRow struct {
	Scenario string
	Date     string
	Quantity string
	Doses    string
	Share    string
}

// reportData carries everything the template needs
type reportData struct {
	RunID        string
	CreatedAt    string
	GeneratedAt  string
	Elapsed      string
	Scenarios    []string
	Records      int
	TotalDoses   string
	SeasonTotals []reportRow
	DoseMix      []reportRow
	WeeklySVG    template.HTML
}

// NewHTMLReport creates an HTML report generator
func NewHTMLReport() *HTMLReport {
	return &HTMLReport{chart: NewWeeklyChart()}
}

// Render produces the full HTML document
func (hr *HTMLReport) Render(result *dto.ProjectionResult, config Config) (string, error) {
	data := hr.buildReportData(result, config)

	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute report template: %w", err)
	}

	return buf.String(), nil
}

func (hr *HTMLReport) buildReportData(result *dto.ProjectionResult, config Config) *reportData {
	aggregator := projection.NewAggregator()

	data := &reportData{
		RunID:       result.Run.ID,
		CreatedAt:   result.Run.CreatedAt.Format("2006-01-02 15:04:05"),
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Elapsed:     config.Elapsed.String(),
		Scenarios:   result.Run.Scenarios,
		Records:     len(result.Records),
		TotalDoses:  result.TotalDoses().StringFixed(0),
	}

	for _, total := range aggregator.SeasonTotals(result.Records) {
		data.SeasonTotals = append(data.SeasonTotals, reportRow{
			Scenario: total.Scenario,
			Quantity: total.Quantity.Key(),
			Doses:    total.Doses.StringFixed(0),
		})
	}

	for _, row := range aggregator.Mix(result.Records) {
		data.DoseMix = append(data.DoseMix, reportRow{
			Scenario: row.Scenario,
			Quantity: row.Quantity.Key(),
			Doses:    row.Doses.StringFixed(0),
			Share:    row.Share.String(),
		})
	}

	weekly := aggregator.DosesByWeek(result.Records)
	data.WeeklySVG = template.HTML(hr.chart.GenerateSVG(weekly))

	return data
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Demand Projection {{.RunID}}</title>
<style>
  body { font-family: Arial, sans-serif; margin: 24px; color: #333; }
  h1 { font-size: 20px; }
  h2 { font-size: 16px; margin-top: 28px; }
  .meta { color: #666; font-size: 13px; }
  table { border-collapse: collapse; margin-top: 8px; }
  th, td { border: 1px solid #ddd; padding: 4px 10px; font-size: 13px; text-align: left; }
  th { background: #f5f5f5; }
  td.num { text-align: right; }
</style>
</head>
<body>
<h1>Demand Projection Report</h1>
<p class="meta">
  Run {{.RunID}} · computed {{.CreatedAt}} · report generated {{.GeneratedAt}} · projection time {{.Elapsed}}
</p>

<h2>Summary</h2>
<table>
  <tr><th>Scenarios</th><td>{{range $i, $s := .Scenarios}}{{if $i}}, {{end}}{{$s}}{{end}}</td></tr>
  <tr><th>Demand records</th><td class="num">{{.Records}}</td></tr>
  <tr><th>Total doses</th><td class="num">{{.TotalDoses}}</td></tr>
</table>

<h2>Doses by Week</h2>
{{.WeeklySVG}}

<h2>Season Totals</h2>
<table>
  <tr><th>Scenario</th><th>Quantity</th><th>Doses</th></tr>
  {{range .SeasonTotals}}
  <tr><td>{{.Scenario}}</td><td>{{.Quantity}}</td><td class="num">{{.Doses}}</td></tr>
  {{end}}
</table>

<h2>Dose Mix</h2>
<table>
  <tr><th>Scenario</th><th>Quantity</th><th>Doses</th><th>Share</th></tr>
  {{range .DoseMix}}
  <tr><td>{{.Scenario}}</td><td>{{.Quantity}}</td><td class="num">{{.Doses}}</td><td class="num">{{.Share}}</td></tr>
  {{end}}
</table>
</body>
</html>
`
