package output

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ebirch/rsvdemand/pkg/application/dto"
)

// WeeklyChart renders doses-by-week aggregates as a grouped bar chart in SVG
type WeeklyChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
}

// scenarioPalette colors the scenarios in first-seen order
var scenarioPalette = []string{
	"#4CAF50", "#2196F3", "#FF9800", "#9C27B0", "#F44336", "#00BCD4",
}

// NewWeeklyChart creates a chart with default dimensions
func NewWeeklyChart() *WeeklyChart {
	return &WeeklyChart{
		Width:        1200,
		Height:       500,
		MarginLeft:   90,
		MarginTop:    60,
		MarginRight:  40,
		MarginBottom: 70,
	}
}

// GenerateSVG renders the weekly totals. Doses are converted to float for
// pixel math only; the exported tables keep exact decimals.
func (wc *WeeklyChart) GenerateSVG(totals []dto.DoseTotal) string {
	weeks, scenarios, doses, maxDoses := wc.collectSeries(totals)
	if len(weeks) == 0 || maxDoses <= 0 {
		return wc.generateEmptyChart()
	}

	var svg strings.Builder

	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, wc.Width, wc.Height))
	svg.WriteString(`<defs>`)
	svg.WriteString(`<style>`)
	svg.WriteString(`.axis-label { font-family: Arial, sans-serif; font-size: 11px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.dose-bar { stroke: #333; stroke-width: 0.5; }`)
	svg.WriteString(`.legend-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`</style>`)
	svg.WriteString(`</defs>`)

	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, wc.Width, wc.Height))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="30" class="title" text-anchor="middle">Projected Doses by Week</text>`, wc.Width/2))

	scale := wc.niceCeiling(maxDoses)
	wc.drawValueAxis(&svg, scale)
	wc.drawWeekAxis(&svg, weeks)
	wc.drawBars(&svg, weeks, scenarios, doses, scale)
	wc.drawLegend(&svg, scenarios)

	svg.WriteString(`</svg>`)
	return svg.String()
}

// collectSeries folds the totals into per-scenario weekly sums
func (wc *WeeklyChart) collectSeries(
	totals []dto.DoseTotal,
) ([]time.Time, []string, map[string]map[time.Time]float64, float64) {
	doses := make(map[string]map[time.Time]float64)
	weekSet := make(map[time.Time]bool)
	var scenarios []string

	for _, total := range totals {
		if _, exists := doses[total.Scenario]; !exists {
			doses[total.Scenario] = make(map[time.Time]float64)
			scenarios = append(scenarios, total.Scenario)
		}
		doses[total.Scenario][total.Date] += total.Doses.InexactFloat64()
		weekSet[total.Date] = true
	}

	weeks := make([]time.Time, 0, len(weekSet))
	for week := range weekSet {
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	sort.Strings(scenarios)

	maxDoses := 0.0
	for _, byWeek := range doses {
		for _, value := range byWeek {
			if value > maxDoses {
				maxDoses = value
			}
		}
	}

	return weeks, scenarios, doses, maxDoses
}

// niceCeiling rounds the axis maximum up to 1, 2, or 5 times a power of ten
func (wc *WeeklyChart) niceCeiling(value float64) float64 {
	if value <= 0 {
		return 1
	}
	power := math.Pow(10, math.Floor(math.Log10(value)))
	for _, step := range []float64{1, 2, 5, 10} {
		if value <= step*power {
			return step * power
		}
	}
	return 10 * power
}

func (wc *WeeklyChart) drawValueAxis(svg *strings.Builder, scale float64) {
	chartHeight := wc.Height - wc.MarginTop - wc.MarginBottom

	const ticks = 5
	for i := 0; i <= ticks; i++ {
		value := scale * float64(i) / ticks
		y := wc.Height - wc.MarginBottom - int(float64(chartHeight)*float64(i)/ticks)

		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
			wc.MarginLeft, y, wc.Width-wc.MarginRight, y))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="axis-label" text-anchor="end">%s</text>`,
			wc.MarginLeft-8, y+4, formatAxisValue(value)))
	}
}

func (wc *WeeklyChart) drawWeekAxis(svg *strings.Builder, weeks []time.Time) {
	chartWidth := wc.Width - wc.MarginLeft - wc.MarginRight
	bandWidth := float64(chartWidth) / float64(len(weeks))

	// Label roughly a dozen weeks regardless of season length
	step := len(weeks)/12 + 1

	for i, week := range weeks {
		if i%step != 0 {
			continue
		}
		x := wc.MarginLeft + int(bandWidth*(float64(i)+0.5))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="axis-label" text-anchor="middle">%s</text>`,
			x, wc.Height-wc.MarginBottom+18, week.Format("Jan 2")))
	}

	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		wc.MarginLeft, wc.Height-wc.MarginBottom, wc.Width-wc.MarginRight, wc.Height-wc.MarginBottom))
}

func (wc *WeeklyChart) drawBars(
	svg *strings.Builder,
	weeks []time.Time,
	scenarios []string,
	doses map[string]map[time.Time]float64,
	scale float64,
) {
	chartWidth := wc.Width - wc.MarginLeft - wc.MarginRight
	chartHeight := wc.Height - wc.MarginTop - wc.MarginBottom
	bandWidth := float64(chartWidth) / float64(len(weeks))
	barWidth := bandWidth * 0.8 / float64(len(scenarios))

	for weekIndex, week := range weeks {
		bandLeft := float64(wc.MarginLeft) + bandWidth*float64(weekIndex) + bandWidth*0.1

		for scenarioIndex, scenario := range scenarios {
			value := doses[scenario][week]
			if value <= 0 {
				continue
			}

			barHeight := int(float64(chartHeight) * value / scale)
			if barHeight < 1 {
				barHeight = 1
			}
			x := int(bandLeft + barWidth*float64(scenarioIndex))
			y := wc.Height - wc.MarginBottom - barHeight
			color := scenarioPalette[scenarioIndex%len(scenarioPalette)]

			svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="dose-bar">`,
				x, y, int(math.Max(barWidth, 1)), barHeight, color))
			svg.WriteString(fmt.Sprintf(`<title>%s, week of %s: %.0f doses</title>`,
				scenario, week.Format("2006-01-02"), value))
			svg.WriteString(`</rect>`)
		}
	}
}

func (wc *WeeklyChart) drawLegend(svg *strings.Builder, scenarios []string) {
	legendX := wc.Width - wc.MarginRight - 180
	legendY := 46

	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="170" height="%d" fill="white" stroke="#ccc" stroke-width="1"/>`,
		legendX, legendY, 14*len(scenarios)+10))

	for i, scenario := range scenarios {
		itemY := legendY + 10 + i*14
		color := scenarioPalette[i%len(scenarioPalette)]
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`,
			legendX+8, itemY, color))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="legend-label">%s</text>`,
			legendX+26, itemY+8, scenario))
	}
}

// formatAxisValue compacts large dose counts for axis labels
func formatAxisValue(value float64) string {
	switch {
	case value >= 1e6:
		return fmt.Sprintf("%.1fM", value/1e6)
	case value >= 1e3:
		return fmt.Sprintf("%.0fk", value/1e3)
	default:
		return fmt.Sprintf("%.0f", value)
	}
}

// generateEmptyChart renders a placeholder when the run produced no demand
func (wc *WeeklyChart) generateEmptyChart() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
		<rect width="%d" height="%d" fill="white"/>
		<text x="%d" y="%d" class="title" text-anchor="middle">No Projected Demand</text>
		<style>
			.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }
		</style>
	</svg>`, wc.Width, wc.Height, wc.Width, wc.Height, wc.Width/2, wc.Height/2)
}
