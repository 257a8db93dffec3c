package output

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ebirch/rsvdemand/pkg/application/dto"
	testhelpers "github.com/ebirch/rsvdemand/pkg/application/services/testing"
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

func testRecord(scenario string, date time.Time, dosage entities.DrugDosage, nDoses int, doses int64) *entities.DemandRecord {
	return &entities.DemandRecord{
		RunID:        "run-1",
		Scenario:     scenario,
		Place:        "4",
		BirthDate:    entities.Date(2024, 12, 1),
		RiskLevel:    entities.RiskBaseline,
		Delay:        0,
		ThresholdAge: 0,
		Date:         date,
		Dosage:       dosage,
		NDoses:       nDoses,
		Size:         decimal.NewFromInt(doses).Div(decimal.NewFromInt(int64(nDoses))),
		Doses:        decimal.NewFromInt(doses),
	}
}

func TestAddScenarioColumns(t *testing.T) {
	scenarios := []*entities.Scenario{
		testhelpers.MustCreateScenario("a", entities.IntervalWeek, "0.8", "0.04",
			entities.DelayProportions{
				0: decimal.RequireFromString("0.8"),
				8: decimal.RequireFromString("0.2"),
			}, "WHO"),
		testhelpers.MustCreateScenario("b", entities.IntervalWeek, "0.5", "0.02", nil, "CDC"),
	}

	header := []string{"scenario", "doses"}
	rows := [][]string{{"a", "100"}, {"b", "50"}}

	outHeader, outRows, err := AddScenarioColumns(header, rows, scenarios)
	if err != nil {
		t.Fatalf("AddScenarioColumns failed: %v", err)
	}

	wantHeader := []string{
		"scenario", "doses",
		"uptake", "p_high_risk", "growth_chart", "season_start", "season_end",
		"delay_0", "delay_8",
	}
	if len(outHeader) != len(wantHeader) {
		t.Fatalf("Expected header %v, got %v", wantHeader, outHeader)
	}
	for i := range wantHeader {
		if outHeader[i] != wantHeader[i] {
			t.Fatalf("Expected header %v, got %v", wantHeader, outHeader)
		}
	}

	wantRows := [][]string{
		{"a", "100", "0.8", "0.04", "WHO", "2024-10-01", "2025-03-31", "0.8", "0.2"},
		{"b", "50", "0.5", "0.02", "CDC", "2024-10-01", "2025-03-31", "1", "0"},
	}
	for i, want := range wantRows {
		if len(outRows[i]) != len(want) {
			t.Fatalf("Row %d: expected %v, got %v", i, want, outRows[i])
		}
		for j := range want {
			if outRows[i][j] != want[j] {
				t.Errorf("Row %d column %d: expected %q, got %q", i, j, want[j], outRows[i][j])
			}
		}
	}
}

func TestAddScenarioColumns_Collision(t *testing.T) {
	scenario := testhelpers.MustCreateScenario("a", entities.IntervalWeek, "0.8", "0.04", nil, "WHO")

	header := []string{"scenario", "uptake"}
	_, _, err := AddScenarioColumns(header, nil, []*entities.Scenario{scenario})
	if err == nil {
		t.Fatal("Expected collision error but got none")
	}

	var configErr *entities.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Errorf("Expected ConfigurationError, got %T", err)
	}
	want := `configuration error: scenario parameter column "uptake" collides with a result column`
	if err.Error() != want {
		t.Errorf("Expected error '%s', got '%s'", want, err.Error())
	}
}

func TestAddScenarioColumns_UnknownScenario(t *testing.T) {
	scenario := testhelpers.MustCreateScenario("a", entities.IntervalWeek, "0.8", "0.04", nil, "WHO")

	rows := [][]string{{"missing", "100"}}
	_, _, err := AddScenarioColumns([]string{"scenario", "doses"}, rows, []*entities.Scenario{scenario})
	if err == nil {
		t.Fatal("Expected error for unknown scenario but got none")
	}
	if !strings.Contains(err.Error(), `unknown scenario "missing"`) {
		t.Errorf("Expected unknown scenario error, got: %v", err)
	}
}

func TestWriteRecordsCSV(t *testing.T) {
	scenario := testhelpers.MustCreateScenario("a", entities.IntervalWeek, "0.8", "0.04", nil, "WHO")
	records := []*entities.DemandRecord{
		testRecord("a", entities.Date(2024, 12, 1), entities.Dosage100mg, 1, 760),
	}

	filename := filepath.Join(t.TempDir(), "records.csv")
	if err := writeRecordsCSV(records, []*entities.Scenario{scenario}, filename); err != nil {
		t.Fatalf("writeRecordsCSV failed: %v", err)
	}

	file, err := os.Open(filename)
	if err != nil {
		t.Fatalf("Failed to open written CSV: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read written CSV: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected header plus one row, got %d rows", len(rows))
	}
	// 11 result columns plus 5 fixed parameters plus delay_0
	if len(rows[0]) != 17 {
		t.Fatalf("Expected 17 columns, got %d: %v", len(rows[0]), rows[0])
	}
	if rows[0][0] != "scenario" || rows[0][11] != "uptake" {
		t.Errorf("Unexpected header layout: %v", rows[0])
	}

	row := rows[1]
	if row[0] != "a" || row[2] != "2024-12-01" || row[3] != "baseline" {
		t.Errorf("Unexpected record columns: %v", row)
	}
	if row[7] != "100mg" || row[8] != "1" || row[9] != "760" || row[10] != "760" {
		t.Errorf("Unexpected dosage columns: %v", row)
	}
	if row[11] != "0.8" || row[16] != "1" {
		t.Errorf("Unexpected parameter columns: %v", row)
	}
}

func TestWeeklyChart_GenerateSVG(t *testing.T) {
	quantity := entities.DrugQuantity{Dosage: entities.Dosage100mg, NDoses: 1}
	totals := []dto.DoseTotal{
		{Scenario: "a", Date: entities.Date(2024, 12, 1), Quantity: quantity, Doses: decimal.NewFromInt(700)},
		{Scenario: "a", Date: entities.Date(2024, 12, 8), Quantity: quantity, Doses: decimal.NewFromInt(350)},
		{Scenario: "b", Date: entities.Date(2024, 12, 1), Quantity: quantity, Doses: decimal.NewFromInt(200)},
	}

	svg := NewWeeklyChart().GenerateSVG(totals)

	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "</svg>") {
		t.Fatal("Expected an SVG document")
	}
	if !strings.Contains(svg, "Projected Doses by Week") {
		t.Error("Expected chart title")
	}
	if !strings.Contains(svg, "dose-bar") {
		t.Error("Expected at least one bar")
	}
	for _, scenario := range []string{"a", "b"} {
		if !strings.Contains(svg, ">"+scenario+"</text>") {
			t.Errorf("Expected legend entry for scenario %s", scenario)
		}
	}
}

func TestWeeklyChart_EmptyInput(t *testing.T) {
	svg := NewWeeklyChart().GenerateSVG(nil)
	if !strings.Contains(svg, "No Projected Demand") {
		t.Errorf("Expected empty chart placeholder, got: %s", svg)
	}
}

func TestHTMLReport_Render(t *testing.T) {
	run := entities.NewProjectionRun([]string{"a"}, entities.IntervalWeek)
	result := &dto.ProjectionResult{
		Run: run,
		Records: []*entities.DemandRecord{
			testRecord("a", entities.Date(2024, 12, 1), entities.Dosage100mg, 1, 760),
			testRecord("a", entities.Date(2024, 12, 1), entities.Dosage50mg, 1, 40),
		},
		Elapsed: 12 * time.Millisecond,
	}

	html, err := NewHTMLReport().Render(result, Config{Elapsed: result.Elapsed})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, want := range []string{run.ID, "Season Totals", "Dose Mix", "1x100mg", "1x50mg", "<svg"} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected report to contain %q", want)
		}
	}
}

func TestRenderTables(t *testing.T) {
	run := entities.NewProjectionRun([]string{"a", "b"}, entities.IntervalWeek)
	header := RenderRunHeader(run)
	if !strings.Contains(header, run.ID) {
		t.Errorf("Expected header to contain run id, got: %s", header)
	}

	quantity := entities.DrugQuantity{Dosage: entities.Dosage50mg, NDoses: 2}
	totals := []dto.DoseTotal{
		{Scenario: "a", Quantity: quantity, Doses: decimal.NewFromInt(150)},
	}
	table := RenderTotalsTable("Season Totals", totals, "")
	for _, want := range []string{"Season Totals", "Scenario", "2x50mg", "150"} {
		if !strings.Contains(table, want) {
			t.Errorf("Expected totals table to contain %q, got: %s", want, table)
		}
	}

	mix := []dto.MixShare{
		{Scenario: "a", Quantity: quantity, Doses: decimal.NewFromInt(150), Share: decimal.RequireFromString("0.75")},
	}
	mixTable := RenderMixTable("Dose Mix", mix)
	if !strings.Contains(mixTable, "0.75") {
		t.Errorf("Expected mix table to contain the share, got: %s", mixTable)
	}
}
