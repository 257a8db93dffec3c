package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/ebirch/rsvdemand/pkg/application/dto"
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
)

// recordHeader lists the result columns in export order. The first column
// must stay the scenario name; AddScenarioColumns keys on it.
var recordHeader = []string{
	"scenario", "place", "birth_date", "risk_level", "delay",
	"threshold_age", "date", "dosage", "n_doses", "size", "doses",
}

// recordRow flattens one demand record into export columns
func recordRow(record *entities.DemandRecord) []string {
	return []string{
		record.Scenario,
		string(record.Place),
		record.BirthDate.Format(entities.DateFormat),
		record.RiskLevel.String(),
		fmt.Sprintf("%d", record.Delay),
		fmt.Sprintf("%d", record.ThresholdAge),
		record.Date.Format(entities.DateFormat),
		record.Dosage.String(),
		fmt.Sprintf("%d", record.NDoses),
		record.Size.String(),
		record.Doses.String(),
	}
}

// AddScenarioColumns appends one column per scenario parameter to a result
// table whose first column is the scenario name. Every row gets its own
// scenario's parameter values, so filtered exports stay self-describing. A
// parameter name already present in the header is a configuration error.
func AddScenarioColumns(
	header []string,
	rows [][]string,
	scenarios []*entities.Scenario,
) ([]string, [][]string, error) {
	names, values := scenarioParameters(scenarios)

	reserved := make(map[string]bool, len(header))
	for _, column := range header {
		reserved[column] = true
	}
	for _, name := range names {
		if reserved[name] {
			return nil, nil, entities.NewConfigurationError(
				"scenario parameter column %q collides with a result column", name)
		}
	}

	outHeader := make([]string, 0, len(header)+len(names))
	outHeader = append(outHeader, header...)
	outHeader = append(outHeader, names...)

	outRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		scenario := row[0]
		params, known := values[scenario]
		if !known {
			return nil, nil, fmt.Errorf("row references unknown scenario %q", scenario)
		}
		outRow := make([]string, 0, len(outHeader))
		outRow = append(outRow, row...)
		outRow = append(outRow, params...)
		outRows = append(outRows, outRow)
	}

	return outHeader, outRows, nil
}

// scenarioParameters derives the parameter column names, and each scenario's
// values for them, from a scenario set. Delay columns are the union across
// scenarios; a scenario without a given delay reports proportion zero.
func scenarioParameters(scenarios []*entities.Scenario) ([]string, map[string][]string) {
	delaySet := make(map[int]bool)
	for _, scenario := range scenarios {
		for delay := range scenario.Delays {
			delaySet[delay] = true
		}
	}
	delays := make([]int, 0, len(delaySet))
	for delay := range delaySet {
		delays = append(delays, delay)
	}
	sort.Ints(delays)

	names := []string{"uptake", "p_high_risk", "growth_chart", "season_start", "season_end"}
	for _, delay := range delays {
		names = append(names, fmt.Sprintf("delay_%d", delay))
	}

	values := make(map[string][]string, len(scenarios))
	for _, scenario := range scenarios {
		row := []string{
			scenario.Uptake.String(),
			scenario.HighRisk.String(),
			scenario.GrowthChart,
			scenario.Config.SeasonStart.Format(entities.DateFormat),
			scenario.Config.SeasonEnd.Format(entities.DateFormat),
		}
		for _, delay := range delays {
			if proportion, ok := scenario.Delays[delay]; ok {
				row = append(row, proportion.String())
			} else {
				row = append(row, "0")
			}
		}
		values[scenario.Name] = row
	}

	return names, values
}

// writeRecordsCSV exports the per-demand result table with scenario
// parameter columns appended
func writeRecordsCSV(records []*entities.DemandRecord, scenarios []*entities.Scenario, filename string) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, recordRow(record))
	}

	header, rows, err := AddScenarioColumns(recordHeader, rows, scenarios)
	if err != nil {
		return err
	}

	return writeCSV(filename, header, rows)
}

// writeTotalsCSV exports one aggregate table. The date column is omitted for
// whole-season reductions.
func writeTotalsCSV(totals []dto.DoseTotal, dateColumn, filename string) error {
	header := []string{"scenario", "quantity", "doses"}
	if dateColumn != "" {
		header = []string{"scenario", dateColumn, "quantity", "doses"}
	}

	rows := make([][]string, 0, len(totals))
	for _, total := range totals {
		if dateColumn == "" {
			rows = append(rows, []string{total.Scenario, total.Quantity.Key(), total.Doses.String()})
			continue
		}
		rows = append(rows, []string{
			total.Scenario,
			total.Date.Format(entities.DateFormat),
			total.Quantity.Key(),
			total.Doses.String(),
		})
	}

	return writeCSV(filename, header, rows)
}

// writeMixCSV exports the dose-mix table
func writeMixCSV(mix []dto.MixShare, filename string) error {
	header := []string{"scenario", "quantity", "doses", "share"}
	rows := make([][]string, 0, len(mix))
	for _, row := range mix {
		rows = append(rows, []string{
			row.Scenario, row.Quantity.Key(), row.Doses.String(), row.Share.String(),
		})
	}
	return writeCSV(filename, header, rows)
}

func writeCSV(filename string, header []string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}
