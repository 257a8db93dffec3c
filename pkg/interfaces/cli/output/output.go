package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ebirch/rsvdemand/pkg/application/dto"
	"github.com/ebirch/rsvdemand/pkg/application/services/projection"
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format     string
	OutputDir  string
	Verbose    bool
	Elapsed    time.Duration
	InputFiles map[string]string
}

// Generate creates output in the specified format
func Generate(result *dto.ProjectionResult, scenarios []*entities.Scenario, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, scenarios, config)
	case "html":
		return generateHTMLOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput prints a human-readable run summary to stdout
func generateTextOutput(result *dto.ProjectionResult, config Config) error {
	aggregator := projection.NewAggregator()

	fmt.Printf("📊 Demand Projection Summary\n")
	fmt.Printf("============================\n\n")

	fmt.Printf("Run: %s\n", result.Run.ID)
	fmt.Printf("Scenarios: %d\n", len(result.Run.Scenarios))
	fmt.Printf("Demand Records: %d\n", len(result.Records))
	fmt.Printf("Total Doses: %s\n", result.TotalDoses().StringFixed(0))
	fmt.Printf("Projection Time: %v\n\n", config.Elapsed)

	totals := aggregator.SeasonTotals(result.Records)
	if len(totals) > 0 {
		fmt.Printf("💉 Season Totals:\n")
		fmt.Printf("%-20s %-10s %-14s\n", "Scenario", "Quantity", "Doses")
		fmt.Printf("%-20s %-10s %-14s\n", "--------------------", "----------", "--------------")
		for _, total := range totals {
			fmt.Printf("%-20s %-10s %-14s\n",
				total.Scenario, total.Quantity.Key(), total.Doses.StringFixed(0))
		}
		fmt.Println()
	}

	mix := aggregator.Mix(result.Records)
	if len(mix) > 0 {
		fmt.Printf("🧪 Dose Mix:\n")
		fmt.Printf("%-20s %-10s %-14s %-8s\n", "Scenario", "Quantity", "Doses", "Share")
		fmt.Printf("%-20s %-10s %-14s %-8s\n",
			"--------------------", "----------", "--------------", "--------")
		for _, row := range mix {
			fmt.Printf("%-20s %-10s %-14s %-8s\n",
				row.Scenario, row.Quantity.Key(), row.Doses.StringFixed(0), row.Share.String())
		}
		fmt.Println()
	}

	return nil
}

// generateJSONOutput writes the run, its records, and the standard aggregate
// tables as one JSON document
func generateJSONOutput(result *dto.ProjectionResult, config Config) error {
	aggregator := projection.NewAggregator()

	jsonResult := struct {
		Metadata struct {
			RunID          string            `json:"run_id"`
			CreatedAt      string            `json:"created_at"`
			GeneratedAt    string            `json:"generated_at"`
			ProjectionTime string            `json:"projection_time"`
			InputFiles     map[string]string `json:"input_files"`
		} `json:"metadata"`
		Summary struct {
			Scenarios  []string `json:"scenarios"`
			Records    int      `json:"records"`
			TotalDoses string   `json:"total_doses"`
		} `json:"summary"`
		SeasonTotals []dto.DoseTotal          `json:"season_totals"`
		DoseMix      []dto.MixShare           `json:"dose_mix"`
		DosesByWeek  []dto.DoseTotal          `json:"doses_by_week"`
		Records      []*entities.DemandRecord `json:"records"`
	}{
		SeasonTotals: aggregator.SeasonTotals(result.Records),
		DoseMix:      aggregator.Mix(result.Records),
		DosesByWeek:  aggregator.DosesByWeek(result.Records),
		Records:      result.Records,
	}

	jsonResult.Metadata.RunID = result.Run.ID
	jsonResult.Metadata.CreatedAt = result.Run.CreatedAt.Format(time.RFC3339)
	jsonResult.Metadata.GeneratedAt = time.Now().Format(time.RFC3339)
	jsonResult.Metadata.ProjectionTime = config.Elapsed.String()
	jsonResult.Metadata.InputFiles = config.InputFiles
	jsonResult.Summary.Scenarios = result.Run.Scenarios
	jsonResult.Summary.Records = len(result.Records)
	jsonResult.Summary.TotalDoses = result.TotalDoses().String()

	jsonBytes, err := json.MarshalIndent(jsonResult, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Printf("%s\n", jsonBytes)
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "projection_results.json")
	if err := os.WriteFile(filename, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	if config.Verbose {
		fmt.Printf("📄 JSON output written to: %s\n", filename)
	}

	return nil
}

// generateCSVOutput writes the record table plus one CSV per aggregate
func generateCSVOutput(result *dto.ProjectionResult, scenarios []*entities.Scenario, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("CSV output requires an output directory (-output)")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	aggregator := projection.NewAggregator()

	files := []struct {
		name  string
		write func(string) error
	}{
		{"demand_records.csv", func(path string) error {
			return writeRecordsCSV(result.Records, scenarios, path)
		}},
		{"season_totals.csv", func(path string) error {
			return writeTotalsCSV(aggregator.SeasonTotals(result.Records), "", path)
		}},
		{"doses_by_week.csv", func(path string) error {
			return writeTotalsCSV(aggregator.DosesByWeek(result.Records), "week", path)
		}},
		{"doses_by_cohort.csv", func(path string) error {
			return writeTotalsCSV(aggregator.DosesByBirthCohort(result.Records), "birth_date", path)
		}},
		{"dose_mix.csv", func(path string) error {
			return writeMixCSV(aggregator.Mix(result.Records), path)
		}},
	}

	for _, file := range files {
		path := filepath.Join(config.OutputDir, file.name)
		if err := file.write(path); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.name, err)
		}
		if config.Verbose {
			fmt.Printf("📄 CSV written to: %s\n", path)
		}
	}

	return nil
}

// generateHTMLOutput renders the standalone HTML report
func generateHTMLOutput(result *dto.ProjectionResult, config Config) error {
	report := NewHTMLReport()
	html, err := report.Render(result, config)
	if err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Print(html)
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "projection_report.html")
	if err := os.WriteFile(filename, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}

	if config.Verbose {
		fmt.Printf("📄 HTML report written to: %s\n", filename)
	}

	return nil
}
