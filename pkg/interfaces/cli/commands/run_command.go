package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ebirch/rsvdemand/pkg/application/dto"
	"github.com/ebirch/rsvdemand/pkg/application/services/projection"
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/ebirch/rsvdemand/pkg/infrastructure/config"
	"github.com/ebirch/rsvdemand/pkg/infrastructure/events"
	"github.com/ebirch/rsvdemand/pkg/infrastructure/repositories/csv"
	"github.com/ebirch/rsvdemand/pkg/infrastructure/repositories/memory"
	"github.com/ebirch/rsvdemand/pkg/infrastructure/repositories/sqlite"
	"github.com/ebirch/rsvdemand/pkg/interfaces/cli/output"
)

// Config holds configuration for the run command
type Config struct {
	DataDir      string
	ScenarioFile string
	BirthsFile   string
	WeightsFile  string
	DBFile       string
	OutputDir    string
	Format       string
	Workers      int
	Verbose      bool
	Help         bool
}

// RunCommand handles the main demand projection logic
type RunCommand struct {
	config Config
}

// NewRunCommand creates a new run command with the given configuration
func NewRunCommand(config Config) *RunCommand {
	return &RunCommand{
		config: config,
	}
}

// Execute runs the demand projection command
func (c *RunCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	// Validate inputs
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	// Determine input files
	files, err := c.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(files)
	}

	// Load input data
	if c.config.Verbose {
		fmt.Println("📂 Loading input data...")
	}

	scenarios, err := config.LoadScenarios(files["Scenarios"])
	if err != nil {
		return fmt.Errorf("error loading scenarios: %w", err)
	}

	csvLoader := csv.NewLoader()

	cohorts, err := csvLoader.LoadBirths(files["Births"])
	if err != nil {
		return fmt.Errorf("error loading births: %w", err)
	}

	buckets, err := csvLoader.LoadGrowthChart(files["Weights"])
	if err != nil {
		return fmt.Errorf("error loading weights: %w", err)
	}

	if c.config.Verbose {
		fmt.Printf("✅ Data loaded successfully:\n")
		fmt.Printf("  Scenarios: %d\n", len(scenarios))
		fmt.Printf("  Birth Cohorts: %d\n", len(cohorts))
		fmt.Printf("  Weight Buckets: %d\n", len(buckets))
		fmt.Println()
	}

	// Derive weekly cohorts when a scenario needs them and the births file
	// only carries monthly counts
	cohorts, err = c.deriveWeeklyCohorts(scenarios, cohorts)
	if err != nil {
		return err
	}

	// Create repositories
	birthRepo := memory.NewBirthRepository(len(cohorts))
	if err := birthRepo.LoadCohorts(cohorts); err != nil {
		return fmt.Errorf("failed to load cohorts into repository: %w", err)
	}

	chartRepo := memory.NewGrowthChartRepository(len(buckets))
	if err := chartRepo.LoadBuckets(buckets); err != nil {
		return fmt.Errorf("failed to load weight buckets into repository: %w", err)
	}

	// Create the projection service
	eventStore := events.NewInMemoryEventStore()
	if c.config.Verbose {
		if err := eventStore.Subscribe(
			[]string{events.ScenarioCompletedEvent}, scenarioProgress{},
		); err != nil {
			return fmt.Errorf("failed to subscribe to projection events: %w", err)
		}
	}
	service := projection.NewEventDrivenProjectionServiceWithConfig(
		projection.ServiceConfig{Workers: c.config.Workers},
		eventStore,
	)

	// Run the projection
	if c.config.Verbose {
		fmt.Println("🔄 Running demand projection...")
	}

	result, err := service.RunScenarios(ctx, scenarios, birthRepo, chartRepo)
	if err != nil {
		return fmt.Errorf("error running projection: %w", err)
	}

	if c.config.Verbose {
		fmt.Printf("✅ Projection completed in %v\n\n", result.Elapsed)
	}

	// Persist the run if a database file was given
	if c.config.DBFile != "" {
		if err := c.saveRun(ctx, result); err != nil {
			return err
		}
		if c.config.Verbose {
			fmt.Printf("💾 Saved run %s to %s\n\n", result.Run.ID, c.config.DBFile)
		}
	}

	// Generate output
	outputConfig := output.Config{
		Format:     c.config.Format,
		OutputDir:  c.config.OutputDir,
		Verbose:    c.config.Verbose,
		Elapsed:    result.Elapsed,
		InputFiles: files,
	}

	if err := output.Generate(result, scenarios, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Verbose {
		fmt.Println("🏁 Demand projection complete!")
	}

	return nil
}

// deriveWeeklyCohorts splits monthly cohorts into weekly ones when at least
// one scenario projects on a weekly interval. The monthly originals stay
// loaded so monthly scenarios in the same file keep working.
func (c *RunCommand) deriveWeeklyCohorts(
	scenarios []*entities.Scenario,
	cohorts []*entities.BirthCohort,
) ([]*entities.BirthCohort, error) {
	needWeekly := false
	for _, scenario := range scenarios {
		if scenario.Config.Interval == entities.IntervalWeek {
			needWeekly = true
			break
		}
	}
	if !needWeekly {
		return cohorts, nil
	}

	for _, cohort := range cohorts {
		if cohort.Interval != entities.IntervalMonth {
			return cohorts, nil
		}
	}

	weekly, err := csv.WeeklyFromMonthly(cohorts)
	if err != nil {
		return nil, fmt.Errorf("error deriving weekly cohorts: %w", err)
	}

	if c.config.Verbose {
		fmt.Printf("📆 Derived %d weekly cohorts from %d monthly cohorts\n\n", len(weekly), len(cohorts))
	}

	return append(cohorts, weekly...), nil
}

// scenarioProgress prints scenario completions as the run publishes them
type scenarioProgress struct{}

func (scenarioProgress) Handle(event events.Event) error {
	completed, ok := event.Data().(events.ScenarioCompleted)
	if !ok {
		return nil
	}
	fmt.Printf("  📨 %s: %d records, %s doses\n",
		completed.Scenario, completed.Records, completed.Doses.StringFixed(0))
	return nil
}

func (scenarioProgress) CanHandle(eventType string) bool {
	return eventType == events.ScenarioCompletedEvent
}

// saveRun persists the run and its records to the SQLite database
func (c *RunCommand) saveRun(ctx context.Context, result *dto.ProjectionResult) error {
	store, err := sqlite.Open(c.config.DBFile)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	repo := sqlite.NewDemandRepository(store)
	if err := repo.SaveRun(ctx, result.Run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if err := repo.SaveRecords(ctx, result.Records); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}

	return nil
}

// validateInputs validates the command configuration
func (c *RunCommand) validateInputs() error {
	if c.config.DataDir == "" &&
		(c.config.ScenarioFile == "" || c.config.BirthsFile == "" || c.config.WeightsFile == "") {
		return fmt.Errorf("must specify either -data directory or individual input files")
	}
	return nil
}

// resolveInputFiles determines the actual file paths to use
func (c *RunCommand) resolveInputFiles() (map[string]string, error) {
	var scenarioPath, birthsPath, weightsPath string

	if c.config.DataDir != "" {
		// Use data directory
		scenarioPath = filepath.Join(c.config.DataDir, "scenarios.toml")
		birthsPath = filepath.Join(c.config.DataDir, "births.csv")
		weightsPath = filepath.Join(c.config.DataDir, "weights.csv")
	} else {
		// Use individual files
		scenarioPath = c.config.ScenarioFile
		birthsPath = c.config.BirthsFile
		weightsPath = c.config.WeightsFile
	}

	files := map[string]string{
		"Scenarios": scenarioPath,
		"Births":    birthsPath,
		"Weights":   weightsPath,
	}

	// Validate files exist
	for name, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return files, nil
}

// printHeader prints the command header information
func (c *RunCommand) printHeader(files map[string]string) {
	fmt.Printf("🚀 RSV Demand Projection CLI\n")
	fmt.Printf("Input files:\n")
	fmt.Printf("  Scenarios: %s\n", files["Scenarios"])
	fmt.Printf("  Births: %s\n", files["Births"])
	fmt.Printf("  Weights: %s\n", files["Weights"])
	fmt.Printf("Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Printf("Output directory: %s\n", c.config.OutputDir)
	}
	if c.config.DBFile != "" {
		fmt.Printf("Database: %s\n", c.config.DBFile)
	}
	fmt.Println()
}

// showHelp displays the help message
func (c *RunCommand) showHelp() {
	fmt.Printf(`rsvdemand run - Project nirsevimab demand for immunization scenarios

USAGE:
    rsvdemand run -data <directory>              # Use data directory with input files
    rsvdemand run -scenarios <file> ...          # Use individual input files

OPTIONS:
    -data <dir>         Path to data directory containing input files
    -scenarios <file>   Path to scenarios TOML file
    -births <file>      Path to birth cohorts CSV file
    -weights <file>     Path to weight-for-age CSV file
    -db <file>          SQLite database to persist the run (optional)
    -output <dir>       Output directory for results (optional)
    -format <fmt>       Output format: text, json, csv, html (default: text)
    -workers <n>        Number of concurrent scenario workers (default: number of CPUs)
    -verbose            Enable verbose output
    -help               Show this help message

DATA DIRECTORY STRUCTURE:
    data_dir/
    ├── scenarios.toml  # Scenario definitions
    ├── births.csv      # Birth cohorts per place and interval
    └── weights.csv     # Weight-for-age growth charts

INPUT FILE FORMATS:

births.csv:
    interval,place,date,births
    month,11,2024-09-01,1052
    month,11,2024-10-01,987

weights.csv:
    source,interval,age,p_threshold
    WHO,month,0,0.95
    WHO,month,1,0.77

scenarios.toml:
    [defaults]
    interval = "month"
    season_start = "2024-10-01"
    season_end = "2025-03-31"
    growth_chart = "WHO"

    [[scenario]]
    name = "baseline"
    uptake = 0.6
    p_high_risk = 0.05

    [[scenario]]
    name = "high_uptake"
    uptake = 0.9
    p_high_risk = 0.05
    [scenario.delays]
    0 = 0.8
    4 = 0.2

EXAMPLES:
    # Run scenarios from a data directory
    rsvdemand run -data examples/season_2024 -verbose

    # Run with individual files and persist the run
    rsvdemand run -scenarios scenarios.toml -births births.csv -weights weights.csv -db runs.db

    # Generate JSON output
    rsvdemand run -data examples/season_2024 -format json -output results/

    # Generate an HTML report
    rsvdemand run -data examples/season_2024 -format html -output results/
`)
}
