package commands

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
)

// GenerateConfig holds configuration for synthetic input generation
type GenerateConfig struct {
	Places    int    // Number of places to generate births for
	Months    int    // Number of monthly birth cohorts per place
	Scenarios int    // Number of scenarios to generate
	Births    int    // Mean monthly births per place
	Start     string // First cohort month (YYYY-MM-DD)
	OutputDir string // Output directory for generated files
	Seed      int64  // Random seed for reproducible generation
	Help      bool   // Show help
	Verbose   bool   // Verbose output
}

// GenerateCommand handles synthetic input generation
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}

	if cmd.config.Places <= 0 || cmd.config.Months <= 0 ||
		cmd.config.Scenarios <= 0 || cmd.config.Births <= 0 {
		return fmt.Errorf("places, months, scenarios, and births must be positive")
	}

	start, err := entities.ParseDate(cmd.config.Start)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Printf(
			"🔧 Generating %d places, %d months of births, %d scenarios\n",
			cmd.config.Places,
			cmd.config.Months,
			cmd.config.Scenarios,
		)
		fmt.Printf("📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Printf("🎲 Random seed: %d\n", cmd.config.Seed)
	}

	// Create output directory
	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Generate births.csv
	if cmd.config.Verbose {
		fmt.Println("👶 Generating births.csv...")
	}
	if err := cmd.generateBirths(start); err != nil {
		return fmt.Errorf("failed to generate births: %w", err)
	}

	// Generate weights.csv
	if cmd.config.Verbose {
		fmt.Println("⚖️ Generating weights.csv...")
	}
	if err := cmd.generateWeights(); err != nil {
		return fmt.Errorf("failed to generate weights: %w", err)
	}

	// Generate scenarios.toml
	if cmd.config.Verbose {
		fmt.Println("📋 Generating scenarios.toml...")
	}
	if err := cmd.generateScenarios(start); err != nil {
		return fmt.Errorf("failed to generate scenarios: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Printf("✅ Data generated successfully in %s\n", cmd.config.OutputDir)
	}

	return nil
}

// generateBirths creates the births.csv file
func (cmd *GenerateCommand) generateBirths(start time.Time) error {
	filePath := filepath.Join(cmd.config.OutputDir, "births.csv")
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write header
	fmt.Fprintln(file, "interval,place,date,births")

	for place := 1; place <= cmd.config.Places; place++ {
		// Each place gets its own size class so totals are not uniform
		scale := 0.5 + 1.5*cmd.rand.Float64()
		base := int(float64(cmd.config.Births) * scale)

		for month := 0; month < cmd.config.Months; month++ {
			date := entities.AddMonths(start, month)
			fmt.Fprintf(file, "month,%d,%s,%d\n",
				place, date.Format(entities.DateFormat), cmd.jitterCount(base))
		}
	}

	return nil
}

// jitterCount varies a count by up to roughly ten percent
func (cmd *GenerateCommand) jitterCount(base int) int {
	spread := base / 10
	if spread < 1 {
		spread = 1
	}
	return base + cmd.rand.Intn(2*spread+1) - spread
}

// generateWeights creates the weights.csv file with a monthly and a weekly
// chart for the same source
func (cmd *GenerateCommand) generateWeights() error {
	filePath := filepath.Join(cmd.config.OutputDir, "weights.csv")
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write header
	fmt.Fprintln(file, "source,interval,age,p_threshold")

	// Share of a cohort crossing the dosing weight threshold at each age in
	// months. The loader normalizes each chart, so jittered masses need not
	// sum to one.
	masses := []float64{0.04, 0.22, 0.38, 0.21, 0.10, 0.05}

	for age, mass := range masses {
		fmt.Fprintf(file, "WHO,month,%d,%.4f\n", age, cmd.jitterMass(mass))
	}

	// Weekly chart: spread each month's mass across its four weeks
	for age, mass := range masses {
		for week := 0; week < 4; week++ {
			fmt.Fprintf(file, "WHO,week,%d,%.4f\n", age*4+week, cmd.jitterMass(mass/4))
		}
	}

	return nil
}

// jitterMass varies a probability mass by up to ten percent either way
func (cmd *GenerateCommand) jitterMass(mass float64) float64 {
	return mass * (0.9 + 0.2*cmd.rand.Float64())
}

// generateScenarios creates the scenarios.toml file
func (cmd *GenerateCommand) generateScenarios(start time.Time) error {
	filePath := filepath.Join(cmd.config.OutputDir, "scenarios.toml")
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	// The season opens four months after the first cohort and runs six months
	seasonStart := entities.AddMonths(start, 4)
	seasonEnd := entities.AddMonths(start, 10).AddDate(0, 0, -1)

	fmt.Fprintln(file, "[defaults]")
	fmt.Fprintln(file, `interval = "month"`)
	fmt.Fprintf(file, "season_start = %q\n", seasonStart.Format(entities.DateFormat))
	fmt.Fprintf(file, "season_end = %q\n", seasonEnd.Format(entities.DateFormat))
	fmt.Fprintln(file, `growth_chart = "WHO"`)
	fmt.Fprintln(file, "p_high_risk = 0.05")

	for i := 0; i < cmd.config.Scenarios; i++ {
		fmt.Fprintln(file)
		fmt.Fprintln(file, "[[scenario]]")
		fmt.Fprintf(file, "name = %q\n", fmt.Sprintf("scenario_%03d", i+1))
		fmt.Fprintf(file, "uptake = %.2f\n", 0.4+0.5*cmd.rand.Float64())

		// Every other scenario delays part of its uptake. The delayed share
		// is rounded before its complement is derived so the two proportions
		// sum to exactly one.
		if i%2 == 1 {
			delayed := math.Round((0.1+0.3*cmd.rand.Float64())*100) / 100
			fmt.Fprintln(file, "[scenario.delays]")
			fmt.Fprintf(file, "0 = %.2f\n", 1-delayed)
			fmt.Fprintf(file, "%d = %.2f\n", 1+cmd.rand.Intn(3), delayed)
		}
	}

	return nil
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Println(`rsvdemand generate - Generate synthetic projection inputs

USAGE:
    rsvdemand generate [OPTIONS]

OPTIONS:
    -places <N>         Number of places to generate births for (default: 5)
    -months <N>         Number of monthly birth cohorts per place (default: 12)
    -scenarios <N>      Number of scenarios to generate (default: 3)
    -births <N>         Mean monthly births per place (default: 1000)
    -start <date>       First cohort month, YYYY-MM-DD (default: 2024-06-01)
    -output <DIR>       Output directory for generated files (default: ./generated)
    -seed <N>           Random seed for reproducible generation (optional)
    -verbose            Enable verbose output
    -help               Show this help message

GENERATED FILES:
    births.csv          Monthly birth cohorts per place
    weights.csv         Weight-for-age charts (monthly and weekly)
    scenarios.toml      Scenario definitions with varied uptake and delays

EXAMPLES:
    # Generate a small data set
    rsvdemand generate -output ./test_data

    # Generate a large reproducible data set
    rsvdemand generate -places 50 -months 18 -scenarios 10 -output ./large_data -seed 12345

    # Generate and immediately project
    rsvdemand generate -output ./data && rsvdemand run -data ./data -verbose`)
}
