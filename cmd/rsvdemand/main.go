package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/ebirch/rsvdemand/pkg/interfaces/cli/commands"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCommand(os.Args[2:])
	case "report":
		err = reportCommand(os.Args[2:])
	case "generate":
		err = generateCommand(os.Args[2:])
	case "help", "-help", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(args []string) error {
	flags := flag.NewFlagSet("run", flag.ExitOnError)

	var (
		dataDir      = flags.String("data", "", "Path to data directory containing input files")
		scenarioFile = flags.String("scenarios", "", "Path to scenarios TOML file")
		birthsFile   = flags.String("births", "", "Path to birth cohorts CSV file")
		weightsFile  = flags.String("weights", "", "Path to weight-for-age CSV file")
		dbFile       = flags.String("db", "", "SQLite database to persist the run (optional)")
		outputDir    = flags.String("output", "", "Output directory for results (optional)")
		format       = flags.String("format", "text", "Output format: text, json, csv, html")
		workers      = flags.Int("workers", runtime.NumCPU(), "Number of concurrent scenario workers")
		verbose      = flags.Bool("verbose", false, "Enable verbose output")
		help         = flags.Bool("help", false, "Show help message")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	config := commands.Config{
		DataDir:      *dataDir,
		ScenarioFile: *scenarioFile,
		BirthsFile:   *birthsFile,
		WeightsFile:  *weightsFile,
		DBFile:       *dbFile,
		OutputDir:    *outputDir,
		Format:       *format,
		Workers:      *workers,
		Verbose:      *verbose,
		Help:         *help,
	}

	return commands.NewRunCommand(config).Execute(context.Background())
}

func reportCommand(args []string) error {
	flags := flag.NewFlagSet("report", flag.ExitOnError)

	var (
		dbFile      = flags.String("db", "", "Path to a SQLite database written by 'rsvdemand run -db'")
		runID       = flags.String("run", "", "Run to report on (default: latest run)")
		cutoff      = flags.String("cutoff", "", "Also show the dose mix before this date (YYYY-MM-DD)")
		interactive = flags.Bool("interactive", false, "Start an interactive run browser")
		verbose     = flags.Bool("verbose", false, "Enable verbose output")
		help        = flags.Bool("help", false, "Show help message")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	config := commands.ReportConfig{
		DBFile:      *dbFile,
		RunID:       *runID,
		Cutoff:      *cutoff,
		Interactive: *interactive,
		Verbose:     *verbose,
		Help:        *help,
	}

	return commands.NewReportCommand(config).Execute(context.Background())
}

func generateCommand(args []string) error {
	flags := flag.NewFlagSet("generate", flag.ExitOnError)

	var (
		places    = flags.Int("places", 5, "Number of places to generate births for")
		months    = flags.Int("months", 12, "Number of monthly birth cohorts per place")
		scenarios = flags.Int("scenarios", 3, "Number of scenarios to generate")
		births    = flags.Int("births", 1000, "Mean monthly births per place")
		start     = flags.String("start", "2024-06-01", "First cohort month (YYYY-MM-DD)")
		outputDir = flags.String("output", "./generated", "Output directory for generated files")
		seed      = flags.Int64("seed", 0, "Random seed for reproducible generation")
		verbose   = flags.Bool("verbose", false, "Enable verbose output")
		help      = flags.Bool("help", false, "Show help message")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	config := commands.GenerateConfig{
		Places:    *places,
		Months:    *months,
		Scenarios: *scenarios,
		Births:    *births,
		Start:     *start,
		OutputDir: *outputDir,
		Seed:      *seed,
		Verbose:   *verbose,
		Help:      *help,
	}

	return commands.NewGenerateCommand(config).Execute(context.Background())
}

func printUsage() {
	fmt.Println(`rsvdemand - Childhood RSV immunization demand projection

USAGE:
    rsvdemand <command> [OPTIONS]

COMMANDS:
    run         Project demand for a set of scenarios
    report      Render a persisted projection run
    generate    Generate synthetic projection inputs
    help        Show this help message

Run 'rsvdemand <command> -help' for command options.`)
}
