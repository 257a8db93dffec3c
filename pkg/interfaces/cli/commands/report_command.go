package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ebirch/rsvdemand/pkg/application/services/projection"
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/ebirch/rsvdemand/pkg/infrastructure/repositories/sqlite"
	"github.com/ebirch/rsvdemand/pkg/interfaces/cli/output"
)

// ReportConfig holds configuration for the report command
type ReportConfig struct {
	DBFile      string
	RunID       string
	Cutoff      string
	Interactive bool
	Verbose     bool
	Help        bool
}

// ReportCommand renders persisted projection runs as terminal reports
type ReportCommand struct {
	config     ReportConfig
	repo       *sqlite.DemandRepository
	aggregator *projection.Aggregator
	run        *entities.ProjectionRun
	records    []*entities.DemandRecord
	scanner    *bufio.Scanner
}

// NewReportCommand creates a new report command with the given configuration
func NewReportCommand(config ReportConfig) *ReportCommand {
	return &ReportCommand{
		config:     config,
		aggregator: projection.NewAggregator(),
		scanner:    bufio.NewScanner(os.Stdin),
	}
}

// Execute runs the report command
func (c *ReportCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.printHelp()
		return nil
	}

	if c.config.DBFile == "" {
		return fmt.Errorf("database file is required (use -db)")
	}
	if _, err := os.Stat(c.config.DBFile); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s", c.config.DBFile)
	}

	store, err := sqlite.Open(c.config.DBFile)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	c.repo = sqlite.NewDemandRepository(store)

	if c.config.Interactive {
		// An empty database is fine here, runs can be selected later
		if err := c.loadRun(ctx, c.config.RunID); err != nil {
			fmt.Printf("Note: %v\n", err)
		}
		return c.runInteractiveSession(ctx)
	}

	if err := c.loadRun(ctx, c.config.RunID); err != nil {
		return err
	}

	return c.printFullReport()
}

// loadRun loads a run and its demand records, defaulting to the latest run
func (c *ReportCommand) loadRun(ctx context.Context, runID string) error {
	var run *entities.ProjectionRun
	var err error

	if runID == "" {
		run, err = c.repo.GetLatestRun(ctx)
	} else {
		run, err = c.repo.GetRun(ctx, runID)
	}
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	records, err := c.repo.GetRecords(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load records for run %s: %w", run.ID, err)
	}

	c.run = run
	c.records = records

	if c.config.Verbose {
		fmt.Printf("📂 Loaded run %s with %d records\n\n", run.ID, len(records))
	}

	return nil
}

// printFullReport renders every report section for the selected run
func (c *ReportCommand) printFullReport() error {
	fmt.Println(output.RenderRunHeader(c.run))
	fmt.Println()
	fmt.Println(output.RenderSummaryTable(c.run, c.records))
	fmt.Println()
	fmt.Println(output.RenderTotalsTable("Season Totals", c.aggregator.SeasonTotals(c.records), ""))
	fmt.Println()
	fmt.Println(output.RenderTotalsTable("Doses by Week", c.aggregator.DosesByWeek(c.records), "Week"))
	fmt.Println()
	fmt.Println(output.RenderTotalsTable("Doses by Birth Cohort", c.aggregator.DosesByBirthCohort(c.records), "Birth Date"))
	fmt.Println()
	fmt.Println(output.RenderMixTable("Dose Mix", c.aggregator.Mix(c.records)))

	if c.config.Cutoff != "" {
		cutoff, err := entities.ParseDate(c.config.Cutoff)
		if err != nil {
			return fmt.Errorf("invalid cutoff: %w", err)
		}
		fmt.Println()
		fmt.Println(output.RenderMixTable(
			fmt.Sprintf("Dose Mix Before %s", c.config.Cutoff),
			c.aggregator.MixBefore(c.records, cutoff),
		))
	}

	return nil
}

func (c *ReportCommand) runInteractiveSession(ctx context.Context) error {
	fmt.Println("=== Projection Run Browser ===")
	fmt.Println("Type 'help' for available commands")
	fmt.Println()

	for {
		fmt.Print("rsvdemand> ")
		if !c.scanner.Scan() {
			break
		}

		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}

		if err := c.processCommand(ctx, line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		fmt.Println()
	}

	return nil
}

func (c *ReportCommand) processCommand(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := parts[0]
	args := parts[1:]

	switch command {
	case "help", "h":
		c.printInteractiveHelp()
	case "runs":
		return c.handleListRuns(ctx)
	case "use":
		return c.handleUseRun(ctx, args)
	case "show":
		return c.handleShow()
	case "weeks":
		return c.handleWeeks()
	case "cohorts":
		return c.handleCohorts()
	case "mix":
		return c.handleMix(args)
	case "quit", "q", "exit":
		fmt.Println("Goodbye!")
		os.Exit(0)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", command)
	}

	return nil
}

func (c *ReportCommand) handleListRuns(ctx context.Context) error {
	runs, err := c.repo.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs stored")
		return nil
	}

	fmt.Printf("%-38s %-22s %-7s %s\n", "Run ID", "Created", "Unit", "Scenarios")
	for _, run := range runs {
		fmt.Printf("%-38s %-22s %-7s %s\n",
			run.ID,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			string(run.Interval),
			strings.Join(run.Scenarios, ", "))
	}

	return nil
}

func (c *ReportCommand) handleUseRun(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: use <run-id>")
	}

	if err := c.loadRun(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("Using run %s (%d records)\n", c.run.ID, len(c.records))
	return nil
}

func (c *ReportCommand) requireRun() error {
	if c.run == nil {
		return fmt.Errorf("no run selected (try 'runs' then 'use <run-id>')")
	}
	return nil
}

func (c *ReportCommand) handleShow() error {
	if err := c.requireRun(); err != nil {
		return err
	}

	fmt.Println(output.RenderRunHeader(c.run))
	fmt.Println()
	fmt.Println(output.RenderSummaryTable(c.run, c.records))
	fmt.Println()
	fmt.Println(output.RenderTotalsTable("Season Totals", c.aggregator.SeasonTotals(c.records), ""))
	return nil
}

func (c *ReportCommand) handleWeeks() error {
	if err := c.requireRun(); err != nil {
		return err
	}

	fmt.Println(output.RenderTotalsTable("Doses by Week", c.aggregator.DosesByWeek(c.records), "Week"))
	return nil
}

func (c *ReportCommand) handleCohorts() error {
	if err := c.requireRun(); err != nil {
		return err
	}

	fmt.Println(output.RenderTotalsTable("Doses by Birth Cohort", c.aggregator.DosesByBirthCohort(c.records), "Birth Date"))
	return nil
}

func (c *ReportCommand) handleMix(args []string) error {
	if err := c.requireRun(); err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Println(output.RenderMixTable("Dose Mix", c.aggregator.Mix(c.records)))
		return nil
	}

	cutoff, err := entities.ParseDate(args[0])
	if err != nil {
		return fmt.Errorf("invalid cutoff date (use YYYY-MM-DD): %s", args[0])
	}

	fmt.Println(output.RenderMixTable(
		fmt.Sprintf("Dose Mix Before %s", args[0]),
		c.aggregator.MixBefore(c.records, cutoff),
	))
	return nil
}

func (c *ReportCommand) printHelp() {
	fmt.Println(`rsvdemand report - Render persisted projection runs

USAGE:
    rsvdemand report -db <file> [OPTIONS]

OPTIONS:
    -db <file>          Path to a SQLite database written by 'rsvdemand run -db'
    -run <id>           Run to report on (default: latest run)
    -cutoff <date>      Also show the dose mix for doses planned before this date
    -interactive        Start an interactive run browser
    -verbose            Enable verbose output
    -help               Show this help message

DESCRIPTION:
    Reads a persisted projection run and renders its summary, season totals,
    weekly doses, doses by birth cohort, and dose mix as terminal tables.`)
}

func (c *ReportCommand) printInteractiveHelp() {
	fmt.Println(`Available commands:

  runs
      List stored projection runs

  use <run-id>
      Select a run for subsequent commands
      Example: use 1d8c9f34-5a2e-4b7f-9c3d-8e1a2b3c4d5e

  show
      Show the selected run's summary and season totals

  weeks
      Show the selected run's doses by calendar week

  cohorts
      Show the selected run's doses by birth cohort

  mix [cutoff-date]
      Show the selected run's dose mix, optionally restricted to doses
      planned before the cutoff
      Example: mix 2025-01-01

  help, h
      Show this help message

  quit, q, exit
      Exit the run browser`)
}
