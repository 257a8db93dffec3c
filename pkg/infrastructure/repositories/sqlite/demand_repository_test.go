package sqlite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

func setupStore(t *testing.T) *Store {
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(runID, scenario string, place entities.PlaceID, doses string) *entities.DemandRecord {
	return &entities.DemandRecord{
		RunID:        runID,
		Scenario:     scenario,
		Place:        place,
		BirthDate:    entities.Date(2024, 11, 3),
		RiskLevel:    entities.RiskHigh,
		Delay:        8,
		ThresholdAge: 4,
		Date:         entities.Date(2024, 12, 29),
		Dosage:       entities.Dosage100mg,
		NDoses:       2,
		Size:         decimal.RequireFromString("384.25"),
		Doses:        decimal.RequireFromString(doses),
	}
}

func TestDemandRepository_SaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	repo := NewDemandRepository(setupStore(t))

	run := entities.NewProjectionRun([]string{"highest_100", "middle_100"}, entities.IntervalWeek)
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}

	found, err := repo.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if found.ID != run.ID {
		t.Errorf("Expected run ID %s, got %s", run.ID, found.ID)
	}
	if !found.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("Expected created at %v, got %v", run.CreatedAt, found.CreatedAt)
	}
	if found.Interval != entities.IntervalWeek {
		t.Errorf("Expected week interval, got %s", found.Interval)
	}
	if len(found.Scenarios) != 2 || found.Scenarios[0] != "highest_100" || found.Scenarios[1] != "middle_100" {
		t.Errorf("Expected scenario names to round-trip, got %v", found.Scenarios)
	}

	_, err = repo.GetRun(ctx, "missing")
	if err == nil {
		t.Error("Expected error for missing run, got nil")
	}
	if !strings.Contains(err.Error(), "run not found: missing") {
		t.Errorf("Expected not found error, got: %v", err)
	}
}

func TestDemandRepository_DuplicateRun(t *testing.T) {
	ctx := context.Background()
	repo := NewDemandRepository(setupStore(t))

	run := entities.NewProjectionRun([]string{"middle_100"}, entities.IntervalWeek)
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}
	if err := repo.SaveRun(ctx, run); err == nil {
		t.Error("Expected error for duplicate run ID, got nil")
	}
}

func TestDemandRepository_GetLatestRun(t *testing.T) {
	ctx := context.Background()
	repo := NewDemandRepository(setupStore(t))

	if _, err := repo.GetLatestRun(ctx); err == nil {
		t.Error("Expected error for empty store, got nil")
	} else if !strings.Contains(err.Error(), "no runs saved") {
		t.Errorf("Expected no runs error, got: %v", err)
	}

	first := entities.NewProjectionRun([]string{"a"}, entities.IntervalWeek)
	second := entities.NewProjectionRun([]string{"b"}, entities.IntervalWeek)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	tied := entities.NewProjectionRun([]string{"c"}, entities.IntervalWeek)
	tied.CreatedAt = second.CreatedAt

	for _, run := range []*entities.ProjectionRun{first, second, tied} {
		if err := repo.SaveRun(ctx, run); err != nil {
			t.Fatalf("Failed to save run: %v", err)
		}
	}

	// Ties on created_at resolve to the most recently saved run
	latest, err := repo.GetLatestRun(ctx)
	if err != nil {
		t.Fatalf("Failed to get latest run: %v", err)
	}
	if latest.ID != tied.ID {
		t.Errorf("Expected latest run %s, got %s", tied.ID, latest.ID)
	}

	runs, err := repo.ListRuns(ctx)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != first.ID {
		t.Errorf("Expected oldest run first, got %s", runs[0].ID)
	}
}

func TestDemandRepository_SaveAndGetRecords(t *testing.T) {
	ctx := context.Background()
	repo := NewDemandRepository(setupStore(t))

	run := entities.NewProjectionRun([]string{"highest_100", "middle_100"}, entities.IntervalWeek)
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}

	records := []*entities.DemandRecord{
		testRecord(run.ID, "highest_100", "4", "768.5"),
		testRecord(run.ID, "highest_100", "6", "192"),
		testRecord(run.ID, "middle_100", "4", "640"),
	}
	if err := repo.SaveRecords(ctx, records); err != nil {
		t.Fatalf("Failed to save records: %v", err)
	}

	found, err := repo.GetRecords(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get records: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(found))
	}

	got := found[0]
	if got.RunID != run.ID || got.Scenario != "highest_100" || got.Place != "4" {
		t.Errorf("Expected highest_100/4 first, got %s/%s", got.Scenario, got.Place)
	}
	if !got.BirthDate.Equal(entities.Date(2024, 11, 3)) || !got.Date.Equal(entities.Date(2024, 12, 29)) {
		t.Errorf("Expected dates to round-trip, got birth %s date %s",
			got.BirthDate.Format(entities.DateFormat), got.Date.Format(entities.DateFormat))
	}
	if got.RiskLevel != entities.RiskHigh || got.Delay != 8 || got.ThresholdAge != 4 {
		t.Errorf("Expected attribute columns to round-trip, got %+v", got)
	}
	if !got.Dosage.Equal(entities.Dosage100mg) || got.NDoses != 2 {
		t.Errorf("Expected 2x100mg, got %dx%s", got.NDoses, got.Dosage)
	}
	if !got.Size.Equal(decimal.RequireFromString("384.25")) {
		t.Errorf("Expected size 384.25, got %s", got.Size)
	}
	if !got.Doses.Equal(decimal.RequireFromString("768.5")) {
		t.Errorf("Expected doses 768.5, got %s", got.Doses)
	}

	scenario, err := repo.GetScenarioRecords(ctx, run.ID, "middle_100")
	if err != nil {
		t.Fatalf("Failed to get scenario records: %v", err)
	}
	if len(scenario) != 1 || !scenario[0].Doses.Equal(decimal.NewFromInt(640)) {
		t.Errorf("Expected one middle_100 record with 640 doses, got %d", len(scenario))
	}
}

func TestDemandRepository_SaveRecords_UnknownRun(t *testing.T) {
	ctx := context.Background()
	repo := NewDemandRepository(setupStore(t))

	err := repo.SaveRecords(ctx, []*entities.DemandRecord{
		testRecord("no-such-run", "middle_100", "4", "100"),
	})
	if err == nil {
		t.Error("Expected foreign key error for unknown run, got nil")
	}

	if err := repo.SaveRecords(ctx, nil); err != nil {
		t.Errorf("Expected saving no records to succeed, got: %v", err)
	}
}
