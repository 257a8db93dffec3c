package memory

import (
	"context"
	"fmt"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/ebirch/rsvdemand/pkg/domain/repositories"
)

// DemandRepository provides in-memory projection run and record storage
type DemandRepository struct {
	runs    []entities.ProjectionRun
	runsMap map[string]int
	records map[string][]entities.DemandRecord
}

// NewDemandRepository creates a new in-memory demand repository
func NewDemandRepository() *DemandRepository {
	return &DemandRepository{
		runs:    []entities.ProjectionRun{},
		runsMap: make(map[string]int),
		records: make(map[string][]entities.DemandRecord),
	}
}

// Verify interface compliance
var _ repositories.DemandRepository = (*DemandRepository)(nil)

// SaveRun saves a projection run
func (r *DemandRepository) SaveRun(ctx context.Context, run *entities.ProjectionRun) error {
	if _, exists := r.runsMap[run.ID]; exists {
		return fmt.Errorf("duplicate run id: %s", run.ID)
	}
	r.runsMap[run.ID] = len(r.runs)
	r.runs = append(r.runs, *run)
	return nil
}

// GetRun returns the run with the given id
func (r *DemandRepository) GetRun(ctx context.Context, id string) (*entities.ProjectionRun, error) {
	index, exists := r.runsMap[id]
	if !exists {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return &r.runs[index], nil
}

// GetLatestRun returns the most recently created run
func (r *DemandRepository) GetLatestRun(ctx context.Context) (*entities.ProjectionRun, error) {
	if len(r.runs) == 0 {
		return nil, fmt.Errorf("no runs saved")
	}

	latest := 0
	for i := range r.runs {
		if !r.runs[i].CreatedAt.Before(r.runs[latest].CreatedAt) {
			latest = i
		}
	}
	return &r.runs[latest], nil
}

// ListRuns returns all runs in save order
func (r *DemandRepository) ListRuns(ctx context.Context) ([]*entities.ProjectionRun, error) {
	var runs []*entities.ProjectionRun
	for i := range r.runs {
		runs = append(runs, &r.runs[i])
	}
	return runs, nil
}

// SaveRecords saves demand records under their runs
func (r *DemandRepository) SaveRecords(ctx context.Context, records []*entities.DemandRecord) error {
	for _, record := range records {
		if _, exists := r.runsMap[record.RunID]; !exists {
			return fmt.Errorf("run not found: %s", record.RunID)
		}
		r.records[record.RunID] = append(r.records[record.RunID], *record)
	}
	return nil
}

// GetRecords returns a run's records in save order
func (r *DemandRepository) GetRecords(ctx context.Context, runID string) ([]*entities.DemandRecord, error) {
	if _, exists := r.runsMap[runID]; !exists {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	stored := r.records[runID]
	var records []*entities.DemandRecord
	for i := range stored {
		records = append(records, &stored[i])
	}
	return records, nil
}

// GetScenarioRecords returns one scenario's records from a run
func (r *DemandRepository) GetScenarioRecords(
	ctx context.Context,
	runID, scenario string,
) ([]*entities.DemandRecord, error) {
	all, err := r.GetRecords(ctx, runID)
	if err != nil {
		return nil, err
	}

	var records []*entities.DemandRecord
	for _, record := range all {
		if record.Scenario == scenario {
			records = append(records, record)
		}
	}
	return records, nil
}
