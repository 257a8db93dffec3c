package repositories

import (
	"context"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
)

// DemandRepository persists projection runs and their demand records
type DemandRepository interface {
	SaveRun(ctx context.Context, run *entities.ProjectionRun) error
	GetRun(ctx context.Context, id string) (*entities.ProjectionRun, error)
	GetLatestRun(ctx context.Context) (*entities.ProjectionRun, error)
	ListRuns(ctx context.Context) ([]*entities.ProjectionRun, error)
	SaveRecords(ctx context.Context, records []*entities.DemandRecord) error
	GetRecords(ctx context.Context, runID string) ([]*entities.DemandRecord, error)
	GetScenarioRecords(ctx context.Context, runID, scenario string) ([]*entities.DemandRecord, error)
}
