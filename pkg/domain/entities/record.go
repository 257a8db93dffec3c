package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectionRun identifies one projection invocation across a scenario set
type ProjectionRun struct {
	ID        string
	CreatedAt time.Time
	Scenarios []string
	Interval  Interval
}

// NewProjectionRun creates a ProjectionRun with a fresh identifier
func NewProjectionRun(scenarios []string, interval Interval) *ProjectionRun {
	return &ProjectionRun{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Scenarios: scenarios,
		Interval:  interval,
	}
}

// DemandRecord is one demand event flattened for persistence and export.
// Doses is the size-scaled dose count, Size times NDoses.
type DemandRecord struct {
	RunID        string
	Scenario     string
	Place        PlaceID
	BirthDate    time.Time
	RiskLevel    RiskLevel
	Delay        int
	ThresholdAge int
	Date         time.Time
	Dosage       DrugDosage
	NDoses       int
	Size         decimal.Decimal
	Doses        decimal.Decimal
}
