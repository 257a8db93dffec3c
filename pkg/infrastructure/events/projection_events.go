package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
)

const (
	ScenarioSubmittedEvent = "projection.scenario.submitted"
	ScenarioCompletedEvent = "projection.scenario.completed"

	RunCompletedEvent = "projection.run.completed"
)

type ScenarioSubmitted struct {
	Scenario *entities.Scenario `json:"scenario"`
}

type ScenarioCompleted struct {
	RunID    string          `json:"run_id"`
	Scenario string          `json:"scenario"`
	Records  int             `json:"records"`
	Doses    decimal.Decimal `json:"doses"`
}

type RunCompleted struct {
	Run     *entities.ProjectionRun `json:"run"`
	Records int                     `json:"records"`
	Elapsed time.Duration           `json:"elapsed"`
}

func NewScenarioSubmittedEvent(scenario *entities.Scenario) Event {
	return NewEvent(ScenarioSubmittedEvent, scenario.Name, ScenarioSubmitted{Scenario: scenario})
}

func NewScenarioCompletedEvent(runID, scenario string, records int, doses decimal.Decimal) Event {
	return NewEvent(ScenarioCompletedEvent, runID, ScenarioCompleted{
		RunID:    runID,
		Scenario: scenario,
		Records:  records,
		Doses:    doses,
	})
}

func NewRunCompletedEvent(run *entities.ProjectionRun, records int, elapsed time.Duration) Event {
	return NewEvent(RunCompletedEvent, run.ID, RunCompleted{
		Run:     run,
		Records: records,
		Elapsed: elapsed,
	})
}
