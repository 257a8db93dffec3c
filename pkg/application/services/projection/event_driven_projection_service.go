package projection

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/ebirch/rsvdemand/pkg/application/dto"
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/ebirch/rsvdemand/pkg/domain/repositories"
	"github.com/ebirch/rsvdemand/pkg/infrastructure/events"
)

// EventDrivenProjectionService wraps ProjectionService and publishes domain
// events around each run. Publish failures are logged and never fail the
// projection itself.
type EventDrivenProjectionService struct {
	projectionService *ProjectionService
	eventStore        events.EventStore
}

// NewEventDrivenProjectionService creates an event-publishing projection
// service with default configuration
func NewEventDrivenProjectionService(eventStore events.EventStore) *EventDrivenProjectionService {
	return &EventDrivenProjectionService{
		projectionService: NewProjectionService(),
		eventStore:        eventStore,
	}
}

// NewEventDrivenProjectionServiceWithConfig creates an event-publishing
// projection service with custom configuration
func NewEventDrivenProjectionServiceWithConfig(config ServiceConfig, eventStore events.EventStore) *EventDrivenProjectionService {
	return &EventDrivenProjectionService{
		projectionService: NewProjectionServiceWithConfig(config),
		eventStore:        eventStore,
	}
}

// RunScenarios publishes a submitted event per scenario, delegates to the
// wrapped service, and publishes completion events for the run
func (s *EventDrivenProjectionService) RunScenarios(
	ctx context.Context,
	scenarios []*entities.Scenario,
	birthRepo repositories.BirthRepository,
	growthRepo repositories.GrowthChartRepository,
) (*dto.ProjectionResult, error) {
	for _, scenario := range scenarios {
		event := events.NewScenarioSubmittedEvent(scenario)
		if err := s.eventStore.AppendEvent(scenario.Name, event); err != nil {
			slog.Warn("failed to publish scenario submitted event",
				"scenario", scenario.Name, "error", err)
		}
	}

	result, err := s.projectionService.RunScenarios(ctx, scenarios, birthRepo, growthRepo)
	if err != nil {
		return nil, err
	}

	s.publishRunEvents(result)

	return result, nil
}

func (s *EventDrivenProjectionService) publishRunEvents(result *dto.ProjectionResult) {
	for _, name := range result.Run.Scenarios {
		records := result.ScenarioRecords(name)
		doses := decimal.Zero
		for _, record := range records {
			doses = doses.Add(record.Doses)
		}

		event := events.NewScenarioCompletedEvent(result.Run.ID, name, len(records), doses)
		if err := s.eventStore.AppendEvent(result.Run.ID, event); err != nil {
			slog.Warn("failed to publish scenario completed event",
				"run", result.Run.ID, "scenario", name, "error", err)
		}
	}

	event := events.NewRunCompletedEvent(result.Run, len(result.Records), result.Elapsed)
	if err := s.eventStore.AppendEvent(result.Run.ID, event); err != nil {
		slog.Warn("failed to publish run completed event",
			"run", result.Run.ID, "error", err)
	}
}
