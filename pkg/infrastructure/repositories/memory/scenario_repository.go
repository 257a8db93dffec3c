package memory

import (
	"fmt"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/ebirch/rsvdemand/pkg/domain/repositories"
)

// ScenarioRepository provides in-memory scenario storage
type ScenarioRepository struct {
	scenarios []*entities.Scenario
	index     map[string]int
}

// NewScenarioRepository creates a new in-memory scenario repository
func NewScenarioRepository(expectedScenarios int) *ScenarioRepository {
	return &ScenarioRepository{
		scenarios: make([]*entities.Scenario, 0, expectedScenarios),
		index:     make(map[string]int, expectedScenarios),
	}
}

// Verify interface compliance
var _ repositories.ScenarioRepository = (*ScenarioRepository)(nil)

// LoadScenarios loads scenarios into the repository, rejecting duplicates
func (r *ScenarioRepository) LoadScenarios(scenarios []*entities.Scenario) error {
	for _, scenario := range scenarios {
		if err := r.AddScenario(scenario); err != nil {
			return err
		}
	}
	return nil
}

// AddScenario adds one scenario to the repository
func (r *ScenarioRepository) AddScenario(scenario *entities.Scenario) error {
	if _, exists := r.index[scenario.Name]; exists {
		return entities.NewConfigurationError("scenario %q is defined twice", scenario.Name)
	}
	r.index[scenario.Name] = len(r.scenarios)
	r.scenarios = append(r.scenarios, scenario)
	return nil
}

// GetScenario returns the named scenario
func (r *ScenarioRepository) GetScenario(name string) (*entities.Scenario, error) {
	index, exists := r.index[name]
	if !exists {
		return nil, fmt.Errorf("scenario not found: %s", name)
	}
	return r.scenarios[index], nil
}

// GetAllScenarios returns all scenarios in load order
func (r *ScenarioRepository) GetAllScenarios() ([]*entities.Scenario, error) {
	scenarios := make([]*entities.Scenario, len(r.scenarios))
	copy(scenarios, r.scenarios)
	return scenarios, nil
}
