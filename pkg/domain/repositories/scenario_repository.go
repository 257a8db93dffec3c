package repositories

import "github.com/ebirch/rsvdemand/pkg/domain/entities"

// ScenarioRepository provides access to named scenario parameter bundles
type ScenarioRepository interface {
	GetScenario(name string) (*entities.Scenario, error)
	GetAllScenarios() ([]*entities.Scenario, error)
	LoadScenarios(scenarios []*entities.Scenario) error
}
