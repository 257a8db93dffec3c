// Package config loads scenario bundles from TOML files. Defaults declared
// in the file apply to every scenario that does not set its own value.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// ScenarioDefaults holds values applied to scenarios that do not set their own
type ScenarioDefaults struct {
	Uptake      *float64           `toml:"uptake"`
	HighRisk    *float64           `toml:"p_high_risk"`
	SeasonStart string             `toml:"season_start"`
	SeasonEnd   string             `toml:"season_end"`
	Interval    string             `toml:"interval"`
	GrowthChart string             `toml:"growth_chart"`
	Delays      map[string]float64 `toml:"delays"`
}

// ScenarioParams is the TOML shape of one scenario entry. Dates are ISO
// strings and delays map interval counts to proportions.
type ScenarioParams struct {
	Name        string             `toml:"name"`
	Uptake      *float64           `toml:"uptake"`
	HighRisk    *float64           `toml:"p_high_risk"`
	SeasonStart string             `toml:"season_start"`
	SeasonEnd   string             `toml:"season_end"`
	Interval    string             `toml:"interval"`
	GrowthChart string             `toml:"growth_chart"`
	Delays      map[string]float64 `toml:"delays"`
}

// ScenarioFile is the top-level TOML document
type ScenarioFile struct {
	Defaults  ScenarioDefaults `toml:"defaults"`
	Scenarios []ScenarioParams `toml:"scenario"`
}

// LoadScenarios reads and validates a scenario bundle. Validation errors are
// accumulated across all scenarios before reporting.
func LoadScenarios(path string) ([]*entities.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var file ScenarioFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, fmt.Errorf("parsing scenario file %s: %w", path, err)
	}

	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios defined in %s", path)
	}

	var errs []error
	seen := make(map[string]bool, len(file.Scenarios))
	scenarios := make([]*entities.Scenario, 0, len(file.Scenarios))
	for i, params := range file.Scenarios {
		scenario, err := buildScenario(file.Defaults.apply(params))
		if err != nil {
			errs = append(errs, fmt.Errorf("scenario %d: %w", i+1, err))
			continue
		}
		if seen[scenario.Name] {
			errs = append(errs, entities.NewConfigurationError("scenario %q is defined twice", scenario.Name))
			continue
		}
		seen[scenario.Name] = true
		scenarios = append(scenarios, scenario)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return scenarios, nil
}

// apply fills unset scenario fields from the defaults
func (d ScenarioDefaults) apply(params ScenarioParams) ScenarioParams {
	if params.Uptake == nil {
		params.Uptake = d.Uptake
	}
	if params.HighRisk == nil {
		params.HighRisk = d.HighRisk
	}
	if params.SeasonStart == "" {
		params.SeasonStart = d.SeasonStart
	}
	if params.SeasonEnd == "" {
		params.SeasonEnd = d.SeasonEnd
	}
	if params.Interval == "" {
		params.Interval = d.Interval
	}
	if params.GrowthChart == "" {
		params.GrowthChart = d.GrowthChart
	}
	if params.Delays == nil {
		params.Delays = d.Delays
	}
	return params
}

// buildScenario turns merged TOML parameters into a validated Scenario
func buildScenario(params ScenarioParams) (*entities.Scenario, error) {
	var errs []error

	if params.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if params.Uptake == nil {
		errs = append(errs, errors.New("uptake is required"))
	}
	if params.HighRisk == nil {
		errs = append(errs, errors.New("p_high_risk is required"))
	}
	if params.GrowthChart == "" {
		errs = append(errs, errors.New("growth_chart is required"))
	}

	var seasonStart, seasonEnd time.Time
	if params.SeasonStart == "" {
		errs = append(errs, errors.New("season_start is required"))
	} else if start, err := entities.ParseDate(params.SeasonStart); err != nil {
		errs = append(errs, fmt.Errorf("season_start: %w", err))
	} else {
		seasonStart = start
	}
	if params.SeasonEnd == "" {
		errs = append(errs, errors.New("season_end is required"))
	} else if end, err := entities.ParseDate(params.SeasonEnd); err != nil {
		errs = append(errs, fmt.Errorf("season_end: %w", err))
	} else {
		seasonEnd = end
	}

	var interval entities.Interval
	if params.Interval == "" {
		errs = append(errs, errors.New("interval is required"))
	} else {
		interval = entities.Interval(strings.ToLower(params.Interval))
		if !interval.Valid() {
			errs = append(errs, fmt.Errorf("invalid interval %q", params.Interval))
		}
	}

	var delays entities.DelayProportions
	if len(params.Delays) > 0 {
		delays = make(entities.DelayProportions, len(params.Delays))
		for key, proportion := range params.Delays {
			delay, err := strconv.Atoi(key)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid delay %q", key))
				continue
			}
			delays[delay] = decimal.NewFromFloat(proportion)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return entities.NewScenario(
		params.Name,
		entities.DefaultDemandConfig(seasonStart, seasonEnd, interval),
		decimal.NewFromFloat(*params.Uptake),
		decimal.NewFromFloat(*params.HighRisk),
		delays,
		params.GrowthChart,
	)
}
