package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DelayProportions maps an immunization delay, in cohort-interval units, to
// the proportion of the population immunized after that delay. For example
// {0: 0.8, 8: 0.2} means 80% with no delay and 20% delayed by 8 intervals.
type DelayProportions map[int]decimal.Decimal

// Validate checks delays are non-negative and proportions sum to one
func (d DelayProportions) Validate() error {
	if len(d) == 0 {
		return NewConfigurationError("delay proportions cannot be empty")
	}
	sum := decimal.Zero
	for delay, prop := range d {
		if delay < 0 {
			return NewConfigurationError("delay cannot be negative, got %d", delay)
		}
		sum = sum.Add(prop)
	}
	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(ProportionTolerance) {
		return NewConfigurationError("delay proportions sum to %s, want 1", sum)
	}
	return nil
}

// Scenario represents one named parameter bundle for a projection run
type Scenario struct {
	Name        string
	Config      DemandConfig
	Uptake      decimal.Decimal
	HighRisk    decimal.Decimal
	Delays      DelayProportions
	GrowthChart string
}

// NewScenario creates a validated Scenario. A nil delay map defaults to all
// of the population immunizing without delay.
func NewScenario(name string, config DemandConfig, uptake, highRisk decimal.Decimal, delays DelayProportions, growthChart string) (*Scenario, error) {
	if name == "" {
		return nil, fmt.Errorf("scenario name cannot be empty")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	one := decimal.NewFromInt(1)
	if uptake.IsNegative() || uptake.GreaterThan(one) {
		return nil, fmt.Errorf("uptake must be between 0 and 1, got %s", uptake)
	}
	if highRisk.IsNegative() || highRisk.GreaterThan(one) {
		return nil, fmt.Errorf("high-risk proportion must be between 0 and 1, got %s", highRisk)
	}
	if delays == nil {
		delays = DelayProportions{0: one}
	}
	if err := delays.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	if growthChart == "" {
		return nil, fmt.Errorf("growth chart cannot be empty")
	}

	return &Scenario{
		Name:        name,
		Config:      config,
		Uptake:      uptake,
		HighRisk:    highRisk,
		Delays:      delays,
		GrowthChart: growthChart,
	}, nil
}
