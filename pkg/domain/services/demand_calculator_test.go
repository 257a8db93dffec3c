package services

import (
	"errors"
	"testing"
	"time"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// fullAttributes returns a complete attribute set for a willing, baseline
// risk child with no delay who reaches 5kg at 4 weeks
func fullAttributes(birthDate time.Time) entities.Attributes {
	return entities.Attributes{
		entities.AttrBirthDate:    birthDate,
		entities.AttrWilling:      true,
		entities.AttrRiskLevel:    entities.RiskBaseline,
		entities.AttrDelay:        0,
		entities.AttrWeightForAge: entities.WeightForAge{Threshold: entities.Weight5kg, AgeAtThreshold: 4},
		entities.AttrPlace:        entities.PlaceID("region_4"),
	}
}

func TestDemandCalculator_CalculateDemand(t *testing.T) {
	calc := NewDemandCalculator()
	config := entities.DefaultDemandConfig(
		entities.Date(2024, 10, 1), entities.Date(2025, 3, 31), entities.IntervalWeek)

	tests := []struct {
		name         string
		mutate       func(entities.Attributes)
		expectDemand bool
		expectDate   time.Time
		expectKey    string
	}{
		{
			name: "born_before_season_pulled_to_start",
			mutate: func(a entities.Attributes) {
				a[entities.AttrBirthDate] = entities.Date(2024, 8, 1)
			},
			expectDemand: true,
			expectDate:   entities.Date(2024, 10, 1),
			expectKey:    "1x100mg",
		},
		{
			name:         "born_in_season_uses_birth_date",
			expectDemand: true,
			expectDate:   entities.Date(2024, 12, 1),
			expectKey:    "1x50mg",
		},
		{
			name: "born_on_season_end_still_eligible",
			mutate: func(a entities.Attributes) {
				a[entities.AttrBirthDate] = entities.Date(2025, 3, 31)
			},
			expectDemand: true,
			expectDate:   entities.Date(2025, 3, 31),
			expectKey:    "1x50mg",
		},
		{
			name: "born_after_season_end",
			mutate: func(a entities.Attributes) {
				a[entities.AttrBirthDate] = entities.Date(2025, 4, 1)
			},
			expectDemand: false,
		},
		{
			name: "delay_pushes_past_season_end",
			mutate: func(a entities.Attributes) {
				a[entities.AttrBirthDate] = entities.Date(2025, 2, 1)
				a[entities.AttrDelay] = 13
			},
			expectDemand: false,
		},
		{
			name: "delay_within_season",
			mutate: func(a entities.Attributes) {
				a[entities.AttrBirthDate] = entities.Date(2024, 10, 1)
				a[entities.AttrDelay] = 8
			},
			expectDemand: true,
			expectDate:   entities.Date(2024, 11, 26),
			expectKey:    "1x100mg",
		},
		{
			name: "weight_crossing_exactly_at_immunization",
			mutate: func(a entities.Attributes) {
				a[entities.AttrBirthDate] = entities.Date(2024, 10, 1)
				a[entities.AttrDelay] = 8
				a[entities.AttrWeightForAge] = entities.WeightForAge{
					Threshold: entities.Weight5kg, AgeAtThreshold: 8}
			},
			expectDemand: true,
			expectDate:   entities.Date(2024, 11, 26),
			expectKey:    "1x100mg",
		},
		{
			name: "below_weight_threshold_at_immunization",
			mutate: func(a entities.Attributes) {
				a[entities.AttrBirthDate] = entities.Date(2024, 10, 1)
				a[entities.AttrDelay] = 8
				a[entities.AttrWeightForAge] = entities.WeightForAge{
					Threshold: entities.Weight5kg, AgeAtThreshold: 9}
			},
			expectDemand: true,
			expectDate:   entities.Date(2024, 11, 26),
			expectKey:    "1x50mg",
		},
		{
			name: "high_risk_in_second_season",
			mutate: func(a entities.Attributes) {
				a[entities.AttrBirthDate] = entities.Date(2023, 12, 1)
				a[entities.AttrRiskLevel] = entities.RiskHigh
			},
			expectDemand: true,
			expectDate:   entities.Date(2024, 10, 1),
			expectKey:    "2x100mg",
		},
		{
			name: "baseline_risk_in_second_season",
			mutate: func(a entities.Attributes) {
				a[entities.AttrBirthDate] = entities.Date(2023, 12, 1)
			},
			expectDemand: false,
		},
		{
			name: "aged_out_of_every_window",
			mutate: func(a entities.Attributes) {
				a[entities.AttrBirthDate] = entities.Date(2022, 6, 1)
				a[entities.AttrRiskLevel] = entities.RiskHigh
			},
			expectDemand: false,
		},
		{
			name: "unwilling",
			mutate: func(a entities.Attributes) {
				a[entities.AttrWilling] = false
			},
			expectDemand: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := fullAttributes(entities.Date(2024, 12, 1))
			if tt.mutate != nil {
				tt.mutate(attrs)
			}
			sub := &entities.Subpopulation{Size: decimal.NewFromInt(100), Attributes: attrs}

			demand, err := calc.CalculateDemand(sub, config)
			if err != nil {
				t.Fatalf("CalculateDemand failed: %v", err)
			}

			if !tt.expectDemand {
				if demand != nil {
					t.Fatalf("Expected no demand, got %s on %s",
						demand.Quantity.Key(), demand.Date.Format(entities.DateFormat))
				}
				return
			}

			if demand == nil {
				t.Fatal("Expected demand but got none")
			}
			if !demand.Date.Equal(tt.expectDate) {
				t.Errorf("Expected immunization date %s, got %s",
					tt.expectDate.Format(entities.DateFormat), demand.Date.Format(entities.DateFormat))
			}
			if demand.Quantity.Key() != tt.expectKey {
				t.Errorf("Expected quantity %s, got %s", tt.expectKey, demand.Quantity.Key())
			}
			if demand.Subpopulation != sub {
				t.Error("Expected demand to reference the subpopulation it was computed for")
			}
		})
	}
}

func TestDemandCalculator_ZeroSizeShortCircuits(t *testing.T) {
	calc := NewDemandCalculator()
	config := entities.DefaultDemandConfig(
		entities.Date(2024, 10, 1), entities.Date(2025, 3, 31), entities.IntervalWeek)

	// A zero-size subpopulation produces no demand before any attribute is
	// consulted, so even an empty attribute bag is fine.
	sub := &entities.Subpopulation{Size: decimal.Zero, Attributes: entities.Attributes{}}

	demand, err := calc.CalculateDemand(sub, config)
	if err != nil {
		t.Fatalf("CalculateDemand failed: %v", err)
	}
	if demand != nil {
		t.Errorf("Expected no demand for a zero-size subpopulation, got %s", demand.Quantity.Key())
	}
}

func TestDemandCalculator_MonthInterval(t *testing.T) {
	calc := NewDemandCalculator()
	config := entities.DefaultDemandConfig(
		entities.Date(2024, 10, 1), entities.Date(2025, 3, 31), entities.IntervalMonth)

	attrs := fullAttributes(entities.Date(2024, 10, 15))
	attrs[entities.AttrDelay] = 2
	attrs[entities.AttrWeightForAge] = entities.WeightForAge{
		Threshold: entities.Weight5kg, AgeAtThreshold: 2}

	sub := &entities.Subpopulation{Size: decimal.NewFromInt(100), Attributes: attrs}

	demand, err := calc.CalculateDemand(sub, config)
	if err != nil {
		t.Fatalf("CalculateDemand failed: %v", err)
	}
	if demand == nil {
		t.Fatal("Expected demand but got none")
	}
	if !demand.Date.Equal(entities.Date(2024, 12, 15)) {
		t.Errorf("Expected immunization date 2024-12-15, got %s",
			demand.Date.Format(entities.DateFormat))
	}
	if demand.Quantity.Key() != "1x100mg" {
		t.Errorf("Expected quantity 1x100mg, got %s", demand.Quantity.Key())
	}
}

func TestDemandCalculator_Failures(t *testing.T) {
	calc := NewDemandCalculator()
	validConfig := entities.DefaultDemandConfig(
		entities.Date(2024, 10, 1), entities.Date(2025, 3, 31), entities.IntervalWeek)
	invertedConfig := entities.DefaultDemandConfig(
		entities.Date(2025, 3, 31), entities.Date(2024, 10, 1), entities.IntervalWeek)

	tests := []struct {
		name          string
		config        entities.DemandConfig
		mutate        func(entities.Attributes)
		expectError   string
		expectMissing bool
	}{
		{
			name:        "inverted_season",
			config:      invertedConfig,
			expectError: "configuration error: season end 2024-10-01 is before season start 2025-03-31",
		},
		{
			name:   "missing_willing",
			config: validConfig,
			mutate: func(a entities.Attributes) {
				delete(a, entities.AttrWilling)
			},
			expectError:   `missing required attribute "willing"`,
			expectMissing: true,
		},
		{
			name:   "missing_birth_date",
			config: validConfig,
			mutate: func(a entities.Attributes) {
				delete(a, entities.AttrBirthDate)
			},
			expectError:   `missing required attribute "birth_date"`,
			expectMissing: true,
		},
		{
			name:   "missing_delay",
			config: validConfig,
			mutate: func(a entities.Attributes) {
				delete(a, entities.AttrDelay)
			},
			expectError:   `missing required attribute "delay"`,
			expectMissing: true,
		},
		{
			name:   "missing_weight_for_age",
			config: validConfig,
			mutate: func(a entities.Attributes) {
				delete(a, entities.AttrWeightForAge)
			},
			expectError:   `missing required attribute "weight_for_age"`,
			expectMissing: true,
		},
		{
			name:   "missing_risk_level_in_second_season",
			config: validConfig,
			mutate: func(a entities.Attributes) {
				a[entities.AttrBirthDate] = entities.Date(2023, 12, 1)
				delete(a, entities.AttrRiskLevel)
			},
			expectError:   `missing required attribute "risk_level"`,
			expectMissing: true,
		},
		{
			name:   "weight_threshold_mismatch",
			config: validConfig,
			mutate: func(a entities.Attributes) {
				a[entities.AttrWeightForAge] = entities.WeightForAge{
					Threshold:      entities.Weight{Value: decimal.NewFromInt(4), Unit: "kg"},
					AgeAtThreshold: 4,
				}
			},
			expectError: "configuration error: weight-for-age trajectory crosses 4kg but the configured threshold is 5kg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := fullAttributes(entities.Date(2024, 12, 1))
			if tt.mutate != nil {
				tt.mutate(attrs)
			}
			sub := &entities.Subpopulation{Size: decimal.NewFromInt(100), Attributes: attrs}

			_, err := calc.CalculateDemand(sub, tt.config)
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if err.Error() != tt.expectError {
				t.Errorf("Expected error '%s', got '%s'", tt.expectError, err.Error())
			}

			if tt.expectMissing {
				var missingErr *entities.MissingAttributeError
				if !errors.As(err, &missingErr) {
					t.Errorf("Expected a MissingAttributeError, got %T", err)
				}
			} else {
				var configErr *entities.ConfigurationError
				if !errors.As(err, &configErr) {
					t.Errorf("Expected a ConfigurationError, got %T", err)
				}
			}
		})
	}
}
