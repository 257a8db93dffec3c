package entities

import "time"

// DosageRule selects how a dose is resolved within an age window
type DosageRule int

const (
	// DoseByWeight doses by the weight threshold: the low dosage below it,
	// the high dosage at or above it
	DoseByWeight DosageRule = iota
	// DoseHighRiskOnly doses only high-risk subpopulations, with the
	// high-risk quantity
	DoseHighRiskOnly
)

// String method for DosageRule enum
func (r DosageRule) String() string {
	switch r {
	case DoseByWeight:
		return "DoseByWeight"
	case DoseHighRiskOnly:
		return "DoseHighRiskOnly"
	default:
		return "Unknown"
	}
}

// AgeThreshold bounds one age window: ages at or above the previous
// threshold and strictly below MaxAgeMonths resolve with Rule.
type AgeThreshold struct {
	MaxAgeMonths int
	Rule         DosageRule
}

// DemandConfig carries the calculator configuration for one scenario. It is
// passed by value into every calculation; there are no process-wide
// defaults.
type DemandConfig struct {
	SeasonStart      time.Time
	SeasonEnd        time.Time
	Interval         Interval
	AgeThresholds    []AgeThreshold
	WeightThreshold  Weight
	LowQuantity      DrugQuantity
	HighQuantity     DrugQuantity
	HighRiskQuantity DrugQuantity
}

// DefaultDemandConfig returns the nirsevimab dosing configuration: children
// under 8 months dose by the 5kg threshold (50mg below, 100mg at or above),
// and high-risk children from 8 through 18 months receive 2x100mg.
func DefaultDemandConfig(seasonStart, seasonEnd time.Time, interval Interval) DemandConfig {
	return DemandConfig{
		SeasonStart: seasonStart,
		SeasonEnd:   seasonEnd,
		Interval:    interval,
		AgeThresholds: []AgeThreshold{
			{MaxAgeMonths: 8, Rule: DoseByWeight},
			{MaxAgeMonths: 19, Rule: DoseHighRiskOnly},
		},
		WeightThreshold:  Weight5kg,
		LowQuantity:      DrugQuantity{Dosage: Dosage50mg, NDoses: 1},
		HighQuantity:     DrugQuantity{Dosage: Dosage100mg, NDoses: 1},
		HighRiskQuantity: DrugQuantity{Dosage: Dosage100mg, NDoses: 2},
	}
}

// Validate checks the configuration for internal consistency
func (c DemandConfig) Validate() error {
	if c.SeasonStart.IsZero() || c.SeasonEnd.IsZero() {
		return NewConfigurationError("season window is not set")
	}
	if c.SeasonEnd.Before(c.SeasonStart) {
		return NewConfigurationError("season end %s is before season start %s",
			c.SeasonEnd.Format(DateFormat), c.SeasonStart.Format(DateFormat))
	}
	if !c.Interval.Valid() {
		return NewConfigurationError("unknown interval %q", string(c.Interval))
	}
	if len(c.AgeThresholds) == 0 {
		return NewConfigurationError("age thresholds cannot be empty")
	}
	prev := 0
	for _, threshold := range c.AgeThresholds {
		if threshold.MaxAgeMonths <= prev {
			return NewConfigurationError(
				"age thresholds must be ascending and positive, got %d after %d",
				threshold.MaxAgeMonths, prev)
		}
		if threshold.Rule != DoseByWeight && threshold.Rule != DoseHighRiskOnly {
			return NewConfigurationError("unknown dosage rule %d", int(threshold.Rule))
		}
		prev = threshold.MaxAgeMonths
	}
	if !c.WeightThreshold.Value.IsPositive() {
		return NewConfigurationError("weight threshold must be positive, got %s", c.WeightThreshold.Value)
	}
	for _, q := range []DrugQuantity{c.LowQuantity, c.HighQuantity, c.HighRiskQuantity} {
		if q.NDoses <= 0 {
			return NewConfigurationError("dose count must be positive, got %d", q.NDoses)
		}
		if !q.Dosage.Amount.IsPositive() || q.Dosage.Unit == "" {
			return NewConfigurationError("dosage %s is malformed", q.Dosage)
		}
	}
	return nil
}
