package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Weight represents a body mass with its unit
type Weight struct {
	Value decimal.Decimal
	Unit  string
}

// Weight5kg is the reference threshold separating the two dosage presentations
var Weight5kg = Weight{Value: decimal.NewFromInt(5), Unit: "kg"}

// NewWeight creates a validated Weight
func NewWeight(value decimal.Decimal, unit string) (Weight, error) {
	if !value.IsPositive() {
		return Weight{}, fmt.Errorf("weight must be positive, got %s", value)
	}
	if unit == "" {
		return Weight{}, fmt.Errorf("weight unit cannot be empty")
	}
	return Weight{Value: value, Unit: unit}, nil
}

// Equal reports whether two weights have the same value and unit
func (w Weight) Equal(other Weight) bool {
	return w.Value.Equal(other.Value) && w.Unit == other.Unit
}

// String renders the weight, e.g. "5kg"
func (w Weight) String() string {
	return w.Value.String() + w.Unit
}

// WeightForAge represents a subpopulation's weight trajectory relative to a
// reference threshold: the age, in cohort-interval units, at which the
// threshold weight is first reached.
type WeightForAge struct {
	Threshold      Weight
	AgeAtThreshold int
}

// NewWeightForAge creates a validated WeightForAge
func NewWeightForAge(threshold Weight, ageAtThreshold int) (WeightForAge, error) {
	if ageAtThreshold < 0 {
		return WeightForAge{}, fmt.Errorf("age at threshold cannot be negative, got %d", ageAtThreshold)
	}
	return WeightForAge{Threshold: threshold, AgeAtThreshold: ageAtThreshold}, nil
}

// ReachedBy reports whether the threshold weight has been reached by the
// given age. A child exactly at the crossing age counts as having reached
// it, so a weight equal to the threshold resolves as at-or-above.
func (w WeightForAge) ReachedBy(age int) bool {
	return w.AgeAtThreshold <= age
}
