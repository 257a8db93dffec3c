package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BirthCohort represents the births observed in one place and time bucket
type BirthCohort struct {
	Place    PlaceID
	Interval Interval
	Date     time.Time
	Births   decimal.Decimal
}

// NewBirthCohort creates a validated BirthCohort
func NewBirthCohort(place PlaceID, interval Interval, date time.Time, births decimal.Decimal) (*BirthCohort, error) {
	if !interval.Valid() {
		return nil, fmt.Errorf("unknown interval %q", string(interval))
	}
	if date.IsZero() {
		return nil, fmt.Errorf("cohort date cannot be zero")
	}
	if births.IsNegative() {
		return nil, fmt.Errorf("births cannot be negative, got %s", births)
	}
	return &BirthCohort{Place: place, Interval: interval, Date: date, Births: births}, nil
}

// WeightBucket represents one growth-chart row: the proportion of children
// first reaching the threshold weight at the given age
type WeightBucket struct {
	Source     string
	Interval   Interval
	Age        int
	Proportion decimal.Decimal
}

// NewWeightBucket creates a validated WeightBucket
func NewWeightBucket(source string, interval Interval, age int, proportion decimal.Decimal) (*WeightBucket, error) {
	if source == "" {
		return nil, fmt.Errorf("growth chart source cannot be empty")
	}
	if !interval.Valid() {
		return nil, fmt.Errorf("unknown interval %q", string(interval))
	}
	if age < 0 {
		return nil, fmt.Errorf("age cannot be negative, got %d", age)
	}
	if proportion.IsNegative() || proportion.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("proportion must be between 0 and 1, got %s", proportion)
	}
	return &WeightBucket{Source: source, Interval: interval, Age: age, Proportion: proportion}, nil
}
