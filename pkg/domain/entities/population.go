package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AttributeName identifies a named population attribute
type AttributeName string

// AttributeValue is the value assigned to a population attribute. Values are
// one of: time.Time, bool, int, string, PlaceID, RiskLevel, or WeightForAge.
type AttributeValue any

// Standard attribute names consumed by the demand calculator
const (
	AttrBirthDate    AttributeName = "birth_date"
	AttrWilling      AttributeName = "willing"
	AttrRiskLevel    AttributeName = "risk_level"
	AttrDelay        AttributeName = "delay"
	AttrWeightForAge AttributeName = "weight_for_age"
	AttrPlace        AttributeName = "place"
)

// PlaceID identifies a geographic unit, e.g. an HHS region
type PlaceID string

// RiskLevel represents a subpopulation's medical risk classification
type RiskLevel int

const (
	RiskBaseline RiskLevel = iota
	RiskHigh
)

// String method for RiskLevel enum
func (r RiskLevel) String() string {
	switch r {
	case RiskBaseline:
		return "baseline"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseRiskLevel converts a string into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch s {
	case "baseline":
		return RiskBaseline, nil
	case "high":
		return RiskHigh, nil
	default:
		return RiskBaseline, fmt.Errorf("unknown risk level %q", s)
	}
}

// Attributes maps attribute names to their assigned values
type Attributes map[AttributeName]AttributeValue

// Clone returns a copy of the attribute map
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for name, value := range a {
		out[name] = value
	}
	return out
}

// Has reports whether the attribute is present
func (a Attributes) Has(name AttributeName) bool {
	_, ok := a[name]
	return ok
}

// Bool returns a boolean attribute
func (a Attributes) Bool(name AttributeName) (bool, error) {
	raw, ok := a[name]
	if !ok {
		return false, &MissingAttributeError{Attribute: name}
	}
	value, ok := raw.(bool)
	if !ok {
		return false, NewConfigurationError("attribute %q holds %T, want bool", string(name), raw)
	}
	return value, nil
}

// Int returns an integer attribute
func (a Attributes) Int(name AttributeName) (int, error) {
	raw, ok := a[name]
	if !ok {
		return 0, &MissingAttributeError{Attribute: name}
	}
	value, ok := raw.(int)
	if !ok {
		return 0, NewConfigurationError("attribute %q holds %T, want int", string(name), raw)
	}
	return value, nil
}

// Date returns a date attribute
func (a Attributes) Date(name AttributeName) (time.Time, error) {
	raw, ok := a[name]
	if !ok {
		return time.Time{}, &MissingAttributeError{Attribute: name}
	}
	value, ok := raw.(time.Time)
	if !ok {
		return time.Time{}, NewConfigurationError("attribute %q holds %T, want time.Time", string(name), raw)
	}
	return value, nil
}

// Risk returns a risk-level attribute
func (a Attributes) Risk(name AttributeName) (RiskLevel, error) {
	raw, ok := a[name]
	if !ok {
		return RiskBaseline, &MissingAttributeError{Attribute: name}
	}
	value, ok := raw.(RiskLevel)
	if !ok {
		return RiskBaseline, NewConfigurationError("attribute %q holds %T, want RiskLevel", string(name), raw)
	}
	return value, nil
}

// WeightForAge returns a weight-for-age attribute
func (a Attributes) WeightForAge(name AttributeName) (WeightForAge, error) {
	raw, ok := a[name]
	if !ok {
		return WeightForAge{}, &MissingAttributeError{Attribute: name}
	}
	value, ok := raw.(WeightForAge)
	if !ok {
		return WeightForAge{}, NewConfigurationError("attribute %q holds %T, want WeightForAge", string(name), raw)
	}
	return value, nil
}

// Population represents an immutable cohort: a size plus named attributes
type Population struct {
	Size       decimal.Decimal
	Attributes Attributes
}

// NewPopulation creates a validated Population. The attribute map is copied
// so the caller's map can be reused.
func NewPopulation(size decimal.Decimal, attrs Attributes) (*Population, error) {
	if size.IsNegative() {
		return nil, fmt.Errorf("population size cannot be negative, got %s", size)
	}
	return &Population{Size: size, Attributes: attrs.Clone()}, nil
}

// Subpopulation represents a population refined by one or more partitioning
// steps. It retains all ancestor attributes plus the newly assigned ones;
// its size is the ancestor size scaled by the applied proportions.
type Subpopulation struct {
	Size       decimal.Decimal
	Attributes Attributes
}

// BirthDate returns the subpopulation's birth date
func (s *Subpopulation) BirthDate() (time.Time, error) {
	return s.Attributes.Date(AttrBirthDate)
}

// Willing reports whether the subpopulation seeks immunization when eligible
func (s *Subpopulation) Willing() (bool, error) {
	return s.Attributes.Bool(AttrWilling)
}

// Risk returns the subpopulation's risk classification
func (s *Subpopulation) Risk() (RiskLevel, error) {
	return s.Attributes.Risk(AttrRiskLevel)
}

// Delay returns the immunization delay in cohort-interval units
func (s *Subpopulation) Delay() (int, error) {
	return s.Attributes.Int(AttrDelay)
}

// WeightForAge returns the subpopulation's weight trajectory
func (s *Subpopulation) WeightForAge() (WeightForAge, error) {
	return s.Attributes.WeightForAge(AttrWeightForAge)
}

// Place returns the subpopulation's place, or an empty PlaceID when the
// attribute was never assigned
func (s *Subpopulation) Place() PlaceID {
	raw, ok := s.Attributes[AttrPlace]
	if !ok {
		return ""
	}
	place, ok := raw.(PlaceID)
	if !ok {
		return ""
	}
	return place
}
