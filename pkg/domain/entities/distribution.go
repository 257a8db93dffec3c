package entities

import "github.com/shopspring/decimal"

// ProportionTolerance bounds how far a set of proportions may drift from
// summing to exactly one before it is rejected.
var ProportionTolerance = decimal.New(1, -6)

// DistributionLevel pairs one candidate attribute value with its proportion
type DistributionLevel struct {
	Value      AttributeValue
	Proportion decimal.Decimal
}

// AttributeDistribution assigns proportions to the candidate values of one
// attribute. Levels are ordered so partition output is deterministic.
type AttributeDistribution struct {
	Name   AttributeName
	Levels []DistributionLevel
}

// NewAttributeDistribution creates a validated AttributeDistribution. The
// level slice is copied.
func NewAttributeDistribution(name AttributeName, levels []DistributionLevel) (*AttributeDistribution, error) {
	d := AttributeDistribution{Name: name, Levels: levels}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	out := &AttributeDistribution{Name: name, Levels: make([]DistributionLevel, len(levels))}
	copy(out.Levels, levels)
	return out, nil
}

// Validate checks the distribution has a name, at least one level, and
// non-negative proportions summing to one within ProportionTolerance
func (d AttributeDistribution) Validate() error {
	if d.Name == "" {
		return NewConfigurationError("distribution name cannot be empty")
	}
	if len(d.Levels) == 0 {
		return NewConfigurationError("distribution %q has no levels", string(d.Name))
	}

	sum := decimal.Zero
	for _, level := range d.Levels {
		if level.Proportion.IsNegative() {
			return NewConfigurationError(
				"distribution %q has negative proportion %s", string(d.Name), level.Proportion)
		}
		sum = sum.Add(level.Proportion)
	}
	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(ProportionTolerance) {
		return NewConfigurationError(
			"distribution %q proportions sum to %s, want 1", string(d.Name), sum)
	}
	return nil
}
