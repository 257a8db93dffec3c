package services

import (
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// Partitioner expands populations into subpopulations by cross-multiplying
// them against attribute distributions
type Partitioner struct{}

// PartitionVisitor receives each leaf subpopulation produced by a walk
type PartitionVisitor func(*entities.Subpopulation) error

// NewPartitioner creates a new partitioner
func NewPartitioner() *Partitioner {
	return &Partitioner{}
}

// Partition splits every population across every distribution. Each leaf
// subpopulation carries the union of the parent attributes and one level per
// distribution, and its size is the parent size multiplied by the chosen
// proportions. Output order is deterministic: populations in input order,
// levels in listed order, with the first distribution varying slowest.
func (p *Partitioner) Partition(
	populations []*entities.Population,
	distributions []entities.AttributeDistribution,
) ([]*entities.Subpopulation, error) {
	capacity := len(populations)
	for _, dist := range distributions {
		capacity *= len(dist.Levels)
	}

	subpopulations := make([]*entities.Subpopulation, 0, capacity)
	err := p.Walk(populations, distributions, func(sub *entities.Subpopulation) error {
		subpopulations = append(subpopulations, sub)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subpopulations, nil
}

// Walk streams the same subpopulations Partition would return, without
// materializing them all, calling visit once per leaf. Walk stops at the
// first error from visit and returns it.
func (p *Partitioner) Walk(
	populations []*entities.Population,
	distributions []entities.AttributeDistribution,
	visit PartitionVisitor,
) error {
	if err := p.validate(populations, distributions); err != nil {
		return err
	}

	for _, pop := range populations {
		if err := p.split(pop.Size, pop.Attributes.Clone(), distributions, visit); err != nil {
			return err
		}
	}
	return nil
}

// validate rejects malformed distributions and attribute name collisions
// before any subpopulation is produced
func (p *Partitioner) validate(
	populations []*entities.Population,
	distributions []entities.AttributeDistribution,
) error {
	seen := make(map[entities.AttributeName]bool, len(distributions))
	for _, dist := range distributions {
		if err := dist.Validate(); err != nil {
			return err
		}
		if seen[dist.Name] {
			return entities.NewConfigurationError(
				"distribution %q is defined twice", string(dist.Name))
		}
		seen[dist.Name] = true
	}

	for _, pop := range populations {
		for _, dist := range distributions {
			if pop.Attributes.Has(dist.Name) {
				return entities.NewConfigurationError(
					"distribution %q collides with an existing population attribute", string(dist.Name))
			}
		}
	}
	return nil
}

// split recursively applies the remaining distributions to one branch
func (p *Partitioner) split(
	size decimal.Decimal,
	attributes entities.Attributes,
	remaining []entities.AttributeDistribution,
	visit PartitionVisitor,
) error {
	if len(remaining) == 0 {
		return visit(&entities.Subpopulation{Size: size, Attributes: attributes})
	}

	dist := remaining[0]
	for _, level := range dist.Levels {
		childAttributes := attributes.Clone()
		childAttributes[dist.Name] = level.Value

		if err := p.split(size.Mul(level.Proportion), childAttributes, remaining[1:], visit); err != nil {
			return err
		}
	}
	return nil
}
