package services

import (
	"time"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
)

// DemandCalculator decides whether, when, and how much immunization product
// one subpopulation demands under one configuration
type DemandCalculator struct{}

// NewDemandCalculator creates a new demand calculator
func NewDemandCalculator() *DemandCalculator {
	return &DemandCalculator{}
}

// CalculateDemand applies the eligibility and dosage rules to one
// subpopulation. A nil demand with a nil error means the subpopulation
// demands nothing; that outcome is valid and distinct from a failure.
//
// The decision procedure:
//  1. An unwilling subpopulation demands nothing.
//  2. First eligibility is the season start for children born before it and
//     the birth date for children born inside the season, season end
//     inclusive. Children born after the season end demand nothing.
//  3. The immunization date is first eligibility plus the subpopulation's
//     delay. Past the season end it demands nothing.
//  4. The age window at immunization picks the dosage rule: by weight, or
//     high-risk only. Outside every window the subpopulation demands nothing.
func (c *DemandCalculator) CalculateDemand(
	sub *entities.Subpopulation,
	config entities.DemandConfig,
) (*entities.DrugDemand, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if sub.Size.IsZero() {
		return nil, nil
	}

	willing, err := sub.Willing()
	if err != nil {
		return nil, err
	}
	if !willing {
		return nil, nil
	}

	birthDate, err := sub.BirthDate()
	if err != nil {
		return nil, err
	}

	var eligibility time.Time
	switch {
	case birthDate.Before(config.SeasonStart):
		eligibility = config.SeasonStart
	case !birthDate.After(config.SeasonEnd):
		eligibility = birthDate
	default:
		return nil, nil
	}

	delay, err := sub.Delay()
	if err != nil {
		return nil, err
	}
	immunizationDate, err := entities.AddIntervals(eligibility, delay, config.Interval)
	if err != nil {
		return nil, err
	}
	if immunizationDate.After(config.SeasonEnd) {
		return nil, nil
	}

	quantity, eligible, err := c.resolveDosage(sub, config, birthDate, immunizationDate)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, nil
	}

	return &entities.DrugDemand{
		Subpopulation: sub,
		Date:          immunizationDate,
		Quantity:      quantity,
	}, nil
}

// resolveDosage picks the quantity for the age window the subpopulation
// falls in at immunization. Windows are bounded in whole calendar months,
// inclusive below and exclusive above; past the last window the
// subpopulation is aged out.
func (c *DemandCalculator) resolveDosage(
	sub *entities.Subpopulation,
	config entities.DemandConfig,
	birthDate, immunizationDate time.Time,
) (entities.DrugQuantity, bool, error) {
	ageMonths := entities.AgeInMonths(birthDate, immunizationDate)

	for _, threshold := range config.AgeThresholds {
		if ageMonths >= threshold.MaxAgeMonths {
			continue
		}

		switch threshold.Rule {
		case entities.DoseByWeight:
			return c.doseByWeight(sub, config, birthDate, immunizationDate)
		case entities.DoseHighRiskOnly:
			risk, err := sub.Risk()
			if err != nil {
				return entities.DrugQuantity{}, false, err
			}
			if risk != entities.RiskHigh {
				return entities.DrugQuantity{}, false, nil
			}
			return config.HighRiskQuantity, true, nil
		default:
			return entities.DrugQuantity{}, false, entities.NewConfigurationError(
				"unknown dosage rule %d", int(threshold.Rule))
		}
	}

	return entities.DrugQuantity{}, false, nil
}

// doseByWeight resolves the low quantity below the weight threshold and the
// high quantity at or above it. The subpopulation's weight trajectory must
// have been computed for the configured threshold.
func (c *DemandCalculator) doseByWeight(
	sub *entities.Subpopulation,
	config entities.DemandConfig,
	birthDate, immunizationDate time.Time,
) (entities.DrugQuantity, bool, error) {
	weightForAge, err := sub.WeightForAge()
	if err != nil {
		return entities.DrugQuantity{}, false, err
	}
	if !weightForAge.Threshold.Equal(config.WeightThreshold) {
		return entities.DrugQuantity{}, false, entities.NewConfigurationError(
			"weight-for-age trajectory crosses %s but the configured threshold is %s",
			weightForAge.Threshold, config.WeightThreshold)
	}

	age, err := entities.AgeIn(birthDate, immunizationDate, config.Interval)
	if err != nil {
		return entities.DrugQuantity{}, false, err
	}
	if weightForAge.ReachedBy(age) {
		return config.HighQuantity, true, nil
	}
	return config.LowQuantity, true, nil
}
