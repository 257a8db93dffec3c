package projection

import (
	"sort"
	"time"

	"github.com/ebirch/rsvdemand/pkg/application/dto"
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// Aggregator reduces demand records into summary tables. Every reduction is
// a pure fold over its input and returns rows in a deterministic order:
// scenario, then time bucket, then quantity.
type Aggregator struct{}

// NewAggregator creates a new aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// SeasonTotals sums doses per scenario and quantity across the whole season
func (a *Aggregator) SeasonTotals(records []*entities.DemandRecord) []dto.DoseTotal {
	return a.sumBy(records, func(*entities.DemandRecord) time.Time {
		return time.Time{}
	})
}

// DosesByWeek sums doses per scenario and quantity for each epidemiological
// week of the immunization date
func (a *Aggregator) DosesByWeek(records []*entities.DemandRecord) []dto.DoseTotal {
	return a.sumBy(records, func(record *entities.DemandRecord) time.Time {
		return entities.Epiweek(record.Date)
	})
}

// DosesByBirthCohort sums doses per scenario and quantity for each birth
// cohort date
func (a *Aggregator) DosesByBirthCohort(records []*entities.DemandRecord) []dto.DoseTotal {
	return a.sumBy(records, func(record *entities.DemandRecord) time.Time {
		return record.BirthDate
	})
}

// Mix reports each distinct quantity's share of its scenario's total doses,
// rounded to three decimal places
func (a *Aggregator) Mix(records []*entities.DemandRecord) []dto.MixShare {
	totals := make(map[string]decimal.Decimal)
	for _, record := range records {
		totals[record.Scenario] = totals[record.Scenario].Add(record.Doses)
	}

	rows := a.sumBy(records, func(*entities.DemandRecord) time.Time {
		return time.Time{}
	})

	shares := make([]dto.MixShare, 0, len(rows))
	for _, row := range rows {
		share := decimal.Zero
		if total := totals[row.Scenario]; !total.IsZero() {
			share = row.Doses.Div(total).Round(3)
		}
		shares = append(shares, dto.MixShare{
			Scenario: row.Scenario,
			Quantity: row.Quantity,
			Doses:    row.Doses,
			Share:    share,
		})
	}
	return shares
}

// MixBefore restricts the mix to demand dated strictly before the cutoff
func (a *Aggregator) MixBefore(records []*entities.DemandRecord, cutoff time.Time) []dto.MixShare {
	var filtered []*entities.DemandRecord
	for _, record := range records {
		if record.Date.Before(cutoff) {
			filtered = append(filtered, record)
		}
	}
	return a.Mix(filtered)
}

type doseGroupKey struct {
	scenario string
	date     time.Time
	quantity string
}

// sumBy folds records into one row per (scenario, bucket, quantity) group
func (a *Aggregator) sumBy(
	records []*entities.DemandRecord,
	bucket func(*entities.DemandRecord) time.Time,
) []dto.DoseTotal {
	groups := make(map[doseGroupKey]*dto.DoseTotal)
	for _, record := range records {
		quantity := entities.DrugQuantity{Dosage: record.Dosage, NDoses: record.NDoses}
		key := doseGroupKey{
			scenario: record.Scenario,
			date:     bucket(record),
			quantity: quantity.Key(),
		}

		row, exists := groups[key]
		if !exists {
			row = &dto.DoseTotal{
				Scenario: record.Scenario,
				Date:     key.date,
				Quantity: quantity,
			}
			groups[key] = row
		}
		row.Doses = row.Doses.Add(record.Doses)
	}

	rows := make([]dto.DoseTotal, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Scenario != rows[j].Scenario {
			return rows[i].Scenario < rows[j].Scenario
		}
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return quantityLess(rows[i].Quantity, rows[j].Quantity)
	})
	return rows
}

// quantityLess orders quantities by dosage amount, then dose count, then unit
func quantityLess(a, b entities.DrugQuantity) bool {
	if cmp := a.Dosage.Amount.Cmp(b.Dosage.Amount); cmp != 0 {
		return cmp < 0
	}
	if a.NDoses != b.NDoses {
		return a.NDoses < b.NDoses
	}
	return a.Dosage.Unit < b.Dosage.Unit
}
