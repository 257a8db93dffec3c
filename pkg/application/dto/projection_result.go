package dto

import (
	"time"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// ProjectionResult contains the complete output of a projection run
type ProjectionResult struct {
	Run     *entities.ProjectionRun
	Records []*entities.DemandRecord
	Elapsed time.Duration
}

// ScenarioRecords returns the records produced by one scenario, in the order
// they were computed
func (r *ProjectionResult) ScenarioRecords(scenario string) []*entities.DemandRecord {
	var records []*entities.DemandRecord
	for _, record := range r.Records {
		if record.Scenario == scenario {
			records = append(records, record)
		}
	}
	return records
}

// TotalDoses sums the size-scaled doses across all records
func (r *ProjectionResult) TotalDoses() decimal.Decimal {
	total := decimal.Zero
	for _, record := range r.Records {
		total = total.Add(record.Doses)
	}
	return total
}

// DoseTotal is one aggregate row: the summed doses for one group of demand
// records. Date is the group's time bucket where the reduction has one, and
// zero for whole-season totals.
type DoseTotal struct {
	Scenario string
	Date     time.Time
	Quantity entities.DrugQuantity
	Doses    decimal.Decimal
}

// MixShare is one dose-mix row: the share of one scenario's total doses
// attributable to one distinct quantity, rounded to three decimal places
type MixShare struct {
	Scenario string
	Quantity entities.DrugQuantity
	Doses    decimal.Decimal
	Share    decimal.Decimal
}
