package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DrugDosage represents a single-dose presentation of the product
type DrugDosage struct {
	Amount decimal.Decimal
	Unit   string
}

// The product's two presentations
var (
	Dosage50mg  = DrugDosage{Amount: decimal.NewFromInt(50), Unit: "mg"}
	Dosage100mg = DrugDosage{Amount: decimal.NewFromInt(100), Unit: "mg"}
)

// NewDrugDosage creates a validated DrugDosage
func NewDrugDosage(amount decimal.Decimal, unit string) (DrugDosage, error) {
	if !amount.IsPositive() {
		return DrugDosage{}, fmt.Errorf("dosage amount must be positive, got %s", amount)
	}
	if unit == "" {
		return DrugDosage{}, fmt.Errorf("dosage unit cannot be empty")
	}
	return DrugDosage{Amount: amount, Unit: unit}, nil
}

// Equal reports whether two dosages have the same amount and unit
func (d DrugDosage) Equal(other DrugDosage) bool {
	return d.Amount.Equal(other.Amount) && d.Unit == other.Unit
}

// String renders the dosage, e.g. "50mg"
func (d DrugDosage) String() string {
	return d.Amount.String() + d.Unit
}

// DrugQuantity represents the doses of one dosage a single child receives
type DrugQuantity struct {
	Dosage DrugDosage
	NDoses int
}

// NewDrugQuantity creates a validated DrugQuantity
func NewDrugQuantity(dosage DrugDosage, nDoses int) (DrugQuantity, error) {
	if nDoses <= 0 {
		return DrugQuantity{}, fmt.Errorf("dose count must be positive, got %d", nDoses)
	}
	return DrugQuantity{Dosage: dosage, NDoses: nDoses}, nil
}

// Equal reports whether two quantities have the same dosage and dose count
func (q DrugQuantity) Equal(other DrugQuantity) bool {
	return q.Dosage.Equal(other.Dosage) && q.NDoses == other.NDoses
}

// TotalAmount returns the total drug amount, dosage amount times dose count
func (q DrugQuantity) TotalAmount() decimal.Decimal {
	return q.Dosage.Amount.Mul(decimal.NewFromInt(int64(q.NDoses)))
}

// Key renders the quantity for grouping, e.g. "2x100mg"
func (q DrugQuantity) Key() string {
	return fmt.Sprintf("%dx%s", q.NDoses, q.Dosage)
}

// DrugDemand represents a demand event: a subpopulation requiring a quantity
// on a date. Created only by the demand calculator; at most one per
// subpopulation per scenario run.
type DrugDemand struct {
	Subpopulation *Subpopulation
	Date          time.Time
	Quantity      DrugQuantity
}

// Doses returns the size-scaled dose count for the whole subpopulation
func (d *DrugDemand) Doses() decimal.Decimal {
	return d.Subpopulation.Size.Mul(decimal.NewFromInt(int64(d.Quantity.NDoses)))
}
