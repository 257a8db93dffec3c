package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDrugDosage_Validation(t *testing.T) {
	dosage, err := NewDrugDosage(decimal.NewFromInt(50), "mg")
	if err != nil {
		t.Fatalf("Expected valid dosage creation to succeed: %v", err)
	}
	if dosage.String() != "50mg" {
		t.Errorf("Expected dosage string 50mg, got %s", dosage.String())
	}

	testCases := []struct {
		name        string
		amount      decimal.Decimal
		unit        string
		expectError string
	}{
		{"zero amount", decimal.Zero, "mg", "dosage amount must be positive, got 0"},
		{"negative amount", decimal.NewFromInt(-50), "mg", "dosage amount must be positive, got -50"},
		{"empty unit", decimal.NewFromInt(50), "", "dosage unit cannot be empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDrugDosage(tc.amount, tc.unit)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestDrugDosage_Equal(t *testing.T) {
	a := DrugDosage{Amount: decimal.NewFromInt(50), Unit: "mg"}
	b := DrugDosage{Amount: decimal.NewFromFloat(50.0), Unit: "mg"}
	c := DrugDosage{Amount: decimal.NewFromInt(100), Unit: "mg"}
	d := DrugDosage{Amount: decimal.NewFromInt(50), Unit: "ml"}

	if !a.Equal(b) {
		t.Errorf("Expected %s to equal %s", a, b)
	}
	if a.Equal(c) {
		t.Errorf("Expected %s to differ from %s", a, c)
	}
	if a.Equal(d) {
		t.Errorf("Expected %s to differ from %s", a, d)
	}
}

func TestDrugQuantity_Validation(t *testing.T) {
	quantity, err := NewDrugQuantity(Dosage100mg, 2)
	if err != nil {
		t.Fatalf("Expected valid quantity creation to succeed: %v", err)
	}
	if quantity.Key() != "2x100mg" {
		t.Errorf("Expected quantity key 2x100mg, got %s", quantity.Key())
	}
	if !quantity.TotalAmount().Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected total amount 200, got %s", quantity.TotalAmount())
	}

	testCases := []struct {
		name        string
		nDoses      int
		expectError string
	}{
		{"zero doses", 0, "dose count must be positive, got 0"},
		{"negative doses", -1, "dose count must be positive, got -1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDrugQuantity(Dosage50mg, tc.nDoses)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestDrugDemand_Doses(t *testing.T) {
	sub := &Subpopulation{
		Size:       decimal.NewFromFloat(120.5),
		Attributes: Attributes{},
	}
	demand := &DrugDemand{
		Subpopulation: sub,
		Date:          Date(2024, 10, 1),
		Quantity:      DrugQuantity{Dosage: Dosage100mg, NDoses: 2},
	}

	if !demand.Doses().Equal(decimal.NewFromFloat(241.0)) {
		t.Errorf("Expected 241 doses, got %s", demand.Doses())
	}
}
