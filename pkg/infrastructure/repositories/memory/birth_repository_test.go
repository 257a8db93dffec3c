package memory

import (
	"testing"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

func TestBirthRepository_GetCohorts(t *testing.T) {
	repo := NewBirthRepository(10)

	cohorts := []*entities.BirthCohort{
		{Place: "4", Interval: entities.IntervalWeek, Date: entities.Date(2024, 9, 29), Births: decimal.NewFromInt(1200)},
		{Place: "6", Interval: entities.IntervalWeek, Date: entities.Date(2024, 9, 29), Births: decimal.NewFromInt(900)},
		{Place: "4", Interval: entities.IntervalWeek, Date: entities.Date(2024, 10, 6), Births: decimal.NewFromInt(1180)},
		{Place: "4", Interval: entities.IntervalMonth, Date: entities.Date(2024, 10, 1), Births: decimal.NewFromInt(5100)},
	}
	if err := repo.LoadCohorts(cohorts); err != nil {
		t.Fatalf("Failed to load cohorts: %v", err)
	}

	weekly, err := repo.GetCohorts(entities.IntervalWeek)
	if err != nil {
		t.Fatalf("GetCohorts failed: %v", err)
	}
	if len(weekly) != 3 {
		t.Fatalf("Expected 3 weekly cohorts, got %d", len(weekly))
	}
	if !weekly[0].Date.Equal(entities.Date(2024, 9, 29)) || weekly[0].Place != "4" {
		t.Errorf("Expected load order preserved, got %s/%s first",
			weekly[0].Place, weekly[0].Date.Format(entities.DateFormat))
	}

	monthly, err := repo.GetCohorts(entities.IntervalMonth)
	if err != nil {
		t.Fatalf("GetCohorts failed: %v", err)
	}
	if len(monthly) != 1 {
		t.Errorf("Expected 1 monthly cohort, got %d", len(monthly))
	}
}

func TestBirthRepository_GetCohortsByPlace(t *testing.T) {
	repo := NewBirthRepository(4)
	repo.AddCohort(entities.BirthCohort{
		Place: "4", Interval: entities.IntervalWeek,
		Date: entities.Date(2024, 9, 29), Births: decimal.NewFromInt(1200)})
	repo.AddCohort(entities.BirthCohort{
		Place: "6", Interval: entities.IntervalWeek,
		Date: entities.Date(2024, 9, 29), Births: decimal.NewFromInt(900)})

	cohorts, err := repo.GetCohortsByPlace("6", entities.IntervalWeek)
	if err != nil {
		t.Fatalf("GetCohortsByPlace failed: %v", err)
	}
	if len(cohorts) != 1 {
		t.Fatalf("Expected 1 cohort for place 6, got %d", len(cohorts))
	}
	if !cohorts[0].Births.Equal(decimal.NewFromInt(900)) {
		t.Errorf("Expected 900 births, got %s", cohorts[0].Births)
	}
}

func TestBirthRepository_GetPlaces(t *testing.T) {
	repo := NewBirthRepository(6)
	for _, place := range []entities.PlaceID{"4", "6", "other", "4", "6"} {
		repo.AddCohort(entities.BirthCohort{
			Place: place, Interval: entities.IntervalWeek,
			Date: entities.Date(2024, 9, 29), Births: decimal.NewFromInt(100)})
	}

	places, err := repo.GetPlaces(entities.IntervalWeek)
	if err != nil {
		t.Fatalf("GetPlaces failed: %v", err)
	}
	if len(places) != 3 {
		t.Fatalf("Expected 3 distinct places, got %d", len(places))
	}
	for i, want := range []entities.PlaceID{"4", "6", "other"} {
		if places[i] != want {
			t.Errorf("Expected place %s at index %d, got %s", want, i, places[i])
		}
	}
}
