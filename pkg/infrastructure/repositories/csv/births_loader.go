package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// Loader handles loading projection input data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadBirths loads birth cohorts from a CSV file
func (l *Loader) LoadBirths(filename string) ([]*entities.BirthCohort, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open births file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read births CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("births CSV must have header and at least one data row")
	}

	// Validate header
	expectedHeader := []string{"interval", "place", "date", "births"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("births CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var cohorts []*entities.BirthCohort
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("births CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		cohort, err := parseBirthCohort(record)
		if err != nil {
			return nil, fmt.Errorf("births CSV row %d: %w", i+2, err)
		}

		cohorts = append(cohorts, cohort)
	}

	return cohorts, nil
}

// WeeklyFromMonthly derives weekly birth cohorts from monthly counts. Each
// month's births are spread evenly over its days and summed into Sunday-start
// weeks; weeks that are not fully covered by the input months are dropped, so
// totals are conserved across every complete week.
func WeeklyFromMonthly(monthly []*entities.BirthCohort) ([]*entities.BirthCohort, error) {
	type placeDays struct {
		daily map[time.Time]decimal.Decimal
		first time.Time
		last  time.Time
	}

	places := make(map[entities.PlaceID]*placeDays)
	var order []entities.PlaceID

	for _, cohort := range monthly {
		if cohort.Interval != entities.IntervalMonth {
			return nil, fmt.Errorf("cohort %s/%s has interval %q, want %q",
				cohort.Place, cohort.Date.Format(entities.DateFormat),
				string(cohort.Interval), string(entities.IntervalMonth))
		}

		days, exists := places[cohort.Place]
		if !exists {
			days = &placeDays{daily: make(map[time.Time]decimal.Decimal)}
			places[cohort.Place] = days
			order = append(order, cohort.Place)
		}

		first := entities.Date(cohort.Date.Year(), cohort.Date.Month(), 1)
		inMonth := first.AddDate(0, 1, -1).Day()
		if _, dup := days.daily[first]; dup {
			return nil, fmt.Errorf("duplicate month %s for place %s",
				first.Format(entities.DateFormat), cohort.Place)
		}

		rate := cohort.Births.Div(decimal.NewFromInt(int64(inMonth)))
		for d := 0; d < inMonth; d++ {
			days.daily[first.AddDate(0, 0, d)] = rate
		}

		if days.first.IsZero() || first.Before(days.first) {
			days.first = first
		}
		if last := first.AddDate(0, 0, inMonth-1); last.After(days.last) {
			days.last = last
		}
	}

	var weekly []*entities.BirthCohort
	for _, place := range order {
		days := places[place]
		for sunday := entities.Epiweek(days.first); !sunday.After(days.last); sunday = sunday.AddDate(0, 0, 7) {
			births := decimal.Zero
			complete := true
			for d := 0; d < 7; d++ {
				rate, covered := days.daily[sunday.AddDate(0, 0, d)]
				if !covered {
					complete = false
					break
				}
				births = births.Add(rate)
			}
			if !complete {
				continue
			}

			cohort, err := entities.NewBirthCohort(place, entities.IntervalWeek, sunday, births)
			if err != nil {
				return nil, fmt.Errorf("week %s for place %s: %w",
					sunday.Format(entities.DateFormat), place, err)
			}
			weekly = append(weekly, cohort)
		}
	}

	return weekly, nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseBirthCohort(record []string) (*entities.BirthCohort, error) {
	interval, err := parseInterval(record[0])
	if err != nil {
		return nil, err
	}

	place := entities.PlaceID(strings.TrimSpace(record[1]))
	if place == "" {
		return nil, fmt.Errorf("place cannot be empty")
	}

	date, err := entities.ParseDate(record[2])
	if err != nil {
		return nil, err
	}

	births, err := decimal.NewFromString(record[3])
	if err != nil {
		return nil, fmt.Errorf("invalid births: %s", record[3])
	}

	return entities.NewBirthCohort(place, interval, date, births)
}

func parseInterval(s string) (entities.Interval, error) {
	interval := entities.Interval(strings.ToLower(strings.TrimSpace(s)))
	if !interval.Valid() {
		return "", fmt.Errorf("invalid interval: %s (expected 'week' or 'month')", s)
	}
	return interval, nil
}
