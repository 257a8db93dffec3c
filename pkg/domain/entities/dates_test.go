package entities

import (
	"testing"
	"time"
)

func TestAgeInMonths(t *testing.T) {
	testCases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day", Date(2024, 2, 1), Date(2024, 2, 1), 0},
		{"day before a full month", Date(2024, 2, 1), Date(2024, 2, 29), 0},
		{"exactly one month", Date(2024, 2, 1), Date(2024, 3, 1), 1},
		{"exactly eight months", Date(2024, 2, 1), Date(2024, 10, 1), 8},
		{"one day short of eight months", Date(2024, 2, 1), Date(2024, 9, 30), 7},
		{"across a year boundary", Date(2024, 11, 15), Date(2025, 2, 14), 2},
		{"month-end start", Date(2024, 1, 31), Date(2024, 2, 28), 0},
		{"month-end start past", Date(2024, 1, 31), Date(2024, 3, 1), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := AgeInMonths(tc.start, tc.end)
			if got != tc.want {
				t.Errorf("AgeInMonths(%s, %s) = %d, want %d",
					tc.start.Format(DateFormat), tc.end.Format(DateFormat), got, tc.want)
			}
		})
	}
}

func TestAgeInWeeks(t *testing.T) {
	testCases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day", Date(2024, 10, 1), Date(2024, 10, 1), 0},
		{"six days", Date(2024, 10, 1), Date(2024, 10, 7), 0},
		{"seven days", Date(2024, 10, 1), Date(2024, 10, 8), 1},
		{"twenty days", Date(2024, 10, 1), Date(2024, 10, 21), 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := AgeInWeeks(tc.start, tc.end)
			if got != tc.want {
				t.Errorf("AgeInWeeks(%s, %s) = %d, want %d",
					tc.start.Format(DateFormat), tc.end.Format(DateFormat), got, tc.want)
			}
		})
	}
}

func TestAddMonths_Clamps(t *testing.T) {
	testCases := []struct {
		name string
		t    time.Time
		n    int
		want time.Time
	}{
		{"plain month", Date(2024, 10, 1), 1, Date(2024, 11, 1)},
		{"across year end", Date(2024, 11, 15), 3, Date(2025, 2, 15)},
		{"clamp to leap february", Date(2024, 1, 31), 1, Date(2024, 2, 29)},
		{"clamp to short february", Date(2025, 1, 31), 1, Date(2025, 2, 28)},
		{"clamp thirty-one to thirty", Date(2024, 3, 31), 1, Date(2024, 4, 30)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddMonths(tc.t, tc.n)
			if !got.Equal(tc.want) {
				t.Errorf("AddMonths(%s, %d) = %s, want %s",
					tc.t.Format(DateFormat), tc.n, got.Format(DateFormat), tc.want.Format(DateFormat))
			}
		})
	}
}

func TestAddIntervals(t *testing.T) {
	got, err := AddIntervals(Date(2024, 10, 1), 8, IntervalWeek)
	if err != nil {
		t.Fatalf("AddIntervals failed: %v", err)
	}
	if !got.Equal(Date(2024, 11, 26)) {
		t.Errorf("Expected 2024-11-26, got %s", got.Format(DateFormat))
	}

	got, err = AddIntervals(Date(2024, 10, 1), 2, IntervalMonth)
	if err != nil {
		t.Fatalf("AddIntervals failed: %v", err)
	}
	if !got.Equal(Date(2024, 12, 1)) {
		t.Errorf("Expected 2024-12-01, got %s", got.Format(DateFormat))
	}

	if _, err := AddIntervals(Date(2024, 10, 1), 1, "day"); err == nil {
		t.Error("Expected error for unknown interval, but got none")
	}
}

func TestEpiweek(t *testing.T) {
	// 2024-10-06 is a Sunday
	sunday := Date(2024, 10, 6)

	if got := Epiweek(sunday); !got.Equal(sunday) {
		t.Errorf("Expected a Sunday to start its own week, got %s", got.Format(DateFormat))
	}
	if got := Epiweek(Date(2024, 10, 9)); !got.Equal(sunday) {
		t.Errorf("Expected Wednesday to map to the prior Sunday, got %s", got.Format(DateFormat))
	}
	if got := Epiweek(Date(2024, 10, 12)); !got.Equal(sunday) {
		t.Errorf("Expected Saturday to map to the prior Sunday, got %s", got.Format(DateFormat))
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-10-01")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if !got.Equal(Date(2024, 10, 1)) {
		t.Errorf("Expected 2024-10-01, got %s", got.Format(DateFormat))
	}

	if _, err := ParseDate("10/01/2024"); err == nil {
		t.Error("Expected error for non-canonical layout, but got none")
	}
}
