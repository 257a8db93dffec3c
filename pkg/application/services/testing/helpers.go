package testing

import (
	"time"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/ebirch/rsvdemand/pkg/infrastructure/repositories/memory"
	"github.com/shopspring/decimal"
)

// mustCreateCohort is a helper for tests - panics on validation error
func mustCreateCohort(
	place string,
	interval entities.Interval,
	date time.Time,
	births int64,
) *entities.BirthCohort {
	cohort, err := entities.NewBirthCohort(
		entities.PlaceID(place),
		interval,
		date,
		decimal.NewFromInt(births),
	)
	if err != nil {
		panic(err)
	}
	return cohort
}

// mustCreateBucket is a helper for tests - panics on validation error
func mustCreateBucket(
	source string,
	interval entities.Interval,
	age int,
	proportion string,
) *entities.WeightBucket {
	bucket, err := entities.NewWeightBucket(
		source,
		interval,
		age,
		decimal.RequireFromString(proportion),
	)
	if err != nil {
		panic(err)
	}
	return bucket
}

// MustCreateScenario builds a validated scenario - panics on validation error
func MustCreateScenario(
	name string,
	interval entities.Interval,
	uptake, highRisk string,
	delays entities.DelayProportions,
	growthChart string,
) *entities.Scenario {
	config := entities.DefaultDemandConfig(
		entities.Date(2024, 10, 1),
		entities.Date(2025, 3, 31),
		interval,
	)
	scenario, err := entities.NewScenario(
		name,
		config,
		decimal.RequireFromString(uptake),
		decimal.RequireFromString(highRisk),
		delays,
		growthChart,
	)
	if err != nil {
		panic(err)
	}
	return scenario
}

// BuildSeasonTestData builds a small two-place weekly season: four Sunday
// birth cohorts per place, WHO and CDC growth charts, and three scenarios
func BuildSeasonTestData() (*memory.BirthRepository, *memory.GrowthChartRepository, *memory.ScenarioRepository) {
	birthRepo := memory.NewBirthRepository(8)
	growthRepo := memory.NewGrowthChartRepository(8)
	scenarioRepo := memory.NewScenarioRepository(3)

	cohorts := []*entities.BirthCohort{
		mustCreateCohort("4", entities.IntervalWeek, entities.Date(2024, 9, 1), 1000),
		mustCreateCohort("4", entities.IntervalWeek, entities.Date(2024, 10, 6), 1000),
		mustCreateCohort("4", entities.IntervalWeek, entities.Date(2024, 12, 1), 1000),
		mustCreateCohort("4", entities.IntervalWeek, entities.Date(2025, 2, 2), 1000),
		mustCreateCohort("6", entities.IntervalWeek, entities.Date(2024, 9, 1), 500),
		mustCreateCohort("6", entities.IntervalWeek, entities.Date(2024, 10, 6), 500),
		mustCreateCohort("6", entities.IntervalWeek, entities.Date(2024, 12, 1), 500),
		mustCreateCohort("6", entities.IntervalWeek, entities.Date(2025, 2, 2), 500),
	}
	if err := birthRepo.LoadCohorts(cohorts); err != nil {
		panic(err)
	}

	buckets := []*entities.WeightBucket{
		mustCreateBucket("WHO", entities.IntervalWeek, 0, "0.25"),
		mustCreateBucket("WHO", entities.IntervalWeek, 4, "0.25"),
		mustCreateBucket("WHO", entities.IntervalWeek, 8, "0.5"),
		mustCreateBucket("CDC", entities.IntervalWeek, 0, "0.2"),
		mustCreateBucket("CDC", entities.IntervalWeek, 6, "0.8"),
	}
	if err := growthRepo.LoadBuckets(buckets); err != nil {
		panic(err)
	}

	scenarios := []*entities.Scenario{
		MustCreateScenario("highest_100", entities.IntervalWeek, "0.8", "0.04",
			entities.DelayProportions{
				0: decimal.RequireFromString("0.8"),
				8: decimal.RequireFromString("0.2"),
			}, "WHO"),
		MustCreateScenario("middle_100", entities.IntervalWeek, "0.8", "0.03",
			entities.DelayProportions{
				0: decimal.RequireFromString("0.8"),
				4: decimal.RequireFromString("0.2"),
			}, "WHO"),
		MustCreateScenario("lowest_100", entities.IntervalWeek, "0.8", "0.02",
			nil, "CDC"),
	}
	if err := scenarioRepo.LoadScenarios(scenarios); err != nil {
		panic(err)
	}

	return birthRepo, growthRepo, scenarioRepo
}

// BuildSingleCohortTestData builds one willing cohort and a one-bucket chart
// for tests that need exact demand arithmetic
func BuildSingleCohortTestData() (*memory.BirthRepository, *memory.GrowthChartRepository) {
	birthRepo := memory.NewBirthRepository(1)
	growthRepo := memory.NewGrowthChartRepository(1)

	if err := birthRepo.LoadCohorts([]*entities.BirthCohort{
		mustCreateCohort("4", entities.IntervalWeek, entities.Date(2024, 12, 1), 1000),
	}); err != nil {
		panic(err)
	}
	if err := growthRepo.LoadBuckets([]*entities.WeightBucket{
		mustCreateBucket("WHO", entities.IntervalWeek, 0, "1"),
	}); err != nil {
		panic(err)
	}

	return birthRepo, growthRepo
}
