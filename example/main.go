package main

import (
	"context"
	"fmt"

	"github.com/ebirch/rsvdemand/pkg/application/services/projection"
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/ebirch/rsvdemand/pkg/infrastructure/events"
	"github.com/ebirch/rsvdemand/pkg/infrastructure/repositories/memory"
	"github.com/shopspring/decimal"
)

func main() {
	ctx := context.Background()

	// Create repositories
	birthRepo := memory.NewBirthRepository(12)
	chartRepo := memory.NewGrowthChartRepository(5)

	setupSeasonData(birthRepo, chartRepo)

	// Create the projection service with an event store
	eventStore := events.NewInMemoryEventStore()
	service := projection.NewEventDrivenProjectionService(eventStore)

	// Define two immunization scenarios for the 2024/25 season
	scenarios := buildScenarios()

	fmt.Println("🚀 Projecting nirsevimab demand for the 2024/25 season...")
	fmt.Printf("Scenarios: %d | Season: %s to %s\n",
		len(scenarios),
		scenarios[0].Config.SeasonStart.Format(entities.DateFormat),
		scenarios[0].Config.SeasonEnd.Format(entities.DateFormat))
	fmt.Println()

	// Run the projection
	result, err := service.RunScenarios(ctx, scenarios, birthRepo, chartRepo)
	if err != nil {
		fmt.Printf("❌ Projection failed: %v\n", err)
		return
	}

	// Display results
	fmt.Println("📊 Projection Results:")
	fmt.Printf("  Run: %s\n", result.Run.ID)
	fmt.Printf("  Demand Records: %d\n", len(result.Records))
	fmt.Printf("  Total Doses: %s\n", result.TotalDoses().StringFixed(0))
	fmt.Println()

	aggregator := projection.NewAggregator()

	// Show each scenario's season totals
	fmt.Println("💉 Season Totals:")
	for _, total := range aggregator.SeasonTotals(result.Records) {
		fmt.Printf("  %s: %s doses of %s\n",
			total.Scenario, total.Doses.StringFixed(0), total.Quantity.Key())
	}
	fmt.Println()

	// Show the dose mix
	fmt.Println("🧪 Dose Mix:")
	for _, share := range aggregator.Mix(result.Records) {
		fmt.Printf("  %s / %s: %s\n",
			share.Scenario, share.Quantity.Key(), share.Share.String())
	}
	fmt.Println()

	// Show what the run published to the event store
	published, err := eventStore.ReadEvents(result.Run.ID, 0)
	if err != nil {
		fmt.Printf("❌ Failed to read run events: %v\n", err)
		return
	}

	fmt.Println("📨 Run Events:")
	for _, event := range published {
		fmt.Printf("  v%d %s\n", event.Version(), event.Type())
	}
	fmt.Println()

	fmt.Println("✅ Demand projection complete!")
}

func setupSeasonData(birthRepo *memory.BirthRepository, chartRepo *memory.GrowthChartRepository) {
	// Six monthly cohorts in two places, born in the run-up to the season
	places := []struct {
		id     entities.PlaceID
		counts []int64
	}{
		{"11", []int64{980, 1012, 1045, 1001, 963, 994}},
		{"26", []int64{412, 398, 431, 420, 405, 416}},
	}

	for _, place := range places {
		for month, count := range place.counts {
			birthRepo.AddCohort(entities.BirthCohort{
				Place:    place.id,
				Interval: entities.IntervalMonth,
				Date:     entities.AddMonths(entities.Date(2024, 6, 1), month),
				Births:   decimal.NewFromInt(count),
			})
		}
	}

	// A compact weight-for-age chart: the share of a cohort crossing the
	// dosing weight threshold at each age in months
	masses := []string{"0.05", "0.25", "0.40", "0.20", "0.10"}
	for age, mass := range masses {
		chartRepo.AddBucket(entities.WeightBucket{
			Source:     "WHO",
			Interval:   entities.IntervalMonth,
			Age:        age,
			Proportion: decimal.RequireFromString(mass),
		})
	}
}

func buildScenarios() []*entities.Scenario {
	config := entities.DefaultDemandConfig(
		entities.Date(2024, 10, 1),
		entities.Date(2025, 3, 31),
		entities.IntervalMonth,
	)

	baseline, err := entities.NewScenario(
		"baseline",
		config,
		decimal.RequireFromString("0.6"),  // 60% uptake
		decimal.RequireFromString("0.05"), // 5% high risk
		nil,                               // everyone immunizes without delay
		"WHO",
	)
	if err != nil {
		panic(err)
	}

	slowRollout, err := entities.NewScenario(
		"slow_rollout",
		config,
		decimal.RequireFromString("0.6"),
		decimal.RequireFromString("0.05"),
		entities.DelayProportions{
			0: decimal.RequireFromString("0.5"), // half immunize on time
			2: decimal.RequireFromString("0.5"), // half two months late
		},
		"WHO",
	)
	if err != nil {
		panic(err)
	}

	return []*entities.Scenario{baseline, slowRollout}
}
