package projection

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/ebirch/rsvdemand/pkg/application/dto"
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/ebirch/rsvdemand/pkg/domain/repositories"
	"github.com/ebirch/rsvdemand/pkg/domain/services"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ServiceConfig holds configuration for the projection engine
type ServiceConfig struct {
	// Workers bounds how many scenarios are projected concurrently
	Workers int
}

// ProjectionService projects immunization demand for scenario sets. Every
// scenario is an independent pure computation over the same birth cohorts,
// so scenarios run concurrently and each writes into its own result slot;
// the merged record order is deterministic regardless of worker count.
type ProjectionService struct {
	config      ServiceConfig
	partitioner *services.Partitioner
	calculator  *services.DemandCalculator
}

// NewProjectionService creates a projection service with default configuration
func NewProjectionService() *ProjectionService {
	return NewProjectionServiceWithConfig(ServiceConfig{
		Workers: runtime.NumCPU(),
	})
}

// NewProjectionServiceWithConfig creates a projection service with custom
// configuration
func NewProjectionServiceWithConfig(config ServiceConfig) *ProjectionService {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &ProjectionService{
		config:      config,
		partitioner: services.NewPartitioner(),
		calculator:  services.NewDemandCalculator(),
	}
}

// RunScenarios projects demand for every scenario across the stored birth
// cohorts and growth charts
func (s *ProjectionService) RunScenarios(
	ctx context.Context,
	scenarios []*entities.Scenario,
	birthRepo repositories.BirthRepository,
	growthRepo repositories.GrowthChartRepository,
) (*dto.ProjectionResult, error) {
	started := time.Now()

	interval, err := s.validateScenarioSet(scenarios)
	if err != nil {
		return nil, err
	}

	cohorts, err := birthRepo.GetCohorts(interval)
	if err != nil {
		return nil, fmt.Errorf("failed to load birth cohorts: %w", err)
	}
	if len(cohorts) == 0 {
		return nil, entities.NewConfigurationError("no birth cohorts for interval %q", string(interval))
	}

	names := make([]string, len(scenarios))
	for i, scenario := range scenarios {
		names[i] = scenario.Name
	}
	run := entities.NewProjectionRun(names, interval)

	slots := make([][]*entities.DemandRecord, len(scenarios))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.config.Workers)
	for i, scenario := range scenarios {
		group.Go(func() error {
			buckets, err := growthRepo.GetBuckets(scenario.GrowthChart, interval)
			if err != nil {
				return fmt.Errorf("failed to load growth chart %s: %w", scenario.GrowthChart, err)
			}

			records, err := s.projectScenario(groupCtx, run.ID, scenario, cohorts, buckets)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}
			slots[i] = records
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var records []*entities.DemandRecord
	for _, slot := range slots {
		records = append(records, slot...)
	}

	return &dto.ProjectionResult{
		Run:     run,
		Records: records,
		Elapsed: time.Since(started),
	}, nil
}

// validateScenarioSet rejects empty sets, duplicate names, and mixed cohort
// intervals, and returns the shared interval
func (s *ProjectionService) validateScenarioSet(scenarios []*entities.Scenario) (entities.Interval, error) {
	if len(scenarios) == 0 {
		return "", entities.NewConfigurationError("no scenarios to run")
	}

	seen := make(map[string]bool, len(scenarios))
	interval := scenarios[0].Config.Interval
	for _, scenario := range scenarios {
		if seen[scenario.Name] {
			return "", entities.NewConfigurationError("scenario %q is defined twice", scenario.Name)
		}
		seen[scenario.Name] = true

		if scenario.Config.Interval != interval {
			return "", entities.NewConfigurationError(
				"scenarios mix cohort intervals %q and %q",
				string(interval), string(scenario.Config.Interval))
		}
	}
	return interval, nil
}

// projectScenario partitions every birth cohort by the scenario's attribute
// distributions and calculates demand for each resulting subpopulation
func (s *ProjectionService) projectScenario(
	ctx context.Context,
	runID string,
	scenario *entities.Scenario,
	cohorts []*entities.BirthCohort,
	buckets []*entities.WeightBucket,
) ([]*entities.DemandRecord, error) {
	populations := make([]*entities.Population, 0, len(cohorts))
	for _, cohort := range cohorts {
		population, err := entities.NewPopulation(cohort.Births, entities.Attributes{
			entities.AttrBirthDate: cohort.Date,
			entities.AttrPlace:     cohort.Place,
		})
		if err != nil {
			return nil, fmt.Errorf("cohort %s/%s: %w",
				cohort.Place, cohort.Date.Format(entities.DateFormat), err)
		}
		populations = append(populations, population)
	}

	distributions, err := s.buildDistributions(scenario, buckets)
	if err != nil {
		return nil, err
	}

	var records []*entities.DemandRecord
	err = s.partitioner.Walk(populations, distributions, func(sub *entities.Subpopulation) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		demand, err := s.calculator.CalculateDemand(sub, scenario.Config)
		if err != nil {
			return err
		}
		if demand == nil {
			return nil
		}

		record, err := s.buildRecord(runID, scenario.Name, demand)
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// buildDistributions translates the scenario parameters into the attribute
// distributions the partitioner fans out over: willingness from uptake, risk
// level from the high-risk proportion, delay from the delay proportions, and
// the weight trajectory from the growth chart
func (s *ProjectionService) buildDistributions(
	scenario *entities.Scenario,
	buckets []*entities.WeightBucket,
) ([]entities.AttributeDistribution, error) {
	one := decimal.NewFromInt(1)

	willing := entities.AttributeDistribution{
		Name: entities.AttrWilling,
		Levels: []entities.DistributionLevel{
			{Value: true, Proportion: scenario.Uptake},
			{Value: false, Proportion: one.Sub(scenario.Uptake)},
		},
	}

	risk := entities.AttributeDistribution{
		Name: entities.AttrRiskLevel,
		Levels: []entities.DistributionLevel{
			{Value: entities.RiskBaseline, Proportion: one.Sub(scenario.HighRisk)},
			{Value: entities.RiskHigh, Proportion: scenario.HighRisk},
		},
	}

	delays := make([]int, 0, len(scenario.Delays))
	for delay := range scenario.Delays {
		delays = append(delays, delay)
	}
	sort.Ints(delays)
	delay := entities.AttributeDistribution{
		Name:   entities.AttrDelay,
		Levels: make([]entities.DistributionLevel, 0, len(delays)),
	}
	for _, d := range delays {
		delay.Levels = append(delay.Levels, entities.DistributionLevel{
			Value: d, Proportion: scenario.Delays[d],
		})
	}

	if len(buckets) == 0 {
		return nil, entities.NewConfigurationError(
			"growth chart %q has no rows for interval %q",
			scenario.GrowthChart, string(scenario.Config.Interval))
	}
	sorted := make([]*entities.WeightBucket, len(buckets))
	copy(sorted, buckets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Age < sorted[j].Age })

	weight := entities.AttributeDistribution{
		Name:   entities.AttrWeightForAge,
		Levels: make([]entities.DistributionLevel, 0, len(sorted)),
	}
	for _, bucket := range sorted {
		weight.Levels = append(weight.Levels, entities.DistributionLevel{
			Value: entities.WeightForAge{
				Threshold:      scenario.Config.WeightThreshold,
				AgeAtThreshold: bucket.Age,
			},
			Proportion: bucket.Proportion,
		})
	}

	return []entities.AttributeDistribution{willing, risk, delay, weight}, nil
}

// buildRecord flattens one demand event into a persistable record
func (s *ProjectionService) buildRecord(
	runID, scenario string,
	demand *entities.DrugDemand,
) (*entities.DemandRecord, error) {
	sub := demand.Subpopulation

	birthDate, err := sub.BirthDate()
	if err != nil {
		return nil, err
	}
	risk, err := sub.Risk()
	if err != nil {
		return nil, err
	}
	delay, err := sub.Delay()
	if err != nil {
		return nil, err
	}
	weightForAge, err := sub.WeightForAge()
	if err != nil {
		return nil, err
	}

	return &entities.DemandRecord{
		RunID:        runID,
		Scenario:     scenario,
		Place:        sub.Place(),
		BirthDate:    birthDate,
		RiskLevel:    risk,
		Delay:        delay,
		ThresholdAge: weightForAge.AgeAtThreshold,
		Date:         demand.Date,
		Dosage:       demand.Quantity.Dosage,
		NDoses:       demand.Quantity.NDoses,
		Size:         sub.Size,
		Doses:        demand.Doses(),
	}, nil
}
