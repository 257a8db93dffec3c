package memory

import (
	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/ebirch/rsvdemand/pkg/domain/repositories"
)

// BirthRepository provides in-memory birth cohort storage
type BirthRepository struct {
	cohorts []entities.BirthCohort
}

// NewBirthRepository creates a new in-memory birth repository
func NewBirthRepository(expectedCohorts int) *BirthRepository {
	return &BirthRepository{
		cohorts: make([]entities.BirthCohort, 0, expectedCohorts),
	}
}

// Verify interface compliance
var _ repositories.BirthRepository = (*BirthRepository)(nil)

// LoadCohorts loads cohorts into the repository
func (r *BirthRepository) LoadCohorts(cohorts []*entities.BirthCohort) error {
	for _, cohort := range cohorts {
		r.AddCohort(*cohort)
	}
	return nil
}

// AddCohort adds a cohort to the repository
func (r *BirthRepository) AddCohort(cohort entities.BirthCohort) {
	r.cohorts = append(r.cohorts, cohort)
}

// GetCohorts returns all cohorts for the interval, in load order
func (r *BirthRepository) GetCohorts(interval entities.Interval) ([]*entities.BirthCohort, error) {
	var cohorts []*entities.BirthCohort
	for i := range r.cohorts {
		if r.cohorts[i].Interval == interval {
			cohorts = append(cohorts, &r.cohorts[i])
		}
	}
	return cohorts, nil
}

// GetCohortsByPlace returns the interval's cohorts for one place, in load order
func (r *BirthRepository) GetCohortsByPlace(
	place entities.PlaceID,
	interval entities.Interval,
) ([]*entities.BirthCohort, error) {
	var cohorts []*entities.BirthCohort
	for i := range r.cohorts {
		if r.cohorts[i].Interval == interval && r.cohorts[i].Place == place {
			cohorts = append(cohorts, &r.cohorts[i])
		}
	}
	return cohorts, nil
}

// GetPlaces returns the interval's distinct places in first-seen order
func (r *BirthRepository) GetPlaces(interval entities.Interval) ([]entities.PlaceID, error) {
	seen := make(map[entities.PlaceID]bool)
	var places []entities.PlaceID
	for i := range r.cohorts {
		if r.cohorts[i].Interval != interval {
			continue
		}
		if !seen[r.cohorts[i].Place] {
			seen[r.cohorts[i].Place] = true
			places = append(places, r.cohorts[i].Place)
		}
	}
	return places, nil
}
