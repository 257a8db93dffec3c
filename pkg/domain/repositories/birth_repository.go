package repositories

import "github.com/ebirch/rsvdemand/pkg/domain/entities"

// BirthRepository provides access to birth cohort data
type BirthRepository interface {
	GetCohorts(interval entities.Interval) ([]*entities.BirthCohort, error)
	GetCohortsByPlace(place entities.PlaceID, interval entities.Interval) ([]*entities.BirthCohort, error)
	GetPlaces(interval entities.Interval) ([]entities.PlaceID, error)
	LoadCohorts(cohorts []*entities.BirthCohort) error
}
