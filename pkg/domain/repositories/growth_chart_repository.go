package repositories

import "github.com/ebirch/rsvdemand/pkg/domain/entities"

// GrowthChartRepository provides access to weight-for-age data
type GrowthChartRepository interface {
	GetBuckets(source string, interval entities.Interval) ([]*entities.WeightBucket, error)
	GetSources() ([]string, error)
	LoadBuckets(buckets []*entities.WeightBucket) error
}
