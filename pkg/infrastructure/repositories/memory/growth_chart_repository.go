package memory

import (
	"fmt"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/ebirch/rsvdemand/pkg/domain/repositories"
)

// GrowthChartRepository provides in-memory weight-for-age storage
type GrowthChartRepository struct {
	buckets []entities.WeightBucket
}

// NewGrowthChartRepository creates a new in-memory growth chart repository
func NewGrowthChartRepository(expectedBuckets int) *GrowthChartRepository {
	return &GrowthChartRepository{
		buckets: make([]entities.WeightBucket, 0, expectedBuckets),
	}
}

// Verify interface compliance
var _ repositories.GrowthChartRepository = (*GrowthChartRepository)(nil)

// LoadBuckets loads weight buckets into the repository
func (r *GrowthChartRepository) LoadBuckets(buckets []*entities.WeightBucket) error {
	for _, bucket := range buckets {
		r.AddBucket(*bucket)
	}
	return nil
}

// AddBucket adds a weight bucket to the repository
func (r *GrowthChartRepository) AddBucket(bucket entities.WeightBucket) {
	r.buckets = append(r.buckets, bucket)
}

// GetBuckets returns one source's buckets for the interval, in load order
func (r *GrowthChartRepository) GetBuckets(
	source string,
	interval entities.Interval,
) ([]*entities.WeightBucket, error) {
	var buckets []*entities.WeightBucket
	for i := range r.buckets {
		if r.buckets[i].Source == source && r.buckets[i].Interval == interval {
			buckets = append(buckets, &r.buckets[i])
		}
	}
	if len(buckets) == 0 {
		return nil, fmt.Errorf("growth chart not found: %s/%s", source, interval)
	}
	return buckets, nil
}

// GetSources returns the distinct growth chart sources in first-seen order
func (r *GrowthChartRepository) GetSources() ([]string, error) {
	seen := make(map[string]bool)
	var sources []string
	for i := range r.buckets {
		if !seen[r.buckets[i].Source] {
			seen[r.buckets[i].Source] = true
			sources = append(sources, r.buckets[i].Source)
		}
	}
	return sources, nil
}
