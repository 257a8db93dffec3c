package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// normalizePrecision is the number of decimal places each normalized
// proportion is rounded to before the last bucket absorbs the remainder
const normalizePrecision = 9

// LoadGrowthChart loads weight-for-age buckets from a CSV file. Each chart's
// proportions are normalized to sum to exactly one.
func (l *Loader) LoadGrowthChart(filename string) ([]*entities.WeightBucket, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read weights CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("weights CSV must have header and at least one data row")
	}

	// Validate header
	expectedHeader := []string{"source", "interval", "age", "p_threshold"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("weights CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	type chartKey struct {
		source   string
		interval entities.Interval
	}
	charts := make(map[chartKey][]*entities.WeightBucket)
	ages := make(map[chartKey]map[int]bool)
	var order []chartKey

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("weights CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		bucket, err := parseWeightBucket(record)
		if err != nil {
			return nil, fmt.Errorf("weights CSV row %d: %w", i+2, err)
		}

		key := chartKey{source: bucket.Source, interval: bucket.Interval}
		if _, exists := charts[key]; !exists {
			ages[key] = make(map[int]bool)
			order = append(order, key)
		}
		if ages[key][bucket.Age] {
			return nil, fmt.Errorf("weights CSV row %d: duplicate age %d for growth chart %s/%s",
				i+2, bucket.Age, bucket.Source, string(bucket.Interval))
		}
		ages[key][bucket.Age] = true
		charts[key] = append(charts[key], bucket)
	}

	var buckets []*entities.WeightBucket
	for _, key := range order {
		normalized, err := Normalize(charts[key])
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, normalized...)
	}

	return buckets, nil
}

// Normalize scales one chart's proportions so they sum to exactly one. Each
// scaled proportion is rounded to a fixed precision and the oldest bucket
// absorbs the rounding remainder. This is the only place input data is
// silently corrected.
func Normalize(buckets []*entities.WeightBucket) ([]*entities.WeightBucket, error) {
	if len(buckets) == 0 {
		return nil, fmt.Errorf("cannot normalize an empty growth chart")
	}

	sum := decimal.Zero
	for _, bucket := range buckets {
		sum = sum.Add(bucket.Proportion)
	}
	if sum.IsZero() {
		return nil, fmt.Errorf("growth chart %s/%s proportions sum to zero",
			buckets[0].Source, string(buckets[0].Interval))
	}

	sorted := make([]*entities.WeightBucket, len(buckets))
	copy(sorted, buckets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Age < sorted[j].Age })

	one := decimal.NewFromInt(1)
	scaled := decimal.Zero
	normalized := make([]*entities.WeightBucket, 0, len(sorted))
	for i, bucket := range sorted {
		proportion := bucket.Proportion.Div(sum).Round(normalizePrecision)
		if i == len(sorted)-1 {
			proportion = one.Sub(scaled)
			if proportion.IsNegative() {
				return nil, fmt.Errorf("normalizing growth chart %s/%s drove the last bucket negative",
					bucket.Source, string(bucket.Interval))
			}
		}
		scaled = scaled.Add(proportion)

		replaced, err := entities.NewWeightBucket(bucket.Source, bucket.Interval, bucket.Age, proportion)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, replaced)
	}

	if !scaled.Equal(one) {
		return nil, fmt.Errorf("growth chart %s/%s normalization failed: proportions sum to %s",
			sorted[0].Source, string(sorted[0].Interval), scaled)
	}

	return normalized, nil
}

func parseWeightBucket(record []string) (*entities.WeightBucket, error) {
	source := strings.TrimSpace(record[0])

	interval, err := parseInterval(record[1])
	if err != nil {
		return nil, err
	}

	age, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid age: %s", record[2])
	}

	proportion, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return nil, fmt.Errorf("invalid p_threshold: %s", record[3])
	}

	return entities.NewWeightBucket(source, interval, age, proportion)
}
