package aggregation

import "math"

// AggregatedField tracks running statistics (count, sum, min, max, and the
// sum of squares needed for variance) for one metric column during
// rollup. It underlies the "stats" combining aggregator: a single pass
// over the merged rows builds one AggregatedField per output row, and
// AggregatedField.Merge folds two partially-combined fields together when
// rollup input adapters were themselves already rolled up.
type AggregatedField struct {
	Count      int64
	Sum        float64
	Avg        float64
	Min        float64
	Max        float64
	SumSquares float64
}

// NewAggregatedField creates a new aggregated field seeded with a single
// value.
func NewAggregatedField(value float64) *AggregatedField {
	return &AggregatedField{
		Count:      1,
		Sum:        value,
		Avg:        value,
		Min:        value,
		Max:        value,
		SumSquares: value * value,
	}
}

// Merge combines another aggregated field into this one. Associative and
// commutative: merging a then b then c gives the same result as merging
// them in any other order.
func (af *AggregatedField) Merge(other *AggregatedField) {
	if other.Count == 0 {
		return
	}
	if af.Count == 0 {
		*af = *other
		return
	}

	af.Count += other.Count
	af.Sum += other.Sum
	af.SumSquares += other.SumSquares

	if other.Min < af.Min {
		af.Min = other.Min
	}
	if other.Max > af.Max {
		af.Max = other.Max
	}

	af.Avg = af.Sum / float64(af.Count)
}

// AddValue folds a single raw value into the aggregation.
func (af *AggregatedField) AddValue(value float64) {
	af.Count++
	af.Sum += value
	af.SumSquares += value * value

	if af.Count == 1 || value < af.Min {
		af.Min = value
	}
	if af.Count == 1 || value > af.Max {
		af.Max = value
	}

	af.Avg = af.Sum / float64(af.Count)
}

// Variance calculates the variance of the aggregated values.
func (af *AggregatedField) Variance() float64 {
	if af.Count <= 1 {
		return 0
	}
	return (af.SumSquares / float64(af.Count)) - (af.Avg * af.Avg)
}

// StdDev calculates the standard deviation.
func (af *AggregatedField) StdDev() float64 {
	return math.Sqrt(af.Variance())
}

// statsAggregator adapts AggregatedField to the Aggregator interface so
// it can be registered as a combining function; Result reports the sum,
// with the full AggregatedField available via Stats for complex-metric
// serdes that need more than one number out.
type statsAggregator struct {
	field *AggregatedField
}

func (s *statsAggregator) Add(value float64) {
	if s.field == nil {
		s.field = NewAggregatedField(value)
		return
	}
	s.field.AddValue(value)
}

func (s *statsAggregator) Combine(other Aggregator) {
	o, ok := other.(*statsAggregator)
	if !ok || o.field == nil {
		return
	}
	if s.field == nil {
		field := *o.field
		s.field = &field
		return
	}
	s.field.Merge(o.field)
}

func (s *statsAggregator) Result() float64 {
	if s.field == nil {
		return 0
	}
	return s.field.Sum
}

func (s *statsAggregator) Reset() {
	s.field = nil
}

// Stats returns the underlying AggregatedField, or nil if nothing has
// been added yet.
func (s *statsAggregator) Stats() *AggregatedField {
	return s.field
}

func init() {
	RegisterAggregator("stats", func() Aggregator { return &statsAggregator{} })
}
