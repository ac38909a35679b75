package adapter

// ReorderingRowIterator wraps an input's RowIterator, projecting its rows
// into the unified schema's column order. Columns absent from the
// wrapped input resolve to the shared nil selectors.
type ReorderingRowIterator struct {
	inner       RowIterator
	dimIndex    []int // dimIndex[unifiedPos] = index into inner row's Dims, or -1
	metricIndex []int // same shape for metrics
}

// NewReorderingRowIterator builds a permutation from the input's own
// dimension/metric name lists to the unified schema's name lists, and
// wraps inner's rows accordingly.
func NewReorderingRowIterator(inner RowIterator, inputDimNames, inputMetricNames, unifiedDimNames, unifiedMetricNames []string) *ReorderingRowIterator {
	return &ReorderingRowIterator{
		inner:       inner,
		dimIndex:    buildPermutation(inputDimNames, unifiedDimNames),
		metricIndex: buildPermutation(inputMetricNames, unifiedMetricNames),
	}
}

// buildPermutation returns, for each name in unified, the index of that
// name in input, or -1 if input does not have that column.
func buildPermutation(input, unified []string) []int {
	pos := make(map[string]int, len(input))
	for i, name := range input {
		pos[name] = i
	}
	perm := make([]int, len(unified))
	for i, name := range unified {
		if idx, ok := pos[name]; ok {
			perm[i] = idx
		} else {
			perm[i] = -1
		}
	}
	return perm
}

func (r *ReorderingRowIterator) Next() bool { return r.inner.Next() }

func (r *ReorderingRowIterator) Row() Row {
	inner := r.inner.Row()

	dims := make([]DimensionSelector, len(r.dimIndex))
	for i, idx := range r.dimIndex {
		if idx < 0 {
			dims[i] = NilDimensionSelector
		} else {
			dims[i] = inner.Dims[idx]
		}
	}

	metrics := make([]MetricSelector, len(r.metricIndex))
	for i, idx := range r.metricIndex {
		if idx < 0 {
			metrics[i] = NilMetricSelector
		} else {
			metrics[i] = inner.Metrics[idx]
		}
	}

	return Row{
		TimestampMillis: inner.TimestampMillis,
		Dims:            dims,
		Metrics:         metrics,
	}
}

func (r *ReorderingRowIterator) RowNum() int64 { return r.inner.RowNum() }

func (r *ReorderingRowIterator) Close() error { return r.inner.Close() }
