package rowmerge

import (
	"github.com/soltixdb/segmentmerge/internal/adapter"
	"github.com/soltixdb/segmentmerge/internal/aggregation"
)

// combinedMetricSelector exposes a combining aggregator's running result
// as an adapter.MetricSelector, so a combined row looks like any other
// row to the column serializers downstream.
type combinedMetricSelector struct {
	agg aggregation.Aggregator
}

func (s combinedMetricSelector) IsNull() bool    { return s.agg == nil }
func (s combinedMetricSelector) Float() float64 { return s.agg.Result() }
func (s combinedMetricSelector) Int() int64     { return int64(s.agg.Result()) }

// RowCombiningTimeAndDimsIterator wraps a MergingRowIterator and folds
// consecutive rows sharing the same (time, dims) composite key into a
// single output row, combining each metric with its named aggregator.
// Used when rollup is enabled.
type RowCombiningTimeAndDimsIterator struct {
	inner           *MergingRowIterator
	aggregatorNames []string

	current adapter.TimeAndDimsPointer
	peeked  *adapter.RowPointer

	touchedOrder []int
	minRowNum    map[int]int64
	maxRowNum    map[int]int64
}

// NewRowCombiningTimeAndDimsIterator builds a rollup iterator over inner.
// aggregatorNames must have one entry per metric column, in the unified
// metric order, naming a registered combining function (see
// internal/aggregation.NewAggregator).
func NewRowCombiningTimeAndDimsIterator(inner *MergingRowIterator, aggregatorNames []string) *RowCombiningTimeAndDimsIterator {
	r := &RowCombiningTimeAndDimsIterator{inner: inner, aggregatorNames: aggregatorNames}
	r.advanceInner()
	return r
}

func (r *RowCombiningTimeAndDimsIterator) advanceInner() {
	if r.inner.Next() {
		row := r.inner.Row()
		r.peeked = &row
		return
	}
	r.peeked = nil
}

// Next advances to the next combined row, folding in every subsequent row
// that shares its composite key. Returns false once the underlying merge
// is exhausted.
func (r *RowCombiningTimeAndDimsIterator) Next() bool {
	if r.peeked == nil {
		return false
	}

	first := *r.peeked
	aggs := r.newAggregators()
	r.touchedOrder = nil
	r.minRowNum = make(map[int]int64)
	r.maxRowNum = make(map[int]int64)

	r.foldRow(first, aggs)
	r.advanceInner()

	for r.peeked != nil && sameCompositeKey(first, *r.peeked) {
		next := *r.peeked
		r.foldRow(next, aggs)
		r.advanceInner()
	}

	metrics := make([]adapter.MetricSelector, len(aggs))
	for i, agg := range aggs {
		metrics[i] = combinedMetricSelector{agg: agg}
	}
	r.current = adapter.TimeAndDimsPointer{
		TimestampMillis: first.TimestampMillis,
		Dims:            first.Dims,
		Metrics:         metrics,
	}
	return true
}

func (r *RowCombiningTimeAndDimsIterator) newAggregators() []aggregation.Aggregator {
	aggs := make([]aggregation.Aggregator, len(r.aggregatorNames))
	for i, name := range r.aggregatorNames {
		agg, ok := aggregation.NewAggregator(name)
		if !ok {
			agg, _ = aggregation.NewAggregator("sum")
		}
		aggs[i] = agg
	}
	return aggs
}

func (r *RowCombiningTimeAndDimsIterator) foldRow(row adapter.RowPointer, aggs []aggregation.Aggregator) {
	for i, sel := range row.Metrics {
		if i >= len(aggs) || sel == nil || sel.IsNull() {
			continue
		}
		aggs[i].Add(sel.Float())
	}

	if _, seen := r.minRowNum[row.InputIndex]; !seen {
		r.touchedOrder = append(r.touchedOrder, row.InputIndex)
		r.minRowNum[row.InputIndex] = row.OriginalRowNum
		r.maxRowNum[row.InputIndex] = row.OriginalRowNum
		return
	}
	if row.OriginalRowNum < r.minRowNum[row.InputIndex] {
		r.minRowNum[row.InputIndex] = row.OriginalRowNum
	}
	if row.OriginalRowNum > r.maxRowNum[row.InputIndex] {
		r.maxRowNum[row.InputIndex] = row.OriginalRowNum
	}
}

// Row returns the combined row produced by the most recent Next call.
func (r *RowCombiningTimeAndDimsIterator) Row() adapter.TimeAndDimsPointer {
	return r.current
}

// NextCurrentlyCombinedOriginalIteratorIndex returns the kth input index
// (in first-touched order) that contributed to the current combined row,
// and false once k runs past the number of distinct contributing inputs.
func (r *RowCombiningTimeAndDimsIterator) NextCurrentlyCombinedOriginalIteratorIndex(k int) (int, bool) {
	if k < 0 || k >= len(r.touchedOrder) {
		return 0, false
	}
	return r.touchedOrder[k], true
}

// GetMinCurrentlyCombinedRowNumByOriginalIteratorIndex returns the lowest
// original row number from input i folded into the current combined row.
func (r *RowCombiningTimeAndDimsIterator) GetMinCurrentlyCombinedRowNumByOriginalIteratorIndex(i int) (int64, bool) {
	v, ok := r.minRowNum[i]
	return v, ok
}

// GetMaxCurrentlyCombinedRowNumByOriginalIteratorIndex returns the highest
// original row number from input i folded into the current combined row.
func (r *RowCombiningTimeAndDimsIterator) GetMaxCurrentlyCombinedRowNumByOriginalIteratorIndex(i int) (int64, bool) {
	v, ok := r.maxRowNum[i]
	return v, ok
}

// Close closes the underlying merge iterator.
func (r *RowCombiningTimeAndDimsIterator) Close() error {
	return r.inner.Close()
}
