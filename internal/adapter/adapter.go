// Package adapter defines the interface every merge input must satisfy
// and the row-cursor types the rest of the pipeline passes around.
package adapter

import (
	"time"

	"github.com/soltixdb/segmentmerge/internal/capability"
)

// Interval is a half-open millisecond time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// StartMillis returns the interval start as epoch milliseconds.
func (iv Interval) StartMillis() int64 {
	return iv.Start.UnixMilli()
}

// EndMillis returns the interval end as epoch milliseconds.
func (iv Interval) EndMillis() int64 {
	return iv.End.UnixMilli()
}

// Contains reports whether the given epoch-millisecond timestamp falls
// within [Start, End).
func (iv Interval) Contains(millis int64) bool {
	return millis >= iv.StartMillis() && millis < iv.EndMillis()
}

// DimensionSelector reads the current row's value(s) for one dimension.
// A dimension may be multi-valued, so Values returns a slice (length 1
// for single-valued dimensions, 0 for a null row).
type DimensionSelector interface {
	Values() []string
}

// MetricSelector reads the current row's value for one metric column.
// IsNull distinguishes an explicit null from a zero value.
type MetricSelector interface {
	IsNull() bool
	Float() float64
	Int() int64
}

// RowIterator walks one input's rows in non-decreasing
// (timestamp, dimensions...) order. Call Next before the first Row.
type RowIterator interface {
	Next() bool
	Row() Row
	RowNum() int64
	Close() error
}

// Row is a single input's current (timestamp, dim-selectors, metric-selectors)
// tuple, ordered per the adapter's declared dimension/metric lists.
type Row struct {
	TimestampMillis int64
	Dims            []DimensionSelector
	Metrics         []MetricSelector
}

// IndexableAdapter is the interface every merge input must satisfy: a
// sorted, row-oriented dataset together with the per-column metadata
// needed to merge its schema with other inputs.
type IndexableAdapter interface {
	Interval() Interval
	DimensionNames() []string
	MetricNames() []string
	Capabilities(columnName string) *capability.Capabilities
	MetricComplexTypeName(metricName string) string
	DimensionValues(dimensionName string) []string
	NumRows() int64
	Rows() RowIterator
}

// RowPointer is a cursor into a single input identifying the current row
// together with its origin: which input it came from and its row number
// within that input.
type RowPointer struct {
	TimestampMillis int64
	Dims            []DimensionSelector
	Metrics         []MetricSelector
	InputIndex      int
	OriginalRowNum  int64
}

// TimeAndDimsPointer is a RowPointer stripped of row identity, the shape
// produced by a merging row iterator's output.
type TimeAndDimsPointer struct {
	TimestampMillis int64
	Dims            []DimensionSelector
	Metrics         []MetricSelector
}

// StripIdentity discards a RowPointer's origin fields.
func (p RowPointer) StripIdentity() TimeAndDimsPointer {
	return TimeAndDimsPointer{
		TimestampMillis: p.TimestampMillis,
		Dims:            p.Dims,
		Metrics:         p.Metrics,
	}
}

// nilDimensionSelector is substituted for a dimension absent from a given
// input so every row carries the same number of dimension selectors as
// the unified schema.
type nilDimensionSelector struct{}

func (nilDimensionSelector) Values() []string { return nil }

// NilDimensionSelector is the shared nil selector instance for missing
// dimensions.
var NilDimensionSelector DimensionSelector = nilDimensionSelector{}

// nilMetricSelector is substituted for a metric absent from a given input.
type nilMetricSelector struct{}

func (nilMetricSelector) IsNull() bool  { return true }
func (nilMetricSelector) Float() float64 { return 0 }
func (nilMetricSelector) Int() int64     { return 0 }

// NilMetricSelector is the shared nil selector instance for missing metrics.
var NilMetricSelector MetricSelector = nilMetricSelector{}
