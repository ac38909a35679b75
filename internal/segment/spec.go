// Package segment implements the segment assembler: the orchestration
// that turns a set of merge inputs into one on-disk columnar segment.
package segment

import (
	"time"

	"github.com/soltixdb/segmentmerge/internal/adapter"
)

// IndexSpec configures one BuildSegment call. Nil/zero fields fall back
// to schema discovered from the inputs themselves.
type IndexSpec struct {
	// Dimensions, if set, fixes the leading dimension order; any
	// dimension discovered on an input but absent here is appended after.
	Dimensions []string
	// Metrics, if set, fixes the leading metric order; any metric
	// discovered on an input but absent here is appended after.
	Metrics []string

	// Rollup selects RowCombiningTimeAndDimsIterator over MergingRowIterator.
	Rollup bool
	// AggregatorNames maps a metric name to the combining function used
	// to fold rows sharing a composite key when Rollup is true; a metric
	// with no entry, or with an unregistered name, is combined with
	// "sum". Ignored when Rollup is false.
	AggregatorNames map[string]string

	// Compress is not read by BuildSegment: container blobs are always
	// written uncompressed.
	Compress bool

	// SegmentizerFactory overrides the default mmap loader descriptor
	// written to factory.json. nil selects the default.
	SegmentizerFactory map[string]interface{}

	// Metadata, if set, is serialized to metadata.drd.
	Metadata *Metadata
}

// Metadata is optional per-segment aggregate information serialized to
// metadata.drd. Built from the combining variant of each aggregator,
// since inputs may already be partially aggregated.
type Metadata struct {
	Rollup             bool              `json:"rollup"`
	AggregatorSpecs    map[string]string `json:"aggregatorSpecs,omitempty"`
	QueryGranularity   string            `json:"queryGranularity,omitempty"`
	IngestionTimestamp time.Time         `json:"ingestionTimestamp,omitempty"`
}

// Result reports the outcome of a successful BuildSegment call.
type Result struct {
	OutDir     string
	RowCount   int64
	Dimensions []string
	Metrics    []string
	Interval   adapter.Interval
}
