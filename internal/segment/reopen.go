package segment

import (
	"github.com/soltixdb/segmentmerge/internal/adapter"
	"github.com/soltixdb/segmentmerge/internal/aggregation"
	"github.com/soltixdb/segmentmerge/internal/capability"
	"github.com/soltixdb/segmentmerge/internal/column"
	"github.com/soltixdb/segmentmerge/internal/container"
	"github.com/soltixdb/segmentmerge/internal/dimension"
	"github.com/soltixdb/segmentmerge/internal/encoding"
	mergeerrors "github.com/soltixdb/segmentmerge/internal/errors"
)

// segmentAdapter reopens a directory BuildSegment previously wrote as an
// IndexableAdapter, so a tier's output can feed the next tier's merge.
// Every column is decoded eagerly at open time; segments produced by one
// merge phase are small relative to the original inputs, so this trades
// memory for not having to carry a second, read-oriented column format.
type segmentAdapter struct {
	interval    adapter.Interval
	dimNames    []string
	metricNames []string
	caps        map[string]*capability.Capabilities
	complexType map[string]string
	dimValues   map[string][]string
	rows        []adapter.Row
}

// OpenAdapter reads back a segment directory written by BuildSegment.
func OpenAdapter(dir string) (adapter.IndexableAdapter, error) {
	r, err := container.OpenReader(dir)
	if err != nil {
		return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "open segment for reopen", err)
	}

	indexBlob, err := r.Get("index.drd")
	if err != nil {
		return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "read index.drd", err)
	}
	decoded, err := decodeIndexDrd(indexBlob)
	if err != nil {
		return nil, err
	}

	dimSet := make(map[string]bool, len(decoded.AllDimensions))
	for _, d := range decoded.AllDimensions {
		dimSet[d] = true
	}
	var metricNames []string
	for _, c := range decoded.AllColumns {
		if !dimSet[c] {
			metricNames = append(metricNames, c)
		}
	}

	sa := &segmentAdapter{
		interval:    decoded.Interval,
		dimNames:    decoded.AllDimensions,
		metricNames: metricNames,
		caps:        make(map[string]*capability.Capabilities),
		complexType: make(map[string]string),
		dimValues:   make(map[string][]string),
	}

	rowCount, err := sa.decodeTimeAndMetrics(r, metricNames)
	if err != nil {
		return nil, err
	}

	dimRows := make([][][]string, len(decoded.AllDimensions))
	for i, name := range decoded.AllDimensions {
		decodedCol, caps, err := sa.decodeDimension(r, name, rowCount)
		if err != nil {
			return nil, err
		}
		sa.caps[name] = caps
		dimRows[i] = decodedCol.RowValues
		values := make([]string, 0, decodedCol.Dictionary.NumRealValues())
		for _, v := range decodedCol.Dictionary.Values() {
			if v != "" || !decodedCol.Dictionary.HasNull() {
				values = append(values, v)
			}
		}
		sa.dimValues[name] = values
	}

	for row := 0; row < rowCount; row++ {
		dims := make([]adapter.DimensionSelector, len(decoded.AllDimensions))
		for i := range decoded.AllDimensions {
			var vals []string
			if row < len(dimRows[i]) {
				vals = dimRows[i][row]
			}
			dims[i] = staticDimensionSelector{values: vals}
		}
		sa.rows[row].Dims = dims
	}

	return sa, nil
}

func (sa *segmentAdapter) decodeTimeAndMetrics(r *container.Reader, metricNames []string) (int, error) {
	timeBlob, err := r.Get("__time")
	if err != nil {
		return 0, mergeerrors.Wrap(mergeerrors.KindContainerIO, "read __time", err)
	}
	desc, payload, err := column.DecodeDescriptorAndPayload(timeBlob)
	if err != nil {
		return 0, err
	}
	times, err := decodeNumeric(desc, payload)
	if err != nil {
		return 0, err
	}
	sa.rows = make([]adapter.Row, len(times))
	for i, v := range times {
		sa.rows[i].TimestampMillis = asInt64(v)
	}

	for _, name := range metricNames {
		blob, err := r.Get(name)
		if err != nil {
			return 0, mergeerrors.Wrap(mergeerrors.KindContainerIO, "read metric column", err)
		}
		desc, payload, err := column.DecodeDescriptorAndPayload(blob)
		if err != nil {
			return 0, err
		}
		sa.caps[name] = capsFromDescriptor(desc)
		sa.complexType[name] = desc.ComplexTypeName

		values, err := decodeMetricColumn(desc, payload)
		if err != nil {
			return 0, err
		}
		for i, v := range values {
			if i >= len(sa.rows) {
				break
			}
			sa.rows[i].Metrics = append(sa.rows[i].Metrics, staticMetricSelector{value: v})
		}
	}

	return len(times), nil
}

func (sa *segmentAdapter) decodeDimension(r *container.Reader, name string, rowCount int) (*dimension.DecodedColumn, *capability.Capabilities, error) {
	if !r.Has(name) {
		// A null-only dimension that was omitted from the container has
		// no column blob; every row is null and the dictionary is empty.
		return &dimension.DecodedColumn{Dictionary: dimension.NewDictionary(nil, true), RowValues: make([][]string, rowCount)},
			&capability.Capabilities{Type: capability.TypeString, HasNulls: capability.True}, nil
	}
	blob, err := r.Get(name)
	if err != nil {
		return nil, nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "read dimension column", err)
	}
	desc, payload, err := column.DecodeDescriptorAndPayload(blob)
	if err != nil {
		return nil, nil, err
	}
	if desc.ValueType == column.ValueTypeNull {
		return &dimension.DecodedColumn{Dictionary: dimension.NewDictionary(nil, true), RowValues: make([][]string, rowCount)},
			&capability.Capabilities{Type: capability.TypeString, HasNulls: capability.True}, nil
	}
	decodedCol, err := dimension.DecodePayload(payload, desc.HasNulls, desc.HasMultipleValues)
	if err != nil {
		return nil, nil, err
	}
	caps := &capability.Capabilities{
		Type:              capability.TypeString,
		HasMultipleValues: capability.FromBool(desc.HasMultipleValues),
		HasNulls:          capability.FromBool(desc.HasNulls),
		HasBitmapIndexes:  len(decodedCol.Bitmaps) > 0,
		Filterable:        true,
	}
	return decodedCol, caps, nil
}

func decodeNumeric(desc column.Descriptor, payload []byte) ([]interface{}, error) {
	rowCount := int(desc.RowCount)
	switch desc.ValueType {
	case column.ValueTypeLong:
		return encoding.NewDeltaEncoder().Decode(payload, rowCount)
	case column.ValueTypeFloat:
		return encoding.NewGorilla32Encoder().Decode(payload, rowCount)
	case column.ValueTypeDouble:
		return encoding.NewGorillaEncoder().Decode(payload, rowCount)
	default:
		return nil, mergeerrors.InvalidInput("unexpected numeric value type", map[string]interface{}{"valueType": desc.ValueType})
	}
}

func decodeMetricColumn(desc column.Descriptor, payload []byte) ([]interface{}, error) {
	if desc.ValueType == column.ValueTypeComplex {
		serde, ok := column.GetSerdeForType(desc.ComplexTypeName)
		if !ok {
			return nil, mergeerrors.UnknownComplexType(desc.ComplexTypeName)
		}
		return serde.Deserialize(payload, int(desc.RowCount))
	}
	return decodeNumeric(desc, payload)
}

func capsFromDescriptor(desc column.Descriptor) *capability.Capabilities {
	switch desc.ValueType {
	case column.ValueTypeLong:
		return &capability.Capabilities{Type: capability.TypeLong, HasNulls: capability.FromBool(desc.HasNulls)}
	case column.ValueTypeFloat:
		return &capability.Capabilities{Type: capability.TypeFloat, HasNulls: capability.FromBool(desc.HasNulls)}
	case column.ValueTypeComplex:
		return &capability.Capabilities{Type: capability.TypeComplex, ComplexTypeName: desc.ComplexTypeName, HasNulls: capability.FromBool(desc.HasNulls)}
	default:
		return &capability.Capabilities{Type: capability.TypeDouble, HasNulls: capability.FromBool(desc.HasNulls)}
	}
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

type staticDimensionSelector struct{ values []string }

func (s staticDimensionSelector) Values() []string { return s.values }

type staticMetricSelector struct{ value interface{} }

func (s staticMetricSelector) IsNull() bool { return s.value == nil }

func (s staticMetricSelector) Float() float64 {
	switch n := s.value.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case *aggregation.AggregatedField:
		return n.Avg
	default:
		return 0
	}
}

// Stats exposes the decoded AggregatedField directly, the same structural
// interface rowmerge.combinedMetricSelector satisfies, so a reopened
// stats column can still feed a later rollup tier without losing its
// count/sum/min/max precision to a single averaged scalar.
func (s staticMetricSelector) Stats() *aggregation.AggregatedField {
	if af, ok := s.value.(*aggregation.AggregatedField); ok {
		return af
	}
	return nil
}

func (s staticMetricSelector) Int() int64 {
	switch n := s.value.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	default:
		return 0
	}
}

func (sa *segmentAdapter) Interval() adapter.Interval { return sa.interval }
func (sa *segmentAdapter) DimensionNames() []string   { return sa.dimNames }
func (sa *segmentAdapter) MetricNames() []string      { return sa.metricNames }
func (sa *segmentAdapter) Capabilities(name string) *capability.Capabilities {
	return sa.caps[name]
}
func (sa *segmentAdapter) MetricComplexTypeName(name string) string { return sa.complexType[name] }
func (sa *segmentAdapter) DimensionValues(name string) []string     { return sa.dimValues[name] }
func (sa *segmentAdapter) NumRows() int64                           { return int64(len(sa.rows)) }
func (sa *segmentAdapter) Rows() adapter.RowIterator {
	return &segmentRowIterator{rows: sa.rows, pos: -1}
}

type segmentRowIterator struct {
	rows []adapter.Row
	pos  int
}

func (it *segmentRowIterator) Next() bool {
	it.pos++
	return it.pos < len(it.rows)
}
func (it *segmentRowIterator) Row() adapter.Row { return it.rows[it.pos] }
func (it *segmentRowIterator) RowNum() int64    { return int64(it.pos) }
func (it *segmentRowIterator) Close() error     { return nil }
