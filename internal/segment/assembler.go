package segment

import (
	"encoding/binary"
	"encoding/json"

	"github.com/soltixdb/segmentmerge/internal/adapter"
	"github.com/soltixdb/segmentmerge/internal/aggregation"
	"github.com/soltixdb/segmentmerge/internal/capability"
	"github.com/soltixdb/segmentmerge/internal/column"
	"github.com/soltixdb/segmentmerge/internal/config"
	"github.com/soltixdb/segmentmerge/internal/container"
	"github.com/soltixdb/segmentmerge/internal/dimension"
	mergeerrors "github.com/soltixdb/segmentmerge/internal/errors"
	"github.com/soltixdb/segmentmerge/internal/logging"
	"github.com/soltixdb/segmentmerge/internal/progress"
	"github.com/soltixdb/segmentmerge/internal/rowmerge"
	"github.com/soltixdb/segmentmerge/internal/utils"
)

// BuildSegment runs the canonical single-segment build sequence: validate
// and unify the input schemas, build the dimension value dictionaries,
// walk the merged row stream writing every column, then close out the
// index and metadata descriptors. outDir must already exist and be
// empty; BuildSegment does not create or clean it.
func BuildSegment(inputs []adapter.IndexableAdapter, spec IndexSpec, cfg *config.MergeConfig, outDir string, indicator progress.Indicator) (*Result, error) {
	if indicator == nil {
		indicator = progress.NoopIndicator{}
	}
	if len(inputs) == 0 {
		return nil, mergeerrors.InvalidInput("BuildSegment requires at least one input", nil)
	}

	indicator.Start("building segment")
	defer indicator.Stop()

	// Step 1: unify schema and capabilities.
	indicator.StartSection("unify schema")
	dimNames := unifyNames(spec.Dimensions, collectNames(inputs, adapter.IndexableAdapter.DimensionNames))
	metricNames := unifyNames(spec.Metrics, collectNames(inputs, adapter.IndexableAdapter.MetricNames))

	dimResolved := make(map[string]*capability.Resolved, len(dimNames))
	for _, name := range dimNames {
		resolved, err := resolveCapabilities(name, inputs, capability.DimensionCoercion)
		if err != nil {
			return nil, err
		}
		dimResolved[name] = resolved
	}
	metricResolved := make(map[string]*capability.Resolved, len(metricNames))
	for _, name := range metricNames {
		resolved, err := resolveCapabilities(name, inputs, capability.MetricCoercion)
		if err != nil {
			return nil, err
		}
		metricResolved[name] = resolved
	}
	interval := unifyInterval(inputs)
	indicator.StopSection("unify schema")

	// Step 2: scoped write-out medium. cw.Close is the single commit
	// point; cw.Abort on any earlier error leaves no committed output.
	cw, err := container.NewWriter(outDir, cfg.MaxPhysicalFileSize)
	if err != nil {
		return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "open container writer", err)
	}
	committed := false
	defer func() {
		if !committed {
			cw.Abort()
		}
	}()

	// Step 3: version.bin and factory.json.
	if err := writeVersionFile(cw); err != nil {
		return nil, err
	}
	if err := writeFactoryJSON(cw, spec.SegmentizerFactory); err != nil {
		return nil, err
	}

	// Step 4: one dimension merger per dimension, phase 1.
	indicator.StartSection("dimension dictionaries")
	mergers := make(map[string]*dimension.Merger, len(dimNames))
	for _, name := range dimNames {
		m := dimension.NewMerger(name, capsFromResolved(dimResolved[name]))
		if err := m.WriteMergedValueDictionary(inputs); err != nil {
			return nil, err
		}
		mergers[name] = m
	}
	indicator.StopSection("dimension dictionaries")

	mode := cfg.NullHandlingMode()

	timeWriter := column.NewLongSerializer(mode)
	if err := timeWriter.Open(); err != nil {
		return nil, err
	}

	metricWriters := make([]column.Serializer, len(metricNames))
	metricResolvedByPos := make([]*capability.Resolved, len(metricNames))
	for i, name := range metricNames {
		metricResolvedByPos[i] = metricResolved[name]
		w := metricSerializerFor(metricResolved[name], mode)
		if err := w.Open(); err != nil {
			return nil, err
		}
		metricWriters[i] = w
	}

	// Step 5: build the row merge iterator over inputs reordered into
	// the unified column order.
	iters := make([]adapter.RowIterator, len(inputs))
	for i, in := range inputs {
		iters[i] = adapter.NewReorderingRowIterator(in.Rows(), in.DimensionNames(), in.MetricNames(), dimNames, metricNames)
	}
	merged := rowmerge.NewMergingRowIterator(iters)

	needsConversions := anyHasBitmapIndexes(dimResolved)
	conversions := make([][]int64, len(inputs))

	var rowCount int64

	indicator.StartSection("row walk")
	if spec.Rollup {
		aggregatorNames := make([]string, len(metricNames))
		for i, name := range metricNames {
			aggregatorNames[i] = spec.AggregatorNames[name]
			if aggregatorNames[i] == "" {
				aggregatorNames[i] = "sum"
			}
		}
		combined := rowmerge.NewRowCombiningTimeAndDimsIterator(merged, aggregatorNames)
		for combined.Next() {
			row := combined.Row()
			if err := writeRowColumns(timeWriter, metricWriters, metricResolvedByPos, dimNames, mergers, row.TimestampMillis, row.Dims, row.Metrics); err != nil {
				return nil, err
			}
			if needsConversions {
				for k := 0; ; k++ {
					idx, ok := combined.NextCurrentlyCombinedOriginalIteratorIndex(k)
					if !ok {
						break
					}
					min, _ := combined.GetMinCurrentlyCombinedRowNumByOriginalIteratorIndex(idx)
					max, _ := combined.GetMaxCurrentlyCombinedRowNumByOriginalIteratorIndex(idx)
					for orig := min; orig <= max; orig++ {
						conversions[idx] = padAndSetConversion(conversions[idx], orig, rowCount)
					}
				}
			}
			rowCount++
		}
	} else {
		for merged.Next() {
			row := merged.Row()
			if err := writeRowColumns(timeWriter, metricWriters, metricResolvedByPos, dimNames, mergers, row.TimestampMillis, row.Dims, row.Metrics); err != nil {
				return nil, err
			}
			if needsConversions {
				conversions[row.InputIndex] = padAndSetConversion(conversions[row.InputIndex], row.OriginalRowNum, rowCount)
			}
			rowCount++
		}
	}
	indicator.StopSection("row walk")

	if err := merged.Close(); err != nil {
		return nil, err
	}

	// Step 7: flush time column and each metric.
	indicator.StartSection("flush columns")
	if err := timeWriter.WriteTo(cw, "__time"); err != nil {
		return nil, err
	}
	for i, name := range metricNames {
		if err := metricWriters[i].WriteTo(cw, name); err != nil {
			return nil, err
		}
	}

	// Step 8: per-dimension bitmap indexes, then store/placeholder/omit.
	nullOnly := make(map[string]bool, len(dimNames))
	for _, name := range dimNames {
		m := mergers[name]
		if _, err := m.WriteIndexes(conversions); err != nil {
			return nil, err
		}
		if !m.HasOnlyNulls() {
			if err := m.WriteTo(cw, name); err != nil {
				return nil, err
			}
			continue
		}
		nullOnly[name] = true
		if shouldStoreNullOnlyDimension(cfg, spec) {
			if err := writeNullPlaceholderColumn(cw, name, rowCount); err != nil {
				return nil, err
			}
		}
	}
	indicator.StopSection("flush columns")

	// Step 9: index.drd.
	allColumns := append(append([]string{}, metricNames...), dimNames...)
	indexBlob := buildIndexDrd(allColumns, dimNames, nullOnly, interval, cfg.BitmapFactory)
	if err := cw.Add(utils.IndexFileName, indexBlob); err != nil {
		return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "write index.drd", err)
	}

	// Step 10: metadata.drd, if requested.
	if err := writeMetadataDrd(cw, spec.Metadata); err != nil {
		return nil, err
	}

	// Step 11: close the container — the single commit point.
	if err := cw.Close(); err != nil {
		return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "close container", err)
	}
	committed = true

	logging.Info("segment built",
		"dir", outDir,
		"rows", rowCount,
		"dimensions", len(dimNames),
		"metrics", len(metricNames),
	)

	return &Result{
		OutDir:     outDir,
		RowCount:   rowCount,
		Dimensions: dimNames,
		Metrics:    metricNames,
		Interval:   interval,
	}, nil
}

func writeRowColumns(
	timeWriter column.Serializer,
	metricWriters []column.Serializer,
	metricResolvedByPos []*capability.Resolved,
	dimNames []string,
	mergers map[string]*dimension.Merger,
	timestampMillis int64,
	dims []adapter.DimensionSelector,
	metrics []adapter.MetricSelector,
) error {
	if err := timeWriter.Serialize(timestampMillis); err != nil {
		return err
	}
	for i, sel := range metrics {
		if i >= len(metricWriters) {
			break
		}
		if err := metricWriters[i].Serialize(metricValue(metricResolvedByPos[i], sel)); err != nil {
			return err
		}
	}
	for i, name := range dimNames {
		if i >= len(dims) {
			continue
		}
		if err := mergers[name].ProcessMergedRow(dims[i]); err != nil {
			return err
		}
	}
	return nil
}

// unifyNames preserves declared's order, then appends every discovered
// name not already present, in discovery order.
func unifyNames(declared []string, discovered [][]string) []string {
	seen := make(map[string]bool, len(declared))
	out := make([]string, 0, len(declared))
	for _, n := range declared {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, names := range discovered {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

func collectNames(inputs []adapter.IndexableAdapter, get func(adapter.IndexableAdapter) []string) [][]string {
	out := make([][]string, len(inputs))
	for i, in := range inputs {
		out[i] = get(in)
	}
	return out
}

func resolveCapabilities(name string, inputs []adapter.IndexableAdapter, policy capability.CoercionPolicy) (*capability.Resolved, error) {
	all := make([]*capability.Capabilities, len(inputs))
	for i, in := range inputs {
		all[i] = in.Capabilities(name)
	}
	merged, err := capability.MergeAll(name, all)
	if err != nil {
		return nil, err
	}
	if merged == nil {
		return nil, mergeerrors.InvalidInput("no input declares capabilities for column", map[string]interface{}{"column": name})
	}
	return merged.Snapshot(policy), nil
}

func capsFromResolved(r *capability.Resolved) *capability.Capabilities {
	return &capability.Capabilities{
		Type:                   r.Type,
		ElementType:            r.ElementType,
		ComplexTypeName:        r.ComplexTypeName,
		DictionaryEncoded:      capability.FromBool(r.DictionaryEncoded),
		DictionaryValuesSorted: capability.FromBool(r.DictionaryValuesSorted),
		DictionaryValuesUnique: capability.FromBool(r.DictionaryValuesUnique),
		HasMultipleValues:      capability.FromBool(r.HasMultipleValues),
		HasNulls:               capability.FromBool(r.HasNulls),
		HasBitmapIndexes:       r.HasBitmapIndexes,
		HasSpatialIndexes:      r.HasSpatialIndexes,
		Filterable:             r.Filterable,
	}
}

func unifyInterval(inputs []adapter.IndexableAdapter) adapter.Interval {
	iv := inputs[0].Interval()
	for _, in := range inputs[1:] {
		other := in.Interval()
		if other.Start.Before(iv.Start) {
			iv.Start = other.Start
		}
		if other.End.After(iv.End) {
			iv.End = other.End
		}
	}
	return iv
}

func anyHasBitmapIndexes(resolved map[string]*capability.Resolved) bool {
	for _, r := range resolved {
		if r.HasBitmapIndexes {
			return true
		}
	}
	return false
}

// padAndSetConversion pads buf with utils.InvalidRow up to origRow, then
// records outputRow at that position. A rollup group may touch the same
// origRow region more than once across calls; later writes simply
// overwrite, which is correct since the region always converges on the
// same combined output row.
func padAndSetConversion(buf []int64, origRow, outputRow int64) []int64 {
	for int64(len(buf)) < origRow {
		buf = append(buf, utils.InvalidRow)
	}
	if int64(len(buf)) == origRow {
		return append(buf, outputRow)
	}
	buf[origRow] = outputRow
	return buf
}

func metricSerializerFor(resolved *capability.Resolved, mode config.NullHandlingMode) column.Serializer {
	switch resolved.Type {
	case capability.TypeLong:
		return column.NewLongSerializer(mode)
	case capability.TypeFloat:
		return column.NewFloatSerializer(mode)
	case capability.TypeComplex:
		return column.NewComplexSerializer(resolved.ComplexTypeName)
	default:
		return column.NewDoubleSerializer(mode)
	}
}

func metricValue(resolved *capability.Resolved, sel adapter.MetricSelector) interface{} {
	if sel == nil || sel.IsNull() {
		return nil
	}
	switch resolved.Type {
	case capability.TypeLong:
		return sel.Int()
	case capability.TypeFloat:
		return float32(sel.Float())
	case capability.TypeComplex:
		if sp, ok := sel.(interface {
			Stats() *aggregation.AggregatedField
		}); ok {
			if stats := sp.Stats(); stats != nil {
				return stats
			}
		}
		return aggregation.NewAggregatedField(sel.Float())
	default:
		return sel.Float()
	}
}

func shouldStoreNullOnlyDimension(cfg *config.MergeConfig, spec IndexSpec) bool {
	if !cfg.StoreEmptyColumns {
		return false
	}
	if spec.Dimensions == nil && !cfg.IncludeAllDimensions {
		return false
	}
	return true
}

func writeNullPlaceholderColumn(cw *container.Writer, name string, rowCount int64) error {
	blob, err := column.EncodeDescriptorAndPayload(column.Descriptor{
		ValueType: column.ValueTypeNull,
		HasNulls:  true,
		RowCount:  rowCount,
	}, nil)
	if err != nil {
		return err
	}
	if err := cw.Add(name, blob); err != nil {
		return mergeerrors.Wrap(mergeerrors.KindContainerIO, "write null placeholder column", err)
	}
	return nil
}

func writeVersionFile(cw *container.Writer) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(utils.SegmentVersion))
	if err := cw.Add(utils.VersionFileName, buf); err != nil {
		return mergeerrors.Wrap(mergeerrors.KindContainerIO, "write version.bin", err)
	}
	return nil
}

type segmentizerDescriptor struct {
	Type string `json:"type"`
}

func writeFactoryJSON(cw *container.Writer, custom map[string]interface{}) error {
	var data []byte
	var err error
	if custom != nil {
		data, err = json.Marshal(custom)
	} else {
		data, err = json.Marshal(segmentizerDescriptor{Type: "mmap"})
	}
	if err != nil {
		return mergeerrors.Wrap(mergeerrors.KindContainerIO, "marshal factory.json", err)
	}
	if err := cw.Add(utils.FactoryFileName, data); err != nil {
		return mergeerrors.Wrap(mergeerrors.KindContainerIO, "write factory.json", err)
	}
	return nil
}

func writeMetadataDrd(cw *container.Writer, md *Metadata) error {
	if md == nil {
		return nil
	}
	data, err := json.Marshal(md)
	if err != nil {
		return mergeerrors.Wrap(mergeerrors.KindContainerIO, "marshal metadata.drd", err)
	}
	if err := cw.Add(utils.MetadataFileName, data); err != nil {
		return mergeerrors.Wrap(mergeerrors.KindContainerIO, "write metadata.drd", err)
	}
	return nil
}
