package dimension

import (
	"encoding/binary"

	"github.com/soltixdb/segmentmerge/internal/adapter"
	"github.com/soltixdb/segmentmerge/internal/bitmap"
	"github.com/soltixdb/segmentmerge/internal/capability"
	"github.com/soltixdb/segmentmerge/internal/column"
	"github.com/soltixdb/segmentmerge/internal/container"
	mergeerrors "github.com/soltixdb/segmentmerge/internal/errors"
	"github.com/soltixdb/segmentmerge/internal/encoding"
)

// Merger runs the three-phase per-dimension merge protocol: build the
// value dictionary once, up front; encode one row's dictionary IDs per
// call during the row walk; build the inverted bitmap index once the
// walk is done.
//
// Phase ordering avoids a lifetime cycle between the merger and the row
// iterator: the merger never reaches back into the iterator's state, it
// only consumes what processMergedRow hands it, row by row.
type Merger struct {
	name         string
	capabilities *capability.Capabilities
	multiValue   bool
	buildBitmaps bool

	dict *Dictionary
	ids  [][]int32 // one entry per output row; empty/nil slice means null
}

// NewMerger constructs a dimension merger. capabilities must already be
// the fully merged (post capability.Merge) value for this column.
func NewMerger(name string, capabilities *capability.Capabilities) *Merger {
	return &Merger{
		name:         name,
		capabilities: capabilities,
		multiValue:   capabilities.HasMultipleValues == capability.True,
		buildBitmaps: capabilities.HasBitmapIndexes,
	}
}

// WriteMergedValueDictionary is phase 1: union every input's per-dimension
// value list, sort it, and reserve a null slot if any input declared
// nulls for this dimension. Must run before any row is processed.
func (m *Merger) WriteMergedValueDictionary(inputs []adapter.IndexableAdapter) error {
	seen := make(map[string]struct{})
	for _, in := range inputs {
		for _, v := range in.DimensionValues(m.name) {
			seen[v] = struct{}{}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}

	m.dict = NewDictionary(values, m.capabilities.HasNulls == capability.True)
	return nil
}

// ProcessMergedRow is phase 2: called once per output row in key order.
// It resolves the current selector's value(s) to dictionary IDs and
// appends them to the output value stream.
func (m *Merger) ProcessMergedRow(selector adapter.DimensionSelector) error {
	if m.dict == nil {
		return mergeerrors.InvalidInput("processMergedRow called before writeMergedValueDictionary", map[string]interface{}{"dimension": m.name})
	}

	values := selector.Values()
	if len(values) == 0 {
		if id, ok := m.dict.NullID(); ok {
			m.ids = append(m.ids, []int32{int32(id)})
		} else {
			m.ids = append(m.ids, nil)
		}
		return nil
	}

	ids := make([]int32, len(values))
	for i, v := range values {
		id, ok := m.dict.IDFor(v)
		if !ok {
			return mergeerrors.InvalidInput("dimension value not present in merged dictionary", map[string]interface{}{
				"dimension": m.name,
				"value":     v,
			})
		}
		ids[i] = int32(id)
	}
	m.ids = append(m.ids, ids)
	return nil
}

// WriteIndexes is phase 3: build one bitmap per dictionary value from the
// per-row dictionary IDs recorded during phase 2. rowNumConversions is
// accepted for interface symmetry with the row-number-conversion
// contract; it is not needed here because phase 2 already records each
// output row's dictionary IDs directly, which is equivalent to mapping
// per-input bitmaps through the conversion buffers and skips a second
// per-input pass.
func (m *Merger) WriteIndexes(rowNumConversions [][]int64) ([]*bitmap.Bitmap, error) {
	if !m.buildBitmaps {
		return nil, nil
	}

	bitmaps := make([]*bitmap.Bitmap, m.dict.Len())
	for i := range bitmaps {
		bitmaps[i] = bitmap.New()
	}

	for row, ids := range m.ids {
		for _, id := range ids {
			bitmaps[id].Add(uint32(row))
		}
	}

	return bitmaps, nil
}

// HasOnlyNulls reports whether the merged dictionary carries no real
// values: every input's per-dimension value list was empty, so every
// output row is necessarily null for this dimension.
func (m *Merger) HasOnlyNulls() bool {
	return m.dict.NumRealValues() == 0
}

// encodeValueStream serializes the per-row dictionary ID stream: a
// row count, then per row either a varint ID followed by a one-byte null
// tag (single-valued: tag 0 for a value, or ID 0 with tag 1 for a row
// that has no ID), or a varint count followed by that many varint IDs
// (multi-valued).
func (m *Merger) encodeValueStream() []byte {
	buf := make([]byte, 0, len(m.ids)*2+4)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(m.ids)))

	for _, ids := range m.ids {
		if m.multiValue {
			buf = encoding.AppendVarint(buf, uint64(len(ids)))
			for _, id := range ids {
				buf = encoding.AppendVarint(buf, uint64(id))
			}
			continue
		}
		if len(ids) == 0 {
			buf = encoding.AppendVarint(buf, uint64(0))
			buf = append(buf, 1) // null tag
			continue
		}
		buf = encoding.AppendVarint(buf, uint64(ids[0]))
		buf = append(buf, 0) // non-null tag
	}

	return buf
}

// MakeColumnDescriptor returns the column's descriptor once phases 1
// and 2 are complete: value type, multi-value and null flags, bitmap
// factory and row count. The length-prefixed dictionary, value stream
// and bitmap sections that follow it are written by WriteTo.
func (m *Merger) MakeColumnDescriptor() column.Descriptor {
	return column.Descriptor{
		ValueType:         column.ValueTypeString,
		HasMultipleValues: m.multiValue,
		HasNulls:          m.dict.HasNull(),
		BitmapFactory:     bitmap.FactoryID,
		RowCount:          int64(len(m.ids)),
	}
}

// WriteTo flushes the dictionary, value stream, and (if applicable)
// bitmap index to the container under name.
func (m *Merger) WriteTo(cw *container.Writer, name string) error {
	bitmaps, err := m.buildBitmapsIfNeeded()
	if err != nil {
		return err
	}

	payload := make([]byte, 0)

	dictBytes := container.NewGenericIndexed(m.dict.Values()).Serialize()
	payload = appendLengthPrefixed(payload, dictBytes)

	valueStream := m.encodeValueStream()
	payload = appendLengthPrefixed(payload, valueStream)

	if bitmaps != nil {
		bitmapSection, err := encodeBitmapSection(bitmaps)
		if err != nil {
			return err
		}
		payload = appendLengthPrefixed(payload, bitmapSection)
	} else {
		payload = appendLengthPrefixed(payload, nil)
	}

	blob, err := column.EncodeDescriptorAndPayload(m.MakeColumnDescriptor(), payload)
	if err != nil {
		return err
	}
	if err := cw.Add(name, blob); err != nil {
		return mergeerrors.Wrap(mergeerrors.KindContainerIO, "write dimension column", err)
	}
	return nil
}

func (m *Merger) buildBitmapsIfNeeded() ([]*bitmap.Bitmap, error) {
	return m.WriteIndexes(nil)
}

func appendLengthPrefixed(buf, section []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(section)))
	return append(buf, section...)
}

func encodeBitmapSection(bitmaps []*bitmap.Bitmap) ([]byte, error) {
	buf := make([]byte, 0)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(bitmaps)))
	for _, b := range bitmaps {
		data, err := b.Serialize()
		if err != nil {
			return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "serialize bitmap index", err)
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(data)))
		buf = append(buf, data...)
	}
	return buf, nil
}
