// Package column implements the per-column serializer contract: open,
// serialize one value per merged row, report the serialized size, then
// flush into the container writer.
package column

import (
	"encoding/binary"
	"encoding/json"

	"github.com/soltixdb/segmentmerge/internal/config"
	"github.com/soltixdb/segmentmerge/internal/container"
	mergeerrors "github.com/soltixdb/segmentmerge/internal/errors"
)

// ValueType tags a column's on-disk kind for descriptor serialization.
type ValueType string

const (
	ValueTypeLong    ValueType = "LONG"
	ValueTypeFloat   ValueType = "FLOAT"
	ValueTypeDouble  ValueType = "DOUBLE"
	ValueTypeComplex ValueType = "COMPLEX"
	ValueTypeString  ValueType = "STRING"
	ValueTypeNull    ValueType = "NULL"
)

// Descriptor is the JSON header written before every column's payload.
// Its stable encoding matters: the bytes are embedded in the segment.
type Descriptor struct {
	ValueType         ValueType `json:"valueType"`
	ComplexTypeName   string    `json:"complexTypeName,omitempty"`
	HasMultipleValues bool      `json:"hasMultipleValues,omitempty"`
	HasNulls          bool      `json:"hasNulls,omitempty"`
	Legacy            bool      `json:"legacy,omitempty"`
	BitmapFactory     string    `json:"bitmapSerdeFactory,omitempty"`
	RowCount          int64     `json:"rowCount,omitempty"`
}

// Serializer is the contract every column kind implements: open once,
// serialize once per merged row in order, query the serialized size, then
// flush into the container under the column's name.
type Serializer interface {
	Open() error
	Serialize(value interface{}) error
	SerializedSize() (int64, error)
	WriteTo(cw *container.Writer, name string) error
}

// EncodeDescriptorAndPayload assembles the length-prefixed UTF-8
// descriptor followed by the raw payload, per the on-disk blob layout:
// a length-prefixed serialized ColumnDescriptor followed by its payload.
func EncodeDescriptorAndPayload(desc Descriptor, payload []byte) ([]byte, error) {
	descBytes, err := json.Marshal(desc)
	if err != nil {
		return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "marshal column descriptor", err)
	}

	out := make([]byte, 0, 4+len(descBytes)+len(payload))
	out = binary.BigEndian.AppendUint32(out, uint32(len(descBytes)))
	out = append(out, descBytes...)
	out = append(out, payload...)
	return out, nil
}

// DecodeDescriptorAndPayload splits a blob back into its descriptor and
// raw payload.
func DecodeDescriptorAndPayload(data []byte) (Descriptor, []byte, error) {
	var desc Descriptor
	if len(data) < 4 {
		return desc, nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "column blob too short for descriptor length", nil)
	}
	descLen := binary.BigEndian.Uint32(data[:4])
	rest := data[4:]
	if uint32(len(rest)) < descLen {
		return desc, nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "column blob too short for descriptor", nil)
	}
	if err := json.Unmarshal(rest[:descLen], &desc); err != nil {
		return desc, nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "unmarshal column descriptor", err)
	}
	return desc, rest[descLen:], nil
}

// legacyMode is a small adapter so numeric serializers depend
// only on the mode enum, not the whole config package surface.
func legacyMode(mode config.NullHandlingMode) bool {
	return mode == config.NullHandlingLegacy
}
