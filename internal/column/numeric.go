package column

import (
	"github.com/soltixdb/segmentmerge/internal/config"
	"github.com/soltixdb/segmentmerge/internal/container"
	mergeerrors "github.com/soltixdb/segmentmerge/internal/errors"
	"github.com/soltixdb/segmentmerge/internal/encoding"
)

// numericSerializer is shared by Long, Float and Double columns: buffer
// every serialized value, then hand the whole column to an
// internal/encoding.ColumnEncoder at flush time. Both modes use the same
// encoder; the legacy/V2 split only affects whether nulls are forced to
// the type's zero value before encoding.
type numericSerializer struct {
	valueType ValueType
	encoderFn func() encoding.ColumnEncoder
	mode      config.NullHandlingMode

	values []interface{}
	opened bool
	hasNulls bool
}

func newNumericSerializer(valueType ValueType, encoderFn func() encoding.ColumnEncoder, mode config.NullHandlingMode) *numericSerializer {
	return &numericSerializer{valueType: valueType, encoderFn: encoderFn, mode: mode}
}

func (s *numericSerializer) Open() error {
	s.opened = true
	s.values = nil
	s.hasNulls = false
	return nil
}

func (s *numericSerializer) Serialize(value interface{}) error {
	if !s.opened {
		return mergeerrors.InvalidInput("serialize called before open", map[string]interface{}{"valueType": s.valueType})
	}
	if value == nil {
		s.hasNulls = true
		if legacyMode(s.mode) {
			value = zeroValueFor(s.valueType)
		}
	}
	s.values = append(s.values, value)
	return nil
}

func zeroValueFor(vt ValueType) interface{} {
	switch vt {
	case ValueTypeLong:
		return int64(0)
	case ValueTypeFloat:
		return float32(0)
	case ValueTypeDouble:
		return float64(0)
	default:
		return nil
	}
}

func (s *numericSerializer) encodedPayload() ([]byte, error) {
	enc := s.encoderFn()
	data, err := enc.Encode(s.values)
	if err != nil {
		return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "encode numeric column", err)
	}
	return data, nil
}

func (s *numericSerializer) SerializedSize() (int64, error) {
	payload, err := s.encodedPayload()
	if err != nil {
		return 0, err
	}
	return int64(len(payload)), nil
}

func (s *numericSerializer) descriptor() Descriptor {
	return Descriptor{
		ValueType: s.valueType,
		HasNulls:  s.hasNulls && !legacyMode(s.mode),
		Legacy:    legacyMode(s.mode),
		RowCount:  int64(len(s.values)),
	}
}

func (s *numericSerializer) WriteTo(cw *container.Writer, name string) error {
	payload, err := s.encodedPayload()
	if err != nil {
		return err
	}
	blob, err := EncodeDescriptorAndPayload(s.descriptor(), payload)
	if err != nil {
		return err
	}
	if err := cw.Add(name, blob); err != nil {
		return mergeerrors.Wrap(mergeerrors.KindContainerIO, "write numeric column", err)
	}
	return nil
}

// NewLongSerializer builds a LONG column serializer (also used for the
// __time column), backed by delta + zigzag + varint encoding.
func NewLongSerializer(mode config.NullHandlingMode) Serializer {
	return newNumericSerializer(ValueTypeLong, func() encoding.ColumnEncoder { return encoding.NewDeltaEncoder() }, mode)
}

// NewFloatSerializer builds a FLOAT column serializer, backed by the
// 32-bit Gorilla XOR bit-packing encoder.
func NewFloatSerializer(mode config.NullHandlingMode) Serializer {
	return newNumericSerializer(ValueTypeFloat, func() encoding.ColumnEncoder { return encoding.NewGorilla32Encoder() }, mode)
}

// NewDoubleSerializer builds a DOUBLE column serializer, backed by the
// 64-bit Gorilla XOR bit-packing encoder.
func NewDoubleSerializer(mode config.NullHandlingMode) Serializer {
	return newNumericSerializer(ValueTypeDouble, func() encoding.ColumnEncoder { return encoding.NewGorillaEncoder() }, mode)
}
