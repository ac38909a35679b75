package encoding

import (
	"encoding/binary"
	"fmt"
)

// DeltaEncoder encodes a LONG column (the __time column, or a
// dimension-free integer metric) as a raw first value followed by
// zigzag+varint deltas between consecutive rows. Timestamps and row
// counters are monotonic or near-monotonic, so successive deltas are
// small and the varint encoding stays compact even across an unsorted
// rollup's occasional backward jump.
type DeltaEncoder struct{}

func NewDeltaEncoder() *DeltaEncoder {
	return &DeltaEncoder{}
}

func (e *DeltaEncoder) Encode(values []interface{}) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}

	ints := make([]int64, len(values))
	nullMask := make([]byte, (len(values)+7)/8)

	for i, v := range values {
		if v == nil {
			nullMask[i/8] |= 1 << (i % 8)
			continue
		}
		switch val := v.(type) {
		case int64:
			ints[i] = val
		case int:
			ints[i] = int64(val)
		case int32:
			ints[i] = int64(val)
		case float64:
			ints[i] = int64(val)
		case float32:
			ints[i] = int64(val)
		default:
			return nil, fmt.Errorf("encoding: unsupported value type for LONG column: %T", v)
		}
	}

	return e.encodeDelta(ints, nullMask), nil
}

func (e *DeltaEncoder) encodeDelta(values []int64, nullMask []byte) []byte {
	buf := make([]byte, 0, 4+len(nullMask)+8+len(values))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(values)))
	buf = append(buf, nullMask...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(values[0]))

	prev := values[0]
	for i := 1; i < len(values); i++ {
		delta := values[i] - prev
		zigzag := (delta << 1) ^ (delta >> 63)
		buf = AppendVarint(buf, uint64(zigzag))
		prev = values[i]
	}

	return buf
}

func (e *DeltaEncoder) Decode(data []byte, count int) ([]interface{}, error) {
	ints, nulls, err := e.decodeInt64(data, count)
	if err != nil {
		return nil, err
	}
	if ints == nil {
		return nil, nil
	}

	values := make([]interface{}, len(ints))
	for i, v := range ints {
		if nulls[i] {
			continue
		}
		values[i] = v
	}
	return values, nil
}

func (e *DeltaEncoder) decodeInt64(data []byte, count int) ([]int64, []bool, error) {
	if len(data) == 0 || count == 0 {
		return nil, nil, nil
	}

	offset := 0
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("encoding: LONG column too short for row count")
	}
	storedCount := binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	if int(storedCount) != count {
		return nil, nil, fmt.Errorf("encoding: LONG column row count mismatch: expected %d, got %d", count, storedCount)
	}

	nullMaskSize := (count + 7) / 8
	if offset+nullMaskSize > len(data) {
		return nil, nil, fmt.Errorf("encoding: LONG column too short for null mask")
	}
	nullMask := data[offset : offset+nullMaskSize]
	offset += nullMaskSize

	if offset+8 > len(data) {
		return nil, nil, fmt.Errorf("encoding: LONG column too short for first value")
	}
	prev := int64(binary.LittleEndian.Uint64(data[offset:]))
	offset += 8

	values := make([]int64, count)
	nulls := make([]bool, count)
	if nullMask[0]&1 != 0 {
		nulls[0] = true
	} else {
		values[0] = prev
	}

	for i := 1; i < count; i++ {
		zigzag, n := ReadVarint(data[offset:])
		if n <= 0 {
			return nil, nil, fmt.Errorf("encoding: LONG column truncated delta at row %d", i)
		}
		offset += n

		delta := int64(zigzag>>1) ^ -int64(zigzag&1)
		current := prev + delta

		if nullMask[i/8]&(1<<(i%8)) != 0 {
			nulls[i] = true
		} else {
			values[i] = current
		}
		prev = current
	}

	return values, nulls, nil
}
