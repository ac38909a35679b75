package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

// Gorilla32Encoder is the 32-bit sibling of GorillaEncoder: the same XOR
// bit-packing scheme over math.Float32bits instead of Float64bits, for
// columns declared FLOAT rather than DOUBLE. Leading/trailing zero counts
// fit in 5 bits instead of 6 since a uint32 has at most 32 of each.
type Gorilla32Encoder struct{}

const gorilla32Magic = 0x02

func NewGorilla32Encoder() *Gorilla32Encoder {
	return &Gorilla32Encoder{}
}

func (e *Gorilla32Encoder) Encode(values []interface{}) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}

	floats := make([]float32, len(values))
	nullMask := make([]byte, (len(values)+7)/8)

	for i, v := range values {
		if v == nil {
			nullMask[i/8] |= 1 << (i % 8)
			continue
		}
		switch val := v.(type) {
		case float32:
			floats[i] = val
		case float64:
			floats[i] = float32(val)
		case int:
			floats[i] = float32(val)
		case int64:
			floats[i] = float32(val)
		case int32:
			floats[i] = float32(val)
		default:
			return nil, fmt.Errorf("encoding: unsupported value type for FLOAT column: %T", v)
		}
	}

	return e.encode(floats, nullMask)
}

func (e *Gorilla32Encoder) encode(values []float32, nullMask []byte) ([]byte, error) {
	headerSize := 1 + 4 + len(nullMask) + 4
	bw := NewBitWriter(headerSize + len(values)*2)

	header := make([]byte, 0, headerSize)
	header = append(header, gorilla32Magic)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(values)))
	header = append(header, nullMask...)

	firstBits := math.Float32bits(values[0])
	header = binary.LittleEndian.AppendUint32(header, firstBits)

	prevBits := firstBits
	prevLeading := uint8(32)
	prevTrailing := uint8(0)
	prevMeaningBits := uint8(32)

	for i := 1; i < len(values); i++ {
		currentBits := math.Float32bits(values[i])
		xor := prevBits ^ currentBits

		if xor == 0 {
			bw.WriteBit(0)
		} else {
			bw.WriteBit(1)

			leading := uint8(bits.LeadingZeros32(xor))
			trailing := uint8(bits.TrailingZeros32(xor))
			meaningBits := 32 - leading - trailing

			if prevMeaningBits < 32 && leading >= prevLeading && trailing >= prevTrailing {
				bw.WriteBit(0)
				meaningful := xor >> prevTrailing
				bw.WriteBits(uint64(meaningful), prevMeaningBits)
			} else {
				bw.WriteBit(1)
				bw.WriteBits(uint64(leading), 5)
				bw.WriteBits(uint64(meaningBits-1), 5)
				meaningful := xor >> trailing
				bw.WriteBits(uint64(meaningful), meaningBits)

				prevLeading = leading
				prevTrailing = trailing
				prevMeaningBits = meaningBits
			}
		}

		prevBits = currentBits
	}

	bitBytes := bw.Bytes()
	result := make([]byte, len(header)+len(bitBytes))
	copy(result, header)
	copy(result[len(header):], bitBytes)

	return result, nil
}

func (e *Gorilla32Encoder) Decode(data []byte, count int) ([]interface{}, error) {
	floats, nulls, err := e.decodeFloat32(data, count)
	if err != nil {
		return nil, err
	}
	if floats == nil {
		return nil, nil
	}

	values := make([]interface{}, len(floats))
	for i, f := range floats {
		if nulls[i] {
			values[i] = nil
		} else {
			values[i] = f
		}
	}
	return values, nil
}

func (e *Gorilla32Encoder) decodeFloat32(data []byte, count int) ([]float32, []bool, error) {
	if len(data) == 0 || count == 0 {
		return nil, nil, nil
	}
	if len(data) < 1 || data[0] != gorilla32Magic {
		return nil, nil, fmt.Errorf("encoding: FLOAT column has unrecognized header")
	}

	offset := 1

	if offset+4 > len(data) {
		return nil, nil, fmt.Errorf("encoding: FLOAT column too short for row count")
	}
	storedCount := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	if int(storedCount) != count {
		return nil, nil, fmt.Errorf("encoding: FLOAT column row count mismatch: expected %d, got %d", count, storedCount)
	}

	nullMaskSize := (count + 7) / 8
	if offset+nullMaskSize > len(data) {
		return nil, nil, fmt.Errorf("encoding: FLOAT column too short for null mask")
	}
	nullMask := data[offset : offset+nullMaskSize]
	offset += nullMaskSize

	if offset+4 > len(data) {
		return nil, nil, fmt.Errorf("encoding: FLOAT column too short for first value")
	}
	prevBits := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	values := make([]float32, count)
	nulls := make([]bool, count)

	if nullMask[0]&1 != 0 {
		nulls[0] = true
	} else {
		values[0] = math.Float32frombits(prevBits)
	}

	br := NewBitReader(data[offset:])
	prevTrailing := uint8(0)
	prevMeaningBits := uint8(32)

	for i := 1; i < count; i++ {
		controlBit, ok := br.ReadBit()
		if !ok {
			return nil, nil, fmt.Errorf("unexpected end of bitstream at value %d", i)
		}

		var currentBits uint32
		if controlBit == 0 {
			currentBits = prevBits
		} else {
			controlBit2, ok := br.ReadBit()
			if !ok {
				return nil, nil, fmt.Errorf("unexpected end of bitstream at value %d (ctrl2)", i)
			}

			var xor uint32
			if controlBit2 == 0 {
				meaningful, ok := br.ReadBits(prevMeaningBits)
				if !ok {
					return nil, nil, fmt.Errorf("unexpected end of bitstream at value %d (case2)", i)
				}
				xor = uint32(meaningful) << prevTrailing
			} else {
				leadingRaw, ok := br.ReadBits(5)
				if !ok {
					return nil, nil, fmt.Errorf("unexpected end of bitstream at value %d (leading)", i)
				}
				meaningRaw, ok := br.ReadBits(5)
				if !ok {
					return nil, nil, fmt.Errorf("unexpected end of bitstream at value %d (meaning)", i)
				}

				leading := uint8(leadingRaw)
				meaningBits := uint8(meaningRaw) + 1
				trailing := 32 - leading - meaningBits

				meaningful, ok := br.ReadBits(meaningBits)
				if !ok {
					return nil, nil, fmt.Errorf("unexpected end of bitstream at value %d (bits)", i)
				}
				xor = uint32(meaningful) << trailing

				prevTrailing = trailing
				prevMeaningBits = meaningBits
			}

			currentBits = prevBits ^ xor
		}

		if nullMask[i/8]&(1<<(i%8)) != 0 {
			nulls[i] = true
		} else {
			values[i] = math.Float32frombits(currentBits)
		}
		prevBits = currentBits
	}

	return values, nulls, nil
}
