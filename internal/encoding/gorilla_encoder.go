package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
)

// GorillaEncoder stores a DOUBLE metric column (a sum/min/max aggregator
// value, or an unrolled-up double measurement) as a run of XOR deltas
// against the previous row, per the bit-packing scheme from Pelkonen et
// al., "Gorilla: A Fast, Scalable, In-Memory Time Series Database"
// (PVLDB Vol. 8, No. 12, 2015, §4.1.2):
//
//  1. First value: stored as raw 64-bit IEEE 754 bits.
//  2. Each later value is XORed against the previous value's bits.
//     - XOR == 0: one '0' bit (unchanged from the previous row).
//     - XOR != 0: a '1' bit, then either:
//     '0' + the previous row's meaningful-bit window (bits fall
//     inside the same leading/trailing-zero span as last time), or
//     '1' + 6-bit leading-zero count + 6-bit window width + the
//     meaningful bits themselves (a new window).
//
// Segment merges only ever write this format; it never has to read back
// anything it didn't itself produce.
type GorillaEncoder struct{}

const gorillaMagic = 0x02

func NewGorillaEncoder() *GorillaEncoder {
	return &GorillaEncoder{}
}

func (e *GorillaEncoder) Encode(values []interface{}) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}

	floats := make([]float64, len(values))
	nullMask := make([]byte, (len(values)+7)/8)

	for i, v := range values {
		if v == nil {
			nullMask[i/8] |= 1 << (i % 8)
			continue
		}
		switch val := v.(type) {
		case float64:
			floats[i] = val
		case float32:
			floats[i] = float64(val)
		case int:
			floats[i] = float64(val)
		case int64:
			floats[i] = float64(val)
		case int32:
			floats[i] = float64(val)
		default:
			return nil, fmt.Errorf("encoding: unsupported value type for DOUBLE column: %T", v)
		}
	}

	return e.encodeGorilla(floats, nullMask), nil
}

// encodeGorilla writes the wire format:
//
//	[magic: 1 byte] [count: 4 bytes LE] [nullMask: ceil(count/8) bytes]
//	[first value: 8 bytes LE raw bits] [XOR bit stream]
func (e *GorillaEncoder) encodeGorilla(values []float64, nullMask []byte) []byte {
	headerSize := 1 + 4 + len(nullMask) + 8
	bw := NewBitWriter(headerSize + len(values)*2)

	header := make([]byte, 0, headerSize)
	header = append(header, gorillaMagic)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(values)))
	header = append(header, nullMask...)

	firstBits := math.Float64bits(values[0])
	header = binary.LittleEndian.AppendUint64(header, firstBits)

	prevBits := firstBits
	prevLeading := uint8(64)
	prevTrailing := uint8(0)
	prevMeaningBits := uint8(64)

	for i := 1; i < len(values); i++ {
		currentBits := math.Float64bits(values[i])
		xor := prevBits ^ currentBits

		if xor == 0 {
			bw.WriteBit(0)
		} else {
			bw.WriteBit(1)

			leading := LeadingZeros64(xor)
			if leading > 63 {
				leading = 63
			}
			trailing := TrailingZeros64(xor)
			meaningBits := 64 - leading - trailing

			if prevMeaningBits < 64 && leading >= prevLeading && trailing >= prevTrailing {
				bw.WriteBit(0)
				meaningful := xor >> prevTrailing
				bw.WriteBits(meaningful, prevMeaningBits)
			} else {
				bw.WriteBit(1)
				bw.WriteBits(uint64(leading), 6)
				bw.WriteBits(uint64(meaningBits-1), 6)
				meaningful := xor >> trailing
				bw.WriteBits(meaningful, meaningBits)

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
	return result
}

func (e *GorillaEncoder) Decode(data []byte, count int) ([]interface{}, error) {
	floats, nulls, err := e.decodeGorilla(data, count)
	if err != nil {
		return nil, err
	}
	if floats == nil {
		return nil, nil
	}

	values := make([]interface{}, len(floats))
	for i, f := range floats {
		if !nulls[i] {
			values[i] = f
		}
	}
	return values, nil
}

func (e *GorillaEncoder) decodeGorilla(data []byte, count int) ([]float64, []bool, error) {
	if len(data) == 0 || count == 0 {
		return nil, nil, nil
	}
	if len(data) < 1 || data[0] != gorillaMagic {
		return nil, nil, fmt.Errorf("encoding: DOUBLE column has unrecognized header")
	}

	offset := 1
	if offset+4 > len(data) {
		return nil, nil, fmt.Errorf("encoding: DOUBLE column too short for row count")
	}
	storedCount := binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	if int(storedCount) != count {
		return nil, nil, fmt.Errorf("encoding: DOUBLE column row count mismatch: expected %d, got %d", count, storedCount)
	}

	nullMaskSize := (count + 7) / 8
	if offset+nullMaskSize > len(data) {
		return nil, nil, fmt.Errorf("encoding: DOUBLE column too short for null mask")
	}
	nullMask := data[offset : offset+nullMaskSize]
	offset += nullMaskSize

	if offset+8 > len(data) {
		return nil, nil, fmt.Errorf("encoding: DOUBLE column too short for first value")
	}
	prevBits := binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	values := make([]float64, count)
	nulls := make([]bool, count)
	if nullMask[0]&1 != 0 {
		nulls[0] = true
	} else {
		values[0] = math.Float64frombits(prevBits)
	}

	br := NewBitReader(data[offset:])
	prevTrailing := uint8(0)
	prevMeaningBits := uint8(64)

	for i := 1; i < count; i++ {
		controlBit, ok := br.ReadBit()
		if !ok {
			return nil, nil, fmt.Errorf("encoding: DOUBLE column bit stream ended at row %d", i)
		}

		var currentBits uint64
		if controlBit == 0 {
			currentBits = prevBits
		} else {
			controlBit2, ok := br.ReadBit()
			if !ok {
				return nil, nil, fmt.Errorf("encoding: DOUBLE column bit stream ended at row %d", i)
			}

			var xor uint64
			if controlBit2 == 0 {
				meaningful, ok := br.ReadBits(prevMeaningBits)
				if !ok {
					return nil, nil, fmt.Errorf("encoding: DOUBLE column bit stream ended at row %d", i)
				}
				xor = meaningful << prevTrailing
			} else {
				leadingRaw, ok := br.ReadBits(6)
				if !ok {
					return nil, nil, fmt.Errorf("encoding: DOUBLE column bit stream ended at row %d", i)
				}
				meaningRaw, ok := br.ReadBits(6)
				if !ok {
					return nil, nil, fmt.Errorf("encoding: DOUBLE column bit stream ended at row %d", i)
				}

				leading := uint8(leadingRaw)
				meaningBits := uint8(meaningRaw) + 1
				trailing := 64 - leading - meaningBits

				meaningful, ok := br.ReadBits(meaningBits)
				if !ok {
					return nil, nil, fmt.Errorf("encoding: DOUBLE column bit stream ended at row %d", i)
				}
				xor = meaningful << trailing

				prevTrailing = trailing
				prevMeaningBits = meaningBits
			}

			currentBits = prevBits ^ xor
		}

		if nullMask[i/8]&(1<<(i%8)) != 0 {
			nulls[i] = true
		} else {
			values[i] = math.Float64frombits(currentBits)
		}
		prevBits = currentBits
	}

	return values, nulls, nil
}
