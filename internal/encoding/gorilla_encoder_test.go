package encoding

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestGorillaEncoder_EmptyValues(t *testing.T) {
	encoder := NewGorillaEncoder()

	encoded, err := encoder.Encode([]interface{}{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if encoded != nil {
		t.Errorf("Expected nil for empty values, got %v", encoded)
	}

	decoded, err := encoder.Decode(nil, 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded != nil {
		t.Errorf("Expected nil for empty decode, got %v", decoded)
	}
}

func TestGorillaEncoder_Float64Values(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := []interface{}{1.5, 2.5, 3.5, 4.5, 5.5}

	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := encoder.Decode(encoded, len(values))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(decoded) != len(values) {
		t.Fatalf("Length mismatch: expected %d, got %d", len(values), len(decoded))
	}

	for i, v := range values {
		expected := v.(float64)
		actual := decoded[i].(float64)
		if expected != actual {
			t.Errorf("Value %d mismatch: expected %f, got %f", i, expected, actual)
		}
	}
}

func TestGorillaEncoder_WithNulls(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := []interface{}{1.5, nil, 3.5, nil, 5.5}

	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := encoder.Decode(encoded, len(values))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i, v := range values {
		if v == nil {
			if decoded[i] != nil {
				t.Errorf("Value %d: expected nil, got %v", i, decoded[i])
			}
		} else {
			expected := v.(float64)
			actual := decoded[i].(float64)
			if expected != actual {
				t.Errorf("Value %d mismatch: expected %f, got %f", i, expected, actual)
			}
		}
	}
}

func TestGorillaEncoder_SpecialValues(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := []interface{}{
		0.0,
		math.Copysign(0, -1),
		math.MaxFloat64,
		-math.MaxFloat64,
		math.SmallestNonzeroFloat64,
		math.Pi,
	}

	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := encoder.Decode(encoded, len(values))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i, v := range values {
		expected := v.(float64)
		actual := decoded[i].(float64)
		if expected != actual {
			t.Errorf("Value %d mismatch: expected %f, got %f", i, expected, actual)
		}
	}
}

func TestGorillaEncoder_MixedNumericTypes(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := []interface{}{
		float64(1.5),
		float32(2.5),
		int(3),
		int64(4),
	}

	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := encoder.Decode(encoded, len(values))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	expected := []float64{1.5, 2.5, 3.0, 4.0}
	for i, exp := range expected {
		actual := decoded[i].(float64)
		if exp != actual {
			t.Errorf("Value %d mismatch: expected %f, got %f", i, exp, actual)
		}
	}
}

func TestGorillaEncoder_CompressionRatio(t *testing.T) {
	encoder := NewGorillaEncoder()

	tests := []struct {
		name     string
		values   []interface{}
		minRatio float64
	}{
		{
			name: "ConstantValue",
			values: func() []interface{} {
				v := make([]interface{}, 1000)
				for i := range v {
					v[i] = 42.0
				}
				return v
			}(),
			minRatio: 30.0,
		},
		{
			name: "LinearSequence",
			values: func() []interface{} {
				v := make([]interface{}, 1000)
				for i := range v {
					v[i] = float64(i) * 1.5
				}
				return v
			}(),
			minRatio: 2.0,
		},
		{
			name: "SlowlyVaryingSensor",
			values: func() []interface{} {
				v := make([]interface{}, 1000)
				val := 25.0
				for i := range v {
					val += (float64(i%7) - 3.0) * 0.01
					v[i] = val
				}
				return v
			}(),
			minRatio: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := encoder.Encode(tt.values)
			if err != nil {
				t.Fatal(err)
			}
			rawSize := len(tt.values) * 8
			compressedSize := len(encoded)
			ratio := float64(rawSize) / float64(compressedSize)
			bitsPerValue := float64(compressedSize*8) / float64(len(tt.values))

			t.Logf("Raw: %d bytes, Compressed: %d bytes, Ratio: %.2fx, Bits/value: %.2f",
				rawSize, compressedSize, ratio, bitsPerValue)

			if ratio < tt.minRatio {
				t.Errorf("Compression ratio %.2fx below minimum %.2fx", ratio, tt.minRatio)
			}

			decoded, nulls, err := encoder.decodeGorilla(encoded, len(tt.values))
			if err != nil {
				t.Fatal(err)
			}
			for i, v := range tt.values {
				expected := v.(float64)
				if !nulls[i] && decoded[i] != expected {
					t.Fatalf("Mismatch at %d: got %v, expected %v", i, decoded[i], expected)
				}
			}
		})
	}
}

func TestGorillaEncoder_SingleValue(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := []interface{}{42.5}
	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := encoder.Decode(encoded, 1)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded[0].(float64) != 42.5 {
		t.Errorf("Expected 42.5, got %v", decoded[0])
	}
}

func TestGorillaEncoder_SingleNullValue(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := []interface{}{nil}
	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := encoder.Decode(encoded, 1)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded[0] != nil {
		t.Errorf("Expected nil, got %v", decoded[0])
	}
}

func TestGorillaEncoder_AllNulls(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := []interface{}{nil, nil, nil, nil, nil}
	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := encoder.Decode(encoded, 5)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i, d := range decoded {
		if d != nil {
			t.Errorf("Value %d: expected nil, got %v", i, d)
		}
	}
}

func TestGorillaEncoder_NaNAndInf(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := []interface{}{
		math.NaN(),
		math.Inf(1),
		math.Inf(-1),
		0.0,
	}

	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	floats, nulls, err := encoder.decodeGorilla(encoded, len(values))
	if err != nil {
		t.Fatalf("decodeGorilla failed: %v", err)
	}

	if !math.IsNaN(floats[0]) {
		t.Errorf("Expected NaN, got %v", floats[0])
	}
	if !math.IsInf(floats[1], 1) {
		t.Errorf("Expected +Inf, got %v", floats[1])
	}
	if !math.IsInf(floats[2], -1) {
		t.Errorf("Expected -Inf, got %v", floats[2])
	}
	if floats[3] != 0.0 {
		t.Errorf("Expected 0.0, got %v", floats[3])
	}
	for i := range nulls {
		if nulls[i] {
			t.Errorf("Value %d should not be null", i)
		}
	}
}

func TestGorillaEncoder_IdenticalValues(t *testing.T) {
	// Exercises the single '0' control bit path (XOR == 0).
	encoder := NewGorillaEncoder()

	values := make([]interface{}, 100)
	for i := range values {
		values[i] = math.Pi
	}

	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := encoder.Decode(encoded, len(values))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i, d := range decoded {
		if d.(float64) != math.Pi {
			t.Errorf("Value %d: expected Pi, got %v", i, d)
		}
	}

	rawSize := len(values) * 8
	ratio := float64(rawSize) / float64(len(encoded))
	if ratio < 10.0 {
		t.Errorf("Expected compression ratio > 10x for identical values, got %.2fx", ratio)
	}
}

func TestGorillaEncoder_AlternatingValues(t *testing.T) {
	// Exercises the bit-packing window-reuse path.
	encoder := NewGorillaEncoder()

	values := make([]interface{}, 100)
	for i := range values {
		if i%2 == 0 {
			values[i] = 1.0
		} else {
			values[i] = 2.0
		}
	}

	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := encoder.Decode(encoded, len(values))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i, d := range decoded {
		expected := 1.0
		if i%2 == 1 {
			expected = 2.0
		}
		if d.(float64) != expected {
			t.Errorf("Value %d: expected %f, got %v", i, expected, d)
		}
	}
}

func TestGorillaEncoder_UnsupportedType(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := []interface{}{complex(1, 2)}
	_, err := encoder.Encode(values)
	if err == nil {
		t.Error("Expected error for unsupported type complex128")
	}

	values = []interface{}{"not_a_number"}
	_, err = encoder.Encode(values)
	if err == nil {
		t.Error("Expected error for a string value in a DOUBLE column")
	}
}

func TestGorillaEncoder_DecodeFloat64_EmptyAndZeroCount(t *testing.T) {
	encoder := NewGorillaEncoder()

	f, n, err := encoder.decodeGorilla(nil, 0)
	if err != nil || f != nil || n != nil {
		t.Errorf("Expected (nil, nil, nil) for empty data, got (%v, %v, %v)", f, n, err)
	}

	f, n, err = encoder.decodeGorilla([]byte{gorillaMagic, 0, 0, 0, 0}, 0)
	if err != nil || f != nil || n != nil {
		t.Errorf("Expected (nil, nil, nil) for zero count, got (%v, %v, %v)", f, n, err)
	}
}

func TestGorillaEncoder_DecodeFloat64_Roundtrip(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := []interface{}{1.1, 2.2, nil, 4.4, 5.5}

	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	floats, nulls, err := encoder.decodeGorilla(encoded, len(values))
	if err != nil {
		t.Fatalf("decodeGorilla failed: %v", err)
	}

	if len(floats) != 5 || len(nulls) != 5 {
		t.Fatalf("Length mismatch: floats=%d, nulls=%d", len(floats), len(nulls))
	}

	if floats[0] != 1.1 || floats[1] != 2.2 || floats[3] != 4.4 || floats[4] != 5.5 {
		t.Error("Float values don't match")
	}
	if !nulls[2] {
		t.Error("Index 2 should be null")
	}
	if nulls[0] || nulls[1] || nulls[3] || nulls[4] {
		t.Error("Non-null values should not be marked as null")
	}
}

func TestGorillaEncoder_Decode_ReturnsNilForNilData(t *testing.T) {
	encoder := NewGorillaEncoder()

	decoded, err := encoder.Decode(nil, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decoded != nil {
		t.Errorf("Expected nil, got %v", decoded)
	}
}

func TestGorillaEncoder_NineValues(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := []interface{}{1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 7.0, 8.0, nil}
	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := encoder.Decode(encoded, 9)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i := 0; i < 8; i++ {
		if decoded[i].(float64) != float64(i+1) {
			t.Errorf("Value %d: expected %f, got %v", i, float64(i+1), decoded[i])
		}
	}
	if decoded[8] != nil {
		t.Errorf("Value 8: expected nil, got %v", decoded[8])
	}
}

func TestGorillaEncoder_WindowReuse(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := make([]interface{}, 20)
	base := 100.0
	for i := range values {
		values[i] = base + float64(i)*0.001
	}

	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	floats, _, err := encoder.decodeGorilla(encoded, len(values))
	if err != nil {
		t.Fatalf("decodeGorilla failed: %v", err)
	}

	for i, v := range values {
		if floats[i] != v.(float64) {
			t.Errorf("Value %d: expected %v, got %v", i, v, floats[i])
		}
	}
}

func TestGorillaEncoder_LargeDataset(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := make([]interface{}, 10000)
	for i := range values {
		if i%100 == 0 {
			values[i] = nil
		} else {
			values[i] = float64(i) * 0.123456789
		}
	}

	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := encoder.Decode(encoded, len(values))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i, v := range values {
		if v == nil {
			if decoded[i] != nil {
				t.Errorf("Value %d: expected nil, got %v", i, decoded[i])
			}
		} else {
			if decoded[i].(float64) != v.(float64) {
				t.Errorf("Value %d: expected %v, got %v", i, v, decoded[i])
			}
		}
	}
}

func TestGorillaDecode_UnrecognizedHeader(t *testing.T) {
	encoder := NewGorillaEncoder()

	data := make([]byte, 13)
	binary.LittleEndian.PutUint32(data, 1)
	_, _, err := encoder.decodeGorilla(data, 1)
	if err == nil {
		t.Error("Expected error for a header that isn't the Gorilla magic byte")
	}
}

func TestGorillaDecode_TooShortForCount(t *testing.T) {
	encoder := NewGorillaEncoder()

	data := []byte{gorillaMagic, 0x01}
	_, _, err := encoder.decodeGorilla(data, 5)
	if err == nil {
		t.Error("Expected error for data too short for count")
	}
}

func TestGorillaDecode_CountMismatch(t *testing.T) {
	encoder := NewGorillaEncoder()

	data := make([]byte, 14)
	data[0] = gorillaMagic
	binary.LittleEndian.PutUint32(data[1:5], 10)

	_, _, err := encoder.decodeGorilla(data, 5)
	if err == nil {
		t.Error("Expected error for count mismatch")
	}
}

func TestGorillaDecode_TooShortForNullMask(t *testing.T) {
	encoder := NewGorillaEncoder()

	data := make([]byte, 5)
	data[0] = gorillaMagic
	binary.LittleEndian.PutUint32(data[1:5], 100)

	_, _, err := encoder.decodeGorilla(data, 100)
	if err == nil {
		t.Error("Expected error for data too short for null mask")
	}
}

func TestGorillaDecode_TooShortForFirstValue(t *testing.T) {
	encoder := NewGorillaEncoder()

	data := make([]byte, 6)
	data[0] = gorillaMagic
	binary.LittleEndian.PutUint32(data[1:5], 1)
	data[5] = 0

	_, _, err := encoder.decodeGorilla(data, 1)
	if err == nil {
		t.Error("Expected error for data too short for first value")
	}
}

func TestGorillaDecode_TruncatedBitstream(t *testing.T) {
	encoder := NewGorillaEncoder()

	values := make([]interface{}, 10)
	for i := range values {
		values[i] = float64(i) * 100.0
	}
	encoded, _ := encoder.Encode(values)

	truncated := encoded[:len(encoded)-3]
	_, _, err := encoder.decodeGorilla(truncated, 10)
	if err == nil {
		t.Error("Expected error for truncated bitstream")
	}
}

// gorillaEncodeHelper encodes values and returns (encoded, count).
func gorillaEncodeHelper(t *testing.T, values []interface{}) ([]byte, int) {
	t.Helper()
	encoder := NewGorillaEncoder()
	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return encoded, len(values)
}

func TestGorillaDecode_Truncate_ControlBit(t *testing.T) {
	values := []interface{}{1.0, math.Pi, 2.718}
	encoded, count := gorillaEncodeHelper(t, values)

	headerSize := 1 + 4 + (count+7)/8 + 8
	truncated := encoded[:headerSize]

	encoder := NewGorillaEncoder()
	_, _, err := encoder.decodeGorilla(truncated, count)
	if err == nil {
		t.Error("Expected error for truncated control bit")
	}
}

func TestGorillaDecode_Truncate_Case2MeaningfulBits(t *testing.T) {
	values := make([]interface{}, 50)
	for i := range values {
		values[i] = 1.0 + float64(i)*1e-10
	}
	encoded, count := gorillaEncodeHelper(t, values)
	headerSize := 1 + 4 + (count+7)/8 + 8

	_, _, err := NewGorillaEncoder().decodeGorilla(encoded[:headerSize+1], count)
	if err == nil {
		t.Error("Expected error from severely truncated bitstream")
	}
}

func TestGorillaDecode_Truncate_Case3LeadingBits(t *testing.T) {
	values := make([]interface{}, 50)
	for i := range values {
		values[i] = math.Pow(-1, float64(i)) * math.Exp(float64(i))
	}
	encoded, count := gorillaEncodeHelper(t, values)
	headerSize := 1 + 4 + (count+7)/8 + 8

	_, _, err := NewGorillaEncoder().decodeGorilla(encoded[:headerSize+1], count)
	if err == nil {
		t.Error("Expected error from truncated bitstream")
	}
}

func TestGorillaEncoder_Decode_WithValidData(t *testing.T) {
	encoder := NewGorillaEncoder()
	values := []interface{}{1.0, 2.0, nil, 4.0}
	encoded, err := encoder.Encode(values)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	decoded, err := encoder.Decode(encoded, len(values))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if len(decoded) != 4 {
		t.Fatalf("Expected 4 values, got %d", len(decoded))
	}
	if decoded[0].(float64) != 1.0 || decoded[1].(float64) != 2.0 {
		t.Error("Mismatch in non-null values")
	}
	if decoded[2] != nil {
		t.Error("Expected nil at index 2")
	}
}

func TestGorillaEncoder_Decode_PropagatesError(t *testing.T) {
	encoder := NewGorillaEncoder()
	_, err := encoder.Decode([]byte{0x02}, 5)
	if err == nil {
		t.Error("Expected error from invalid data")
	}
}

func BenchmarkGorillaEncoder_Encode(b *testing.B) {
	encoder := NewGorillaEncoder()
	values := make([]interface{}, 1000)
	for i := range values {
		values[i] = float64(i) * 1.5
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = encoder.Encode(values)
	}
}

func BenchmarkGorillaEncoder_Decode(b *testing.B) {
	encoder := NewGorillaEncoder()
	values := make([]interface{}, 1000)
	for i := range values {
		values[i] = float64(i) * 1.5
	}
	encoded, _ := encoder.Encode(values)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = encoder.Decode(encoded, len(values))
	}
}

func BenchmarkGorillaEncoder_CompressionRatio(b *testing.B) {
	encoder := NewGorillaEncoder()

	tests := []struct {
		name   string
		values []interface{}
	}{
		{
			name: "LinearSequence",
			values: func() []interface{} {
				v := make([]interface{}, 1000)
				for i := range v {
					v[i] = float64(i) * 1.5
				}
				return v
			}(),
		},
		{
			name: "ConstantValue",
			values: func() []interface{} {
				v := make([]interface{}, 1000)
				for i := range v {
					v[i] = 42.0
				}
				return v
			}(),
		},
		{
			name: "SlowlyVaryingSensor",
			values: func() []interface{} {
				v := make([]interface{}, 1000)
				val := 25.0
				for i := range v {
					val += (float64(i%7) - 3.0) * 0.01
					v[i] = val
				}
				return v
			}(),
		},
		{
			name: "RandomWalk",
			values: func() []interface{} {
				v := make([]interface{}, 1000)
				val := 100.0
				for i := range v {
					val += float64((i*1103515245+12345)%100-50) * 0.001
					v[i] = val
				}
				return v
			}(),
		},
	}

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			encoded, err := encoder.Encode(tt.values)
			if err != nil {
				b.Fatal(err)
			}
			rawSize := len(tt.values) * 8
			compressedSize := len(encoded)
			ratio := float64(rawSize) / float64(compressedSize)
			bitsPerValue := float64(compressedSize*8) / float64(len(tt.values))

			b.ReportMetric(ratio, "ratio")
			b.ReportMetric(bitsPerValue, "bits/value")
			b.ReportMetric(float64(compressedSize), "compressed_bytes")
			b.ReportMetric(float64(rawSize), "raw_bytes")

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = encoder.Encode(tt.values)
			}
		})
	}
}
