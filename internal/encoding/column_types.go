// Package encoding implements the numeric column codecs a built segment's
// LONG, FLOAT and DOUBLE columns are stored with: delta+zigzag+varint for
// the monotonic __time column and LONG dimension-free metrics, and
// Gorilla-style XOR bit-packing for FLOAT/DOUBLE metrics.
package encoding

// ColumnEncoder turns one column's buffered values into its on-disk
// payload and back. A column.Serializer holds the buffered []interface{}
// and asks its ColumnEncoder for the payload once at flush time;
// internal/segment's reopen path calls Decode to read a phase's output
// back as the next tier's input.
type ColumnEncoder interface {
	Encode(values []interface{}) ([]byte, error)
	Decode(data []byte, count int) ([]interface{}, error)
}
