// Package bitmap wraps github.com/RoaringBitmap/roaring for the
// dimension inverted indexes built during segment assembly: one bitmap
// per dictionary value, set bits are output row numbers.
package bitmap

import (
	"bytes"
	"io"

	"github.com/RoaringBitmap/roaring"
)

// FactoryID is the bitmap-serde identifier persisted in index.drd so a
// reader knows which bitmap implementation produced the segment's
// dimension indexes.
const FactoryID = "roaring"

// Bitmap is a mutable set of output row numbers for one dictionary value.
type Bitmap struct {
	rb *roaring.Bitmap
}

// New returns an empty bitmap.
func New() *Bitmap {
	return &Bitmap{rb: roaring.New()}
}

// Add sets bit rowNum.
func (b *Bitmap) Add(rowNum uint32) {
	b.rb.Add(rowNum)
}

// Contains reports whether rowNum is set.
func (b *Bitmap) Contains(rowNum uint32) bool {
	return b.rb.Contains(rowNum)
}

// Cardinality returns the number of set bits.
func (b *Bitmap) Cardinality() uint64 {
	return b.rb.GetCardinality()
}

// Or unions other into b in place.
func (b *Bitmap) Or(other *Bitmap) {
	b.rb.Or(other.rb)
}

// Clone returns an independent copy.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{rb: b.rb.Clone()}
}

// Union returns a new bitmap containing the union of all inputs. Used
// when building one output bitmap per dictionary value from several
// per-input bitmaps mapped through row-number conversion buffers.
func Union(bitmaps ...*Bitmap) *Bitmap {
	result := New()
	for _, bm := range bitmaps {
		if bm != nil {
			result.Or(bm)
		}
	}
	return result
}

// Serialize writes the bitmap's portable byte-array form, suitable for
// embedding in a column's serialized payload.
func (b *Bitmap) Serialize() ([]byte, error) {
	b.rb.RunOptimize()
	var buf bytes.Buffer
	if _, err := b.rb.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize reads a bitmap previously produced by Serialize.
func Deserialize(data []byte) (*Bitmap, error) {
	rb := roaring.New()
	if _, err := rb.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return &Bitmap{rb: rb}, nil
}

// WriteTo writes the bitmap's serialized form directly to w.
func (b *Bitmap) WriteTo(w io.Writer) (int64, error) {
	b.rb.RunOptimize()
	return b.rb.WriteTo(w)
}

// ToArray returns the sorted set bits as a plain slice, mainly useful
// for tests and debugging.
func (b *Bitmap) ToArray() []uint32 {
	return b.rb.ToArray()
}
