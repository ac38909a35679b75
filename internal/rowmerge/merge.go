// Package rowmerge implements the row merge iterator: a k-way merge over
// per-input row iterators ordered by (timestamp, dim1, dim2, ...), with an
// optional rollup variant that combines rows sharing a composite key.
package rowmerge

import (
	"container/heap"

	"github.com/soltixdb/segmentmerge/internal/adapter"
)

// cursor tracks one input's current row inside the merge heap.
type cursor struct {
	inputIndex int
	iter       adapter.RowIterator
	row        adapter.Row
	rowNum     int64
	valid      bool
}

func (c *cursor) advance() {
	c.valid = c.iter.Next()
	if c.valid {
		c.row = c.iter.Row()
		c.rowNum = c.iter.RowNum()
	}
}

// compositeKeyLess orders two cursors by (timestamp, dim1, dim2, ...),
// tie-breaking on input index so the merge is stable.
func compositeKeyLess(a, b *cursor) bool {
	if a.row.TimestampMillis != b.row.TimestampMillis {
		return a.row.TimestampMillis < b.row.TimestampMillis
	}
	if less, ok := dimsLess(a.row.Dims, b.row.Dims); ok {
		return less
	}
	return a.inputIndex < b.inputIndex
}

// dimsLess compares two rows' dimension selectors value by value. ok is
// false when every compared dimension is equal, leaving the caller to
// fall back to the input-index tie-break.
func dimsLess(a, b []adapter.DimensionSelector) (less bool, ok bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := firstValue(a[i]), firstValue(b[i])
		if av != bv {
			return av < bv, true
		}
	}
	return false, false
}

func firstValue(sel adapter.DimensionSelector) string {
	if sel == nil {
		return ""
	}
	values := sel.Values()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// sameCompositeKey reports whether two rows share the same
// (timestamp, dim1, dim2, ...) key, the grouping test for rollup combine.
func sameCompositeKey(a, b adapter.RowPointer) bool {
	if a.TimestampMillis != b.TimestampMillis {
		return false
	}
	if len(a.Dims) != len(b.Dims) {
		return false
	}
	for i := range a.Dims {
		if firstValue(a.Dims[i]) != firstValue(b.Dims[i]) {
			return false
		}
	}
	return true
}

// cursorHeap implements container/heap.Interface over the active cursors.
type cursorHeap []*cursor

func (h cursorHeap) Len() int           { return len(h) }
func (h cursorHeap) Less(i, j int) bool { return compositeKeyLess(h[i], h[j]) }
func (h cursorHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x interface{}) { *h = append(*h, x.(*cursor)) }

func (h *cursorHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// MergingRowIterator performs a k-way merge across per-input row
// iterators, used when rollup is disabled: every input row surfaces as
// its own output row, carrying its source input index and row number so
// the caller can maintain per-input row-number conversion buffers.
type MergingRowIterator struct {
	active  cursorHeap
	all     []*cursor
	current adapter.RowPointer
}

// NewMergingRowIterator builds a merge iterator over iters. iters must
// already be projected into the unified column order (see
// adapter.NewReorderingRowIterator); this iterator only orders rows, it
// does not reconcile schemas.
func NewMergingRowIterator(iters []adapter.RowIterator) *MergingRowIterator {
	m := &MergingRowIterator{}
	for i, it := range iters {
		c := &cursor{inputIndex: i, iter: it}
		c.advance()
		m.all = append(m.all, c)
		if c.valid {
			m.active = append(m.active, c)
		}
	}
	heap.Init(&m.active)
	return m
}

// Next advances to the next row in merged order. Returns false once every
// input is exhausted.
func (m *MergingRowIterator) Next() bool {
	if len(m.active) == 0 {
		return false
	}
	c := m.active[0]
	m.current = adapter.RowPointer{
		TimestampMillis: c.row.TimestampMillis,
		Dims:            c.row.Dims,
		Metrics:         c.row.Metrics,
		InputIndex:      c.inputIndex,
		OriginalRowNum:  c.rowNum,
	}
	c.advance()
	if c.valid {
		heap.Fix(&m.active, 0)
	} else {
		heap.Pop(&m.active)
	}
	return true
}

// Row returns the row pointer produced by the most recent Next call.
func (m *MergingRowIterator) Row() adapter.RowPointer {
	return m.current
}

// Close closes every underlying input iterator, continuing past the
// first error so a single misbehaving input cannot leak the rest.
func (m *MergingRowIterator) Close() error {
	var first error
	for _, c := range m.all {
		if err := c.iter.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
