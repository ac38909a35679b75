// Package dimension implements the per-dimension three-phase merge
// protocol: build the merged value dictionary, encode each output row's
// dictionary IDs, then build the inverted bitmap index.
package dimension

import "sort"

// linearScanThreshold is the dictionary size up to which IDFor uses a
// linear scan; larger dictionaries get a map lookup.
const linearScanThreshold = 32

// Dictionary is the merged, sorted set of unique values for one
// dimension across every input, with an optional leading null slot (ID
// 0) when any input reported nulls for this dimension.
type Dictionary struct {
	values  []string
	hasNull bool
	lookup  map[string]int
}

// NewDictionary sorts uniqueValues lexicographically and, if hasNull is
// set, reserves ID 0 for the null token ahead of every real value (null
// sorts before any string).
func NewDictionary(uniqueValues []string, hasNull bool) *Dictionary {
	sorted := make([]string, len(uniqueValues))
	copy(sorted, uniqueValues)
	sort.Strings(sorted)

	values := sorted
	if hasNull {
		values = make([]string, 0, len(sorted)+1)
		values = append(values, "")
		values = append(values, sorted...)
	}

	d := &Dictionary{values: values, hasNull: hasNull}
	if len(values) > linearScanThreshold {
		d.lookup = make(map[string]int, len(values))
		for i, v := range values {
			d.lookup[v] = i
		}
	}
	return d
}

// Len returns the dictionary size including the null slot, if present.
func (d *Dictionary) Len() int {
	return len(d.values)
}

// HasNull reports whether ID 0 is the reserved null token.
func (d *Dictionary) HasNull() bool {
	return d.hasNull
}

// NullID returns dictionary ID 0 if this dictionary carries a null slot.
func (d *Dictionary) NullID() (int, bool) {
	if !d.hasNull {
		return 0, false
	}
	return 0, true
}

// NumRealValues returns the dictionary size excluding the null slot.
func (d *Dictionary) NumRealValues() int {
	if d.hasNull {
		return len(d.values) - 1
	}
	return len(d.values)
}

// IDFor looks up value's dictionary ID. Up to linearScanThreshold entries
// this scans the sorted slice directly; larger dictionaries upgrade to a
// hash map.
func (d *Dictionary) IDFor(value string) (int, bool) {
	if d.lookup != nil {
		id, ok := d.lookup[value]
		return id, ok
	}
	for i, v := range d.values {
		if v == value {
			return i, true
		}
	}
	return 0, false
}

// ValueAt returns the dictionary value at id (the empty string for the
// null slot).
func (d *Dictionary) ValueAt(id int) string {
	return d.values[id]
}

// Values returns the full sorted backing slice, including the leading
// null placeholder if present.
func (d *Dictionary) Values() []string {
	return d.values
}
