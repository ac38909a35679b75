// Package capability folds per-column type and encoding metadata from
// multiple merge inputs into a single description the rest of the
// pipeline treats as ground truth for that column.
package capability

import (
	"fmt"

	mergeerrors "github.com/soltixdb/segmentmerge/internal/errors"
)

// Tristate represents a capability flag that may be unknown because an
// input never declared it. Unknown is the identity element for both Or
// and And: combining it with anything returns the other operand
// unchanged, so an input that is silent on a flag never drags the merged
// result toward either extreme.
type Tristate int

const (
	Unknown Tristate = iota
	True
	False
)

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// FromBool lifts a plain bool into a known Tristate.
func FromBool(b bool) Tristate {
	if b {
		return True
	}
	return False
}

// Or implements logical OR with Unknown as the identity element.
func (t Tristate) Or(other Tristate) Tristate {
	if t == Unknown {
		return other
	}
	if other == Unknown {
		return t
	}
	if t == True || other == True {
		return True
	}
	return False
}

// And implements logical AND with Unknown as the identity element.
func (t Tristate) And(other Tristate) Tristate {
	if t == Unknown {
		return other
	}
	if other == Unknown {
		return t
	}
	if t == False || other == False {
		return False
	}
	return True
}

// Resolve snapshots the tristate against a coercion policy default,
// replacing Unknown with the policy's value for this flag.
func (t Tristate) Resolve(policyDefault bool) bool {
	switch t {
	case True:
		return true
	case False:
		return false
	default:
		return policyDefault
	}
}

// ColumnType is the tagged variant from the column-kind taxonomy: every
// column is exactly one of these, with ComplexTypeName set only for
// Complex.
type ColumnType int

const (
	TypeLong ColumnType = iota
	TypeFloat
	TypeDouble
	TypeString
	TypeComplex
)

func (t ColumnType) String() string {
	switch t {
	case TypeLong:
		return "LONG"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeString:
		return "STRING"
	case TypeComplex:
		return "COMPLEX"
	default:
		return "UNKNOWN"
	}
}

// Capabilities is the per-column attribute bundle merged across inputs.
type Capabilities struct {
	Type            ColumnType
	ElementType     ColumnType
	ComplexTypeName string

	DictionaryEncoded      Tristate
	DictionaryValuesSorted Tristate
	DictionaryValuesUnique Tristate
	HasMultipleValues      Tristate
	HasNulls               Tristate

	HasBitmapIndexes  bool
	HasSpatialIndexes bool
	Filterable        bool
}

func (c *Capabilities) String() string {
	if c.Type == TypeComplex {
		return fmt.Sprintf("COMPLEX<%s>", c.ComplexTypeName)
	}
	return c.Type.String()
}

func typesMatch(a, b *Capabilities) bool {
	if a.Type != b.Type || a.ElementType != b.ElementType {
		return false
	}
	if a.Type == TypeComplex && a.ComplexTypeName != b.ComplexTypeName {
		return false
	}
	return true
}

// Merge folds two per-column capability records into one, per the rules:
// type/elementType/complexTypeName must agree exactly; dictionaryEncoded,
// hasMultipleValues and hasNulls are ORed; dictionaryValuesSorted,
// dictionaryValuesUnique and filterable are ANDed; hasBitmapIndexes is
// false on any disagreement; hasSpatialIndexes is ORed.
func Merge(columnName string, a, b *Capabilities) (*Capabilities, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}

	if !typesMatch(a, b) {
		return nil, mergeerrors.IncompatibleColumnTypes(columnName, a, b)
	}

	merged := &Capabilities{
		Type:                   a.Type,
		ElementType:            a.ElementType,
		ComplexTypeName:        a.ComplexTypeName,
		DictionaryEncoded:      a.DictionaryEncoded.Or(b.DictionaryEncoded),
		HasMultipleValues:      a.HasMultipleValues.Or(b.HasMultipleValues),
		HasNulls:               a.HasNulls.Or(b.HasNulls),
		DictionaryValuesSorted: a.DictionaryValuesSorted.And(b.DictionaryValuesSorted),
		DictionaryValuesUnique: a.DictionaryValuesUnique.And(b.DictionaryValuesUnique),
		Filterable:             a.Filterable && b.Filterable,
		HasSpatialIndexes:      a.HasSpatialIndexes || b.HasSpatialIndexes,
	}

	if a.HasBitmapIndexes == b.HasBitmapIndexes {
		merged.HasBitmapIndexes = a.HasBitmapIndexes
	} else {
		merged.HasBitmapIndexes = false
	}

	return merged, nil
}

// MergeAll folds a list of per-input capabilities for one column name
// into a single merged result. Nil entries (a column absent from a
// given input) are skipped.
func MergeAll(columnName string, all []*Capabilities) (*Capabilities, error) {
	var merged *Capabilities
	for _, c := range all {
		if c == nil {
			continue
		}
		var err error
		merged, err = Merge(columnName, merged, c)
		if err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// CoercionPolicy supplies defaults for resolving Unknown tristate flags
// once the merge is final and every column needs a concrete boolean
// capability set.
type CoercionPolicy struct {
	Name                   string
	DictionaryEncoded      bool
	DictionaryValuesSorted bool
	DictionaryValuesUnique bool
	HasMultipleValues      bool
	HasNulls               bool
	Filterable             bool
}

// DimensionCoercion is applied to dimension columns: dictionary-encoded,
// sorted, unique, single-valued, no nulls by default.
var DimensionCoercion = CoercionPolicy{
	Name:                   "dimension",
	DictionaryEncoded:      true,
	DictionaryValuesSorted: true,
	DictionaryValuesUnique: true,
	HasMultipleValues:      false,
	HasNulls:               false,
	Filterable:             true,
}

// MetricCoercion is applied to metric columns: every flag defaults false.
var MetricCoercion = CoercionPolicy{
	Name:                   "metric",
	DictionaryEncoded:      false,
	DictionaryValuesSorted: false,
	DictionaryValuesUnique: false,
	HasMultipleValues:      false,
	HasNulls:               false,
	Filterable:             false,
}

// Resolved is a Capabilities snapshot with every tristate flag replaced
// by a concrete bool.
type Resolved struct {
	Type                   ColumnType
	ElementType            ColumnType
	ComplexTypeName        string
	DictionaryEncoded      bool
	DictionaryValuesSorted bool
	DictionaryValuesUnique bool
	HasMultipleValues      bool
	HasNulls               bool
	HasBitmapIndexes       bool
	HasSpatialIndexes      bool
	Filterable             bool
}

// Snapshot resolves every Unknown flag against the supplied coercion
// policy.
func (c *Capabilities) Snapshot(policy CoercionPolicy) *Resolved {
	return &Resolved{
		Type:                   c.Type,
		ElementType:            c.ElementType,
		ComplexTypeName:        c.ComplexTypeName,
		DictionaryEncoded:      c.DictionaryEncoded.Resolve(policy.DictionaryEncoded),
		DictionaryValuesSorted: c.DictionaryValuesSorted.Resolve(policy.DictionaryValuesSorted),
		DictionaryValuesUnique: c.DictionaryValuesUnique.Resolve(policy.DictionaryValuesUnique),
		HasMultipleValues:      c.HasMultipleValues.Resolve(policy.HasMultipleValues),
		HasNulls:               c.HasNulls.Resolve(policy.HasNulls),
		HasBitmapIndexes:       c.HasBitmapIndexes,
		HasSpatialIndexes:      c.HasSpatialIndexes,
		Filterable:             c.Filterable,
	}
}
