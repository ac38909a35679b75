// Package errors defines the typed error kinds raised by the segment
// merge pipeline. Call sites distinguish them with errors.As rather than
// string matching.
package errors

import "fmt"

// Kind identifies which stage of the merge raised an error.
type Kind string

const (
	// KindInvalidInput covers malformed or contradictory merge inputs:
	// mismatched row counts, unsorted adapters, empty input lists.
	KindInvalidInput Kind = "invalid_input"
	// KindIncompatibleColumnTypes covers a column whose capabilities could
	// not be reconciled across inputs (e.g. STRING vs LONG for the same
	// column name).
	KindIncompatibleColumnTypes Kind = "incompatible_column_types"
	// KindUnknownComplexType covers a complex column whose type name has
	// no registered serde.
	KindUnknownComplexType Kind = "unknown_complex_type"
	// KindUnsupportedIteratorForConversion covers a row iterator that
	// cannot be adapted to the shape the row-number conversion step needs.
	KindUnsupportedIteratorForConversion Kind = "unsupported_iterator_for_conversion"
	// KindContainerIO covers failures writing or reading the on-disk
	// container (smoosh) files.
	KindContainerIO Kind = "container_io"
)

// MergeError is the error type returned by every exported package in this
// module. Details carries structured context (column name, input index,
// and similar) for callers that want it without parsing the message.
type MergeError struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Cause   error
}

func (e *MergeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *MergeError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, &MergeError{Kind: KindInvalidInput}) style checks
// by comparing kinds when both sides are MergeErrors.
func (e *MergeError) Is(target error) bool {
	t, ok := target.(*MergeError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, message string, cause error, details map[string]interface{}) *MergeError {
	return &MergeError{Kind: kind, Message: message, Cause: cause, Details: details}
}

// InvalidInput reports a malformed or contradictory set of merge inputs.
func InvalidInput(message string, details map[string]interface{}) *MergeError {
	return newError(KindInvalidInput, message, nil, details)
}

// IncompatibleColumnTypes reports a column whose capabilities could not be
// merged across inputs.
func IncompatibleColumnTypes(column string, left, right fmt.Stringer) *MergeError {
	return newError(KindIncompatibleColumnTypes, fmt.Sprintf("column %q: %s is incompatible with %s", column, left, right), nil, map[string]interface{}{
		"column": column,
		"left":   left.String(),
		"right":  right.String(),
	})
}

// UnknownComplexType reports a complex column type with no registered serde.
func UnknownComplexType(typeName string) *MergeError {
	return newError(KindUnknownComplexType, fmt.Sprintf("no serde registered for complex type %q", typeName), nil, map[string]interface{}{
		"type": typeName,
	})
}

// UnsupportedIteratorForConversion reports a row iterator that cannot
// produce row-number conversion buffers.
func UnsupportedIteratorForConversion(iteratorType string) *MergeError {
	return newError(KindUnsupportedIteratorForConversion, fmt.Sprintf("iterator %q does not support row-number conversion", iteratorType), nil, map[string]interface{}{
		"iterator": iteratorType,
	})
}

// ContainerIO wraps an I/O failure encountered while writing or reading the
// on-disk container.
func ContainerIO(operation string, cause error) *MergeError {
	return newError(KindContainerIO, fmt.Sprintf("container %s failed", operation), cause, map[string]interface{}{
		"operation": operation,
	})
}

// Wrap attaches a kind to an arbitrary cause without a details map, for
// call sites that just need to tag an underlying stdlib or third-party
// error with one of our kinds.
func Wrap(kind Kind, message string, cause error) *MergeError {
	return newError(kind, message, cause, nil)
}
