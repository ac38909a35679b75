package segment

import (
	"encoding/binary"
	"time"

	"github.com/soltixdb/segmentmerge/internal/adapter"
	"github.com/soltixdb/segmentmerge/internal/container"
	mergeerrors "github.com/soltixdb/segmentmerge/internal/errors"
)

func millisToTime(millis int64) time.Time {
	return time.UnixMilli(millis).UTC()
}

// nonNullPlaceholder marks a position in the placeholder vectors that is
// filled, in declared order, from the corresponding nonNullOnly vector.
const nonNullPlaceholder = ""

// buildIndexDrd assembles the index.drd blob: the nonNullOnlyColumns and
// nonNullOnlyDimensions vectors every reader understands, then the
// positional placeholder vectors a newer reader uses to reconstruct the
// full originally declared order including null-only columns, then the
// data interval and the bitmap factory identifier.
//
// The placeholder vectors are written after the non-null vectors so an
// older reader that only understands the first two can stop reading
// early and still get a correct (if null-only-column-blind) segment.
func buildIndexDrd(allColumns, allDimensions []string, nullOnly map[string]bool, interval adapter.Interval, bitmapFactory string) []byte {
	nonNullColumns := filterOut(allColumns, nullOnly)
	nonNullDimensions := filterOut(allDimensions, nullOnly)
	placeholderColumns := placeholderVector(allColumns, nullOnly)
	placeholderDimensions := placeholderVector(allDimensions, nullOnly)

	buf := make([]byte, 0)
	buf = appendIndexedVector(buf, nonNullColumns)
	buf = appendIndexedVector(buf, nonNullDimensions)
	buf = appendIndexedVector(buf, placeholderColumns)
	buf = appendIndexedVector(buf, placeholderDimensions)
	buf = binary.BigEndian.AppendUint64(buf, uint64(interval.StartMillis()))
	buf = binary.BigEndian.AppendUint64(buf, uint64(interval.EndMillis()))
	buf = appendLengthPrefixedString(buf, bitmapFactory)
	return buf
}

func filterOut(names []string, nullOnly map[string]bool) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !nullOnly[n] {
			out = append(out, n)
		}
	}
	return out
}

func placeholderVector(names []string, nullOnly map[string]bool) []string {
	out := make([]string, len(names))
	for i, n := range names {
		if nullOnly[n] {
			out[i] = n
		} else {
			out[i] = nonNullPlaceholder
		}
	}
	return out
}

func appendIndexedVector(buf []byte, values []string) []byte {
	data := container.NewGenericIndexed(values).Serialize()
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

func appendLengthPrefixedString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// decodedIndexDrd is the reconstructed view of an index.drd blob, mainly
// useful for tests exercising the zip-reconstruction rule.
type decodedIndexDrd struct {
	AllColumns    []string
	AllDimensions []string
	Interval      adapter.Interval
	BitmapFactory string
}

func decodeIndexDrd(data []byte) (*decodedIndexDrd, error) {
	nonNullColumns, rest, err := readIndexedVector(data)
	if err != nil {
		return nil, err
	}
	nonNullDimensions, rest, err := readIndexedVector(rest)
	if err != nil {
		return nil, err
	}
	placeholderColumns, rest, err := readIndexedVector(rest)
	if err != nil {
		return nil, err
	}
	placeholderDimensions, rest, err := readIndexedVector(rest)
	if err != nil {
		return nil, err
	}
	if len(rest) < 16 {
		return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "index.drd too short for interval", nil)
	}
	startMillis := int64(binary.BigEndian.Uint64(rest[:8]))
	endMillis := int64(binary.BigEndian.Uint64(rest[8:16]))
	rest = rest[16:]
	bitmapFactory, _, err := readLengthPrefixedString(rest)
	if err != nil {
		return nil, err
	}

	return &decodedIndexDrd{
		AllColumns:    zipPlaceholder(placeholderColumns, nonNullColumns),
		AllDimensions: zipPlaceholder(placeholderDimensions, nonNullDimensions),
		Interval: adapter.Interval{
			Start: millisToTime(startMillis),
			End:   millisToTime(endMillis),
		},
		BitmapFactory: bitmapFactory,
	}, nil
}

// zipPlaceholder reconstructs the original declared order: each
// placeholder position is either a null-only name (used verbatim) or the
// marker, which consumes the next name off the non-null queue.
func zipPlaceholder(placeholder, nonNull []string) []string {
	out := make([]string, len(placeholder))
	queue := 0
	for i, p := range placeholder {
		if p == nonNullPlaceholder {
			if queue < len(nonNull) {
				out[i] = nonNull[queue]
				queue++
			}
			continue
		}
		out[i] = p
	}
	return out
}

func readIndexedVector(data []byte) ([]string, []byte, error) {
	if len(data) < 4 {
		return nil, nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "index.drd truncated before vector length", nil)
	}
	length := binary.BigEndian.Uint32(data[:4])
	rest := data[4:]
	if uint32(len(rest)) < length {
		return nil, nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "index.drd truncated within vector", nil)
	}
	gi, err := container.DeserializeGenericIndexed(rest[:length])
	if err != nil {
		return nil, nil, err
	}
	return gi.Values(), rest[length:], nil
}

func readLengthPrefixedString(data []byte) (string, []byte, error) {
	if len(data) < 4 {
		return "", nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "index.drd truncated before string length", nil)
	}
	length := binary.BigEndian.Uint32(data[:4])
	rest := data[4:]
	if uint32(len(rest)) < length {
		return "", nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "index.drd truncated within string", nil)
	}
	return string(rest[:length]), rest[length:], nil
}
