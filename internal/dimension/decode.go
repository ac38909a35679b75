package dimension

import (
	"encoding/binary"

	"github.com/soltixdb/segmentmerge/internal/bitmap"
	"github.com/soltixdb/segmentmerge/internal/container"
	mergeerrors "github.com/soltixdb/segmentmerge/internal/errors"
	"github.com/soltixdb/segmentmerge/internal/encoding"
)

// DecodedColumn is the reconstructed view of a dimension column payload
// (the bytes following a column.Descriptor), used when reopening a
// built segment as a merge input for a later tier.
type DecodedColumn struct {
	Dictionary *Dictionary
	// RowValues holds each row's resolved value(s), in output row order;
	// a nil/empty entry means that row was null for this dimension.
	RowValues [][]string
	Bitmaps   []*bitmap.Bitmap
}

// DecodePayload reverses WriteTo's payload layout: a length-prefixed
// dictionary, then a length-prefixed value stream, then a length-prefixed
// (possibly empty) bitmap section.
func DecodePayload(payload []byte, hasNull, multiValue bool) (*DecodedColumn, error) {
	dictBytes, rest, err := readLengthPrefixed(payload)
	if err != nil {
		return nil, err
	}
	gi, err := container.DeserializeGenericIndexed(dictBytes)
	if err != nil {
		return nil, err
	}
	values := gi.Values()
	realValues := values
	if hasNull && len(values) > 0 {
		realValues = values[1:]
	}
	dict := NewDictionary(realValues, hasNull)

	valueStream, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return nil, err
	}
	rowValues, err := decodeValueStream(valueStream, dict, multiValue)
	if err != nil {
		return nil, err
	}

	bitmapSection, _, err := readLengthPrefixed(rest)
	if err != nil {
		return nil, err
	}
	bitmaps, err := decodeBitmapSection(bitmapSection)
	if err != nil {
		return nil, err
	}

	return &DecodedColumn{Dictionary: dict, RowValues: rowValues, Bitmaps: bitmaps}, nil
}

func decodeValueStream(data []byte, dict *Dictionary, multiValue bool) ([][]string, error) {
	if len(data) < 4 {
		return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "value stream too short for row count", nil)
	}
	rowCount := binary.LittleEndian.Uint32(data[:4])
	data = data[4:]

	rows := make([][]string, rowCount)
	for row := uint32(0); row < rowCount; row++ {
		if multiValue {
			n, read := encoding.ReadVarint(data)
			if read == 0 {
				return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "truncated multi-valued dimension stream", nil)
			}
			data = data[read:]
			vals := make([]string, 0, n)
			for i := uint64(0); i < n; i++ {
				id, read := encoding.ReadVarint(data)
				if read == 0 {
					return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "truncated multi-valued dimension stream", nil)
				}
				data = data[read:]
				if dict.HasNull() && id == 0 {
					continue
				}
				vals = append(vals, dict.ValueAt(int(id)))
			}
			rows[row] = vals
			continue
		}

		id, read := encoding.ReadVarint(data)
		if read == 0 {
			return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "truncated single-valued dimension stream", nil)
		}
		data = data[read:]
		if len(data) < 1 {
			return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "dimension stream missing null tag", nil)
		}
		nullTag := data[0]
		data = data[1:]
		if nullTag == 1 || (dict.HasNull() && id == 0) {
			continue
		}
		rows[row] = []string{dict.ValueAt(int(id))}
	}
	return rows, nil
}

func decodeBitmapSection(data []byte) ([]*bitmap.Bitmap, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < 4 {
		return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "bitmap section too short for count", nil)
	}
	count := binary.LittleEndian.Uint32(data[:4])
	data = data[4:]

	bitmaps := make([]*bitmap.Bitmap, count)
	for i := uint32(0); i < count; i++ {
		if len(data) < 4 {
			return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "bitmap section too short for entry length", nil)
		}
		length := binary.LittleEndian.Uint32(data[:4])
		data = data[4:]
		if uint32(len(data)) < length {
			return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "bitmap section truncated within entry", nil)
		}
		b, err := bitmap.Deserialize(data[:length])
		if err != nil {
			return nil, err
		}
		bitmaps[i] = b
		data = data[length:]
	}
	return bitmaps, nil
}

func readLengthPrefixed(data []byte) ([]byte, []byte, error) {
	if len(data) < 4 {
		return nil, nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "truncated length-prefixed section", nil)
	}
	length := binary.LittleEndian.Uint32(data[:4])
	rest := data[4:]
	if uint32(len(rest)) < length {
		return nil, nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "truncated length-prefixed section body", nil)
	}
	return rest[:length], rest[length:], nil
}
