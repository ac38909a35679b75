package container

import (
	"encoding/binary"
	"fmt"

	"github.com/soltixdb/segmentmerge/internal/errors"
)

// genericIndexedVersion is the fixed header version byte for
// GenericIndexed<string> blobs.
const genericIndexedVersion byte = 1

// GenericIndexed is a random-access serialization of a sequence of
// byte-strings: a fixed header (version byte, element count) followed by
// a cumulative offset table and the concatenated UTF-8 payload.
type GenericIndexed struct {
	values []string
}

// NewGenericIndexed wraps values for serialization, preserving order.
func NewGenericIndexed(values []string) *GenericIndexed {
	return &GenericIndexed{values: values}
}

// Len returns the number of elements.
func (g *GenericIndexed) Len() int {
	return len(g.values)
}

// Get returns the element at position i.
func (g *GenericIndexed) Get(i int) string {
	return g.values[i]
}

// Values returns the full backing slice.
func (g *GenericIndexed) Values() []string {
	return g.values
}

// Serialize produces the fixed-header byte form: version byte, big-endian
// int32 element count, (count+1) big-endian int32 cumulative offsets into
// the payload, then the concatenated UTF-8 payload itself.
func (g *GenericIndexed) Serialize() []byte {
	count := len(g.values)

	payload := make([]byte, 0, count*8)
	offsets := make([]int32, count+1)
	offsets[0] = 0
	for i, v := range g.values {
		payload = append(payload, []byte(v)...)
		offsets[i+1] = int32(len(payload))
	}

	out := make([]byte, 0, 1+4+4*(count+1)+len(payload))
	out = append(out, genericIndexedVersion)
	out = binary.BigEndian.AppendUint32(out, uint32(count))
	for _, off := range offsets {
		out = binary.BigEndian.AppendUint32(out, uint32(off))
	}
	out = append(out, payload...)

	return out
}

// DeserializeGenericIndexed parses a blob previously produced by Serialize.
func DeserializeGenericIndexed(data []byte) (*GenericIndexed, error) {
	if len(data) < 5 {
		return nil, errors.ContainerIO("read generic-indexed header", fmt.Errorf("blob too short: %d bytes", len(data)))
	}
	if data[0] != genericIndexedVersion {
		return nil, errors.ContainerIO("read generic-indexed header", fmt.Errorf("unsupported version byte %d", data[0]))
	}

	count := int(binary.BigEndian.Uint32(data[1:5]))
	offsetsStart := 5
	offsetsEnd := offsetsStart + 4*(count+1)
	if len(data) < offsetsEnd {
		return nil, errors.ContainerIO("read generic-indexed offsets", fmt.Errorf("blob too short for %d offsets", count+1))
	}

	offsets := make([]int32, count+1)
	for i := range offsets {
		offsets[i] = int32(binary.BigEndian.Uint32(data[offsetsStart+4*i : offsetsStart+4*i+4]))
	}

	payload := data[offsetsEnd:]
	values := make([]string, count)
	for i := 0; i < count; i++ {
		start, end := offsets[i], offsets[i+1]
		if int(end) > len(payload) || start > end {
			return nil, errors.ContainerIO("read generic-indexed payload", fmt.Errorf("offset range [%d,%d) out of bounds", start, end))
		}
		values[i] = string(payload[start:end])
	}

	return &GenericIndexed{values: values}, nil
}
