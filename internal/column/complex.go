package column

import (
	"sync"

	"github.com/soltixdb/segmentmerge/internal/container"
	mergeerrors "github.com/soltixdb/segmentmerge/internal/errors"
)

// ComplexSerde serializes an ordered list of complex-metric values (e.g.
// a sketch or histogram type) for one column name-keyed type.
type ComplexSerde interface {
	TypeName() string
	Serialize(values []interface{}) ([]byte, error)
	Deserialize(data []byte, count int) ([]interface{}, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ComplexSerde)
)

// RegisterSerde makes a complex-metric serde available by its type name.
// Call during process init; registration is not safe to race with lookups
// from concurrent merges sharing the same process.
func RegisterSerde(serde ComplexSerde) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[serde.TypeName()] = serde
}

// GetSerdeForType looks up a registered complex serde by type name.
func GetSerdeForType(typeName string) (ComplexSerde, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	serde, ok := registry[typeName]
	return serde, ok
}

// complexSerializer buffers values for one complex metric column and
// delegates their serialization to the registered serde at flush time.
type complexSerializer struct {
	typeName string
	values   []interface{}
	opened   bool
}

// NewComplexSerializer builds a COMPLEX column serializer for typeName.
// The registry lookup happens lazily, at the first Serialize call, per
// the contract that unknown complex types fail at serialize time rather
// than at construction.
func NewComplexSerializer(typeName string) Serializer {
	return &complexSerializer{typeName: typeName}
}

func (s *complexSerializer) Open() error {
	s.opened = true
	s.values = nil
	return nil
}

func (s *complexSerializer) Serialize(value interface{}) error {
	if !s.opened {
		return mergeerrors.InvalidInput("serialize called before open", map[string]interface{}{"typeName": s.typeName})
	}
	if _, ok := GetSerdeForType(s.typeName); !ok {
		return mergeerrors.UnknownComplexType(s.typeName)
	}
	s.values = append(s.values, value)
	return nil
}

func (s *complexSerializer) payload() ([]byte, error) {
	serde, ok := GetSerdeForType(s.typeName)
	if !ok {
		return nil, mergeerrors.UnknownComplexType(s.typeName)
	}
	return serde.Serialize(s.values)
}

func (s *complexSerializer) SerializedSize() (int64, error) {
	data, err := s.payload()
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (s *complexSerializer) WriteTo(cw *container.Writer, name string) error {
	data, err := s.payload()
	if err != nil {
		return err
	}
	blob, err := EncodeDescriptorAndPayload(Descriptor{
		ValueType:       ValueTypeComplex,
		ComplexTypeName: s.typeName,
		RowCount:        int64(len(s.values)),
	}, data)
	if err != nil {
		return err
	}
	if err := cw.Add(name, blob); err != nil {
		return mergeerrors.Wrap(mergeerrors.KindContainerIO, "write complex column", err)
	}
	return nil
}
