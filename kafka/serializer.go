package kafka

import (
	"fmt"
)

// Serializer defines the interface for serializing a record key or value
// before publishing to Kafka. Implementations provide the wire format, for
// example Avro with a schema registry header.
type Serializer interface {
	// Serialize converts the input data to a byte slice
	Serialize(data interface{}) ([]byte, error)
}

// BytesSerializer passes []byte and string data through unchanged.
type BytesSerializer struct{}

// Serialize returns data as bytes.
func (BytesSerializer) Serialize(data interface{}) ([]byte, error) {
	switch v := data.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("BytesSerializer: cannot serialize %T", data)
	}
}

// serialize runs s and marks any failure as a serialization error.
func serialize(s Serializer, data interface{}) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: no serializer configured", ErrSerialization)
	}
	b, err := s.Serialize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return b, nil
}
