package schema_registry

import (
	"encoding/binary"
	"fmt"

	"github.com/aalemi-dev/kafka-gateway/avro"
)

// AvroSerializer encodes goavro native values with a registered schema and
// prepends the Confluent wire format header. It satisfies kafka.Serializer.
type AvroSerializer struct {
	id    int
	codec *avro.Codec
}

// NewAvroSerializer creates a serializer for a resolved schema.
func NewAvroSerializer(schema *ParsedSchema) *AvroSerializer {
	return &AvroSerializer{id: schema.ID, codec: schema.Codec}
}

// SchemaID returns the registry id written in every header.
func (s *AvroSerializer) SchemaID() int {
	return s.id
}

// Serialize encodes data as [magic byte][schema id][avro binary].
func (s *AvroSerializer) Serialize(data interface{}) ([]byte, error) {
	out, err := s.codec.Encode(EncodeSchemaID(s.id), data)
	if err != nil {
		return nil, fmt.Errorf("schema %d: %w", s.id, err)
	}
	return out, nil
}

// EncodeSchemaID encodes a schema ID in the Confluent wire format
// Format: [magic_byte][schema_id]
// - magic_byte: 0x0 (1 byte)
// - schema_id: 4 bytes (big-endian)
func EncodeSchemaID(schemaID int) []byte {
	buf := make([]byte, 5, 64)
	buf[0] = 0x0                                          // Magic byte
	binary.BigEndian.PutUint32(buf[1:], uint32(schemaID)) //nolint:gosec
	return buf
}

// DecodeSchemaID decodes a schema ID from the Confluent wire format
// Returns the schema ID and the remaining payload (after the 5-byte header)
func DecodeSchemaID(data []byte) (int, []byte, error) {
	if len(data) < 5 {
		return 0, nil, fmt.Errorf("data too short: expected at least 5 bytes, got %d", len(data))
	}

	if data[0] != 0x0 {
		return 0, nil, fmt.Errorf("invalid magic byte: expected 0x0, got 0x%x", data[0])
	}

	schemaID := int(binary.BigEndian.Uint32(data[1:5]))
	payload := data[5:]

	return schemaID, payload, nil
}
