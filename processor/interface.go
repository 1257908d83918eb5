package processor

import (
	"context"
	"io"

	"github.com/aalemi-dev/kafka-gateway/auth"
	"github.com/aalemi-dev/kafka-gateway/kafka"
	"github.com/aalemi-dev/kafka-gateway/schema_registry"
)

// RecordProcessor turns a request body into an authorized batch of records.
//
// This interface is implemented by *AvroProcessor for Avro JSON payloads and
// by *BinaryConverter for binary record sets.
type RecordProcessor interface {
	// Process reads body for topic on behalf of caller. Failures are
	// *apperr.Error values; no records are returned unless every record
	// identity was authorized.
	Process(ctx context.Context, topic string, caller *auth.Auth, body io.Reader) (*Result, error)
}

// SchemaSource resolves registry schemas.
//
// This interface is implemented by *schema_registry.Retriever.
type SchemaSource interface {
	BySubjectAndID(ctx context.Context, topic string, ofValue bool, id int) (*schema_registry.ParsedSchema, error)
	BySubjectAndVersion(ctx context.Context, topic string, ofValue bool, version int) (*schema_registry.ParsedSchema, error)
}

// Result is a processed payload. The schema ids are those the records are
// published with.
type Result struct {
	KeySchemaID   int `json:"key_schema_id"`
	ValueSchemaID int `json:"value_schema_id"`

	Batch kafka.Batch `json:"-"`
}

func newResult(topic string, key, value *schema_registry.ParsedSchema, records []kafka.Record) *Result {
	return &Result{
		KeySchemaID:   key.ID,
		ValueSchemaID: value.ID,
		Batch: kafka.Batch{
			Topic:           topic,
			KeySerializer:   schema_registry.NewAvroSerializer(key),
			ValueSerializer: schema_registry.NewAvroSerializer(value),
			Records:         records,
		},
	}
}

var (
	_ RecordProcessor = (*AvroProcessor)(nil)
	_ RecordProcessor = (*BinaryConverter)(nil)
	_ SchemaSource    = (*schema_registry.Retriever)(nil)
)
