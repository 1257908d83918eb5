package avro

import (
	"fmt"

	"github.com/linkedin/goavro/v2"
)

// Codec pairs a parsed schema with the goavro codec that encodes its values.
type Codec struct {
	schema *Schema
	codec  *goavro.Codec
}

// NewCodec compiles a goavro codec for a top-level schema.
func NewCodec(schema *Schema) (*Codec, error) {
	if schema.Text() == "" {
		return nil, fmt.Errorf("%w: schema has no source text", ErrInvalidSchema)
	}
	c, err := goavro.NewCodec(schema.Text())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return &Codec{schema: schema, codec: c}, nil
}

// ParseCodec parses schema text and compiles its codec.
func ParseCodec(text string) (*Codec, error) {
	s, err := ParseSchema(text)
	if err != nil {
		return nil, err
	}
	return NewCodec(s)
}

// Schema returns the parsed schema of the codec.
func (c *Codec) Schema() *Schema {
	return c.schema
}

// Encode appends the binary encoding of native to buf.
func (c *Codec) Encode(buf []byte, native interface{}) ([]byte, error) {
	out, err := c.codec.BinaryFromNative(buf, native)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return out, nil
}

// Decode reads one value from data and returns it with the unread remainder.
func (c *Codec) Decode(data []byte) (interface{}, []byte, error) {
	native, rest, err := c.codec.NativeFromBinary(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return native, rest, nil
}
