package avro

import "errors"

var (
	// ErrInvalidSchema is returned when a schema text cannot be parsed.
	ErrInvalidSchema = errors.New("invalid avro schema")

	// ErrEncode is returned when a native value cannot be encoded with a codec.
	ErrEncode = errors.New("avro encoding failed")

	// ErrDecode is returned when binary data cannot be decoded with a codec.
	ErrDecode = errors.New("avro decoding failed")
)
