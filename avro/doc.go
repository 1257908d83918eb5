// Package avro maps dynamically typed JSON onto Avro schemas.
//
// ParseSchema validates registry JSON with hamba/avro and converts it into a
// walkable *Schema; goavro compiles the same text into a Codec for binary
// encoding. MapToSchema converts a value
// decoded with json.Decoder.UseNumber into goavro native form, resolving
// unions, defaults and enum symbols on the way. Every failure is an
// *apperr.Error whose message ends in the rendered ParsingContext, for example
//
//	Cannot map non-number string "abc" to double (context ARRAY { records[0]: MAP { value: RECORD { Acceleration.x } } })
package avro
