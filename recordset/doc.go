// Package recordset decodes the compact binary record-set format.
//
// A record set shares one key for all of its values:
//
//	int     keyVersion
//	int     valueVersion
//	union   {null, string} projectId
//	union   {null, string} userId
//	string  sourceId
//	array<bytes> records, each element the binary encoding of one value record
//
// All primitives use the Avro binary encoding. The array is blocked: a
// non-zero count, that many elements, repeated until a zero count.
//
// A Decoder is reused across requests: its buffered reader and scratch buffer
// survive Reset, and the value codec is only swapped when the resolved value
// schema id changes. Records are decoded lazily and exactly once.
package recordset
