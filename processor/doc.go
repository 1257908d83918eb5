// Package processor turns request bodies into authorized batches of Kafka
// records.
//
// Two payload formats are supported. AvroProcessor reads Avro JSON: the
// client names its key and value schemas by registry id or by schema text,
// every record is validated against those schemas and converted to the latest
// schema registered for the topic. BinaryConverter reads binary record sets
// whose header selects registered schema versions and carries the identity
// shared by all records.
//
// Both formats feed a Pipeline. While records are mapped, a second goroutine
// authorizes the identity of each record; every distinct (project, user,
// source) identity is checked once. The first mapping or authorization error
// aborts the request and no records are returned.
//
// Identity rules:
//   - a record without a project uses the default project of the caller
//   - a binary record set without a user uses the token subject
//   - source ids are only authorized when CheckSourceID is enabled
package processor
