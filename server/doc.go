// Package server exposes the gateway over HTTP using a chi router.
//
// Routes:
//
//	GET     /                 empty JSON object
//	GET     /health           {"status": "UP"|"DOWN", "kafka": ...}
//	GET     /topics           names of all visible topics
//	GET     /topics/{topic}   partition layout of a topic
//	POST    /topics/{topic}   publish Avro JSON or a binary record set
//	OPTIONS /topics/{topic}   accepted content types and encodings
//
// Every /topics route except OPTIONS requires a bearer token. POST requests
// pass through, in order: authentication, a topic existence check,
// decompression (Content-Encoding gzip or lzfse) and a body size limit
// applied after decompression.
//
// Errors are rendered as
//
//	{"error": "code", "error_description": "message"}
//
// using the status and code of the *apperr.Error returned by the failing
// component. Any other error becomes a 500 with code "unknown".
package server
