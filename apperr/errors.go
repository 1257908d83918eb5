package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error by the party at fault and the HTTP status it maps to.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidContent
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindEntityTooLarge
	KindServiceUnavailable
	KindBadGateway
	KindGatewayTimeout
)

// String returns the lower-case name of the kind, used as a metric label.
func (k Kind) String() string {
	switch k {
	case KindInvalidContent:
		return "invalid_content"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindEntityTooLarge:
		return "entity_too_large"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindBadGateway:
		return "bad_gateway"
	case KindGatewayTimeout:
		return "gateway_timeout"
	default:
		return "internal"
	}
}

// Error is a failure that is reported to the client as
// {"error": Code, "error_description": Message}.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string

	// Cause is the underlying error, never rendered to the client.
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same kind and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

// WithCause returns a copy of e that wraps cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

// New creates an Error with an explicit status.
func New(kind Kind, status int, code, message string) *Error {
	return &Error{Kind: kind, Status: status, Code: code, Message: message}
}

// InvalidContent reports a payload that is well-formed but does not match its schema.
func InvalidContent(message string) *Error {
	return New(KindInvalidContent, http.StatusUnprocessableEntity, "invalid_content", message)
}

// InvalidContentf is InvalidContent with a format string.
func InvalidContentf(format string, args ...interface{}) *Error {
	return InvalidContent(fmt.Sprintf(format, args...))
}

// BadRequest reports a client fault that is not a schema mismatch.
func BadRequest(code, message string) *Error {
	return New(KindBadRequest, http.StatusBadRequest, code, message)
}

func Unauthorized(code, message string) *Error {
	return New(KindUnauthorized, http.StatusUnauthorized, code, message)
}

func Forbidden(code, message string) *Error {
	return New(KindForbidden, http.StatusForbidden, code, message)
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, http.StatusNotFound, code, message)
}

func EntityTooLarge(message string) *Error {
	return New(KindEntityTooLarge, http.StatusRequestEntityTooLarge, "request_entity_too_large", message)
}

func ServiceUnavailable(code, message string) *Error {
	return New(KindServiceUnavailable, http.StatusServiceUnavailable, code, message)
}

func BadGateway(message string) *Error {
	return New(KindBadGateway, http.StatusBadGateway, "bad_gateway", message)
}

func GatewayTimeout(code, message string) *Error {
	return New(KindGatewayTimeout, http.StatusGatewayTimeout, code, message)
}

func Internal(code, message string) *Error {
	return New(KindInternal, http.StatusInternalServerError, code, message)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, 500 when err carries no Error.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}

// KindOf returns the kind of err, KindInternal when err carries no Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
