package kafka

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/aalemi-dev/kafka-gateway/apperr"
)

// Common Kafka error types used when classifying publish failures.
// These abstract away the underlying Kafka-specific error details.
var (
	// ErrSerialization is wrapped by every failure to serialize a record
	ErrSerialization = errors.New("serialization failed")

	// ErrPoolClosed is returned by Publish after Close
	ErrPoolClosed = errors.New("producer pool closed")

	// ErrConnectionFailed is returned when connection to Kafka cannot be established
	ErrConnectionFailed = errors.New("connection failed")

	// ErrAuthenticationFailed is returned when authentication fails
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrAuthorizationFailed is returned when authorization fails
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrTopicNotFound is returned when topic doesn't exist
	ErrTopicNotFound = errors.New("topic not found")

	// ErrMessageTooLarge is returned when message exceeds size limits
	ErrMessageTooLarge = errors.New("message too large")

	// ErrRequestTimedOut is returned when request times out
	ErrRequestTimedOut = errors.New("request timed out")

	// ErrProducerFenced is returned when producer is fenced
	ErrProducerFenced = errors.New("producer fenced")

	// ErrInvalidProducerEpoch is returned when producer epoch is invalid
	ErrInvalidProducerEpoch = errors.New("invalid producer epoch")

	// ErrOutOfOrderSequence is returned when sequence is out of order
	ErrOutOfOrderSequence = errors.New("out of order sequence")

	// ErrContextDeadlineExceeded is returned when context deadline is exceeded
	ErrContextDeadlineExceeded = errors.New("context deadline exceeded")
)

// Failure classes of a publish attempt.
const (
	failureNone = iota
	failureUnrecoverable
	failureTimeout
	failureSerialization
	failureOther
)

// ClassifyError maps a publish failure to the error reported to the client
// and reports whether the producer that returned it may be reused.
//
//   - fencing, out-of-order sequence, authorization and authentication
//     failures: 502, producer discarded
//   - timeouts: 504, producer discarded
//   - serialization failures: 400, producer reused
//   - anything else: 500, producer discarded
func ClassifyError(err error) (*apperr.Error, bool) {
	switch classify(err) {
	case failureNone:
		return nil, true
	case failureSerialization:
		return apperr.BadRequest("bad_serialization", "Cannot serialize message to Kafka").WithCause(err), true
	case failureUnrecoverable:
		return apperr.BadGateway("Kafka cannot be reached").WithCause(err), false
	case failureTimeout:
		return apperr.GatewayTimeout("kafka_timeout", "Cannot reach Kafka to send data").WithCause(err), false
	default:
		return apperr.Internal("kafka_send_failure", "Failed to send data to kafka").WithCause(err), false
	}
}

func classify(err error) int {
	if err == nil {
		return failureNone
	}
	if errors.Is(err, ErrSerialization) {
		return failureSerialization
	}

	// WriteErrors holds one entry per message; the most severe class wins
	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		worst := failureNone
		for _, e := range writeErrs {
			if e == nil {
				continue
			}
			if c := classify(e); severity(c) > severity(worst) {
				worst = c
			}
		}
		if worst != failureNone {
			return worst
		}
		return failureOther
	}

	var kerr kafka.Error
	if errors.As(err, &kerr) {
		switch kerr {
		case kafka.InvalidProducerEpoch,
			kafka.OutOfOrderSequenceNumber,
			kafka.TopicAuthorizationFailed,
			kafka.ClusterAuthorizationFailed,
			kafka.TransactionalIDAuthorizationFailed,
			kafka.SASLAuthenticationFailed:
			return failureUnrecoverable
		case kafka.RequestTimedOut:
			return failureTimeout
		}
		if kerr.Timeout() {
			return failureTimeout
		}
		return failureOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return failureTimeout
	}

	switch translateByErrorMessage(strings.ToLower(err.Error()), err) {
	case ErrProducerFenced, ErrInvalidProducerEpoch, ErrOutOfOrderSequence,
		ErrAuthenticationFailed, ErrAuthorizationFailed:
		return failureUnrecoverable
	case ErrRequestTimedOut, ErrContextDeadlineExceeded:
		return failureTimeout
	default:
		return failureOther
	}
}

func severity(class int) int {
	switch class {
	case failureUnrecoverable:
		return 4
	case failureTimeout:
		return 3
	case failureOther:
		return 2
	case failureSerialization:
		return 1
	default:
		return 0
	}
}

// translateByErrorMessage translates errors based on error message patterns
func translateByErrorMessage(errMsg string, originalErr error) error {
	switch {
	// Connection related
	case strings.Contains(errMsg, "connection refused"):
		return ErrConnectionFailed

	// Authentication and authorization
	case strings.Contains(errMsg, "sasl authentication failed"),
		strings.Contains(errMsg, "authentication failed"):
		return ErrAuthenticationFailed
	case strings.Contains(errMsg, "authorization failed"):
		return ErrAuthorizationFailed

	// Topic errors
	case strings.Contains(errMsg, "unknown topic"),
		strings.Contains(errMsg, "topic not found"):
		return ErrTopicNotFound

	// Message errors
	case strings.Contains(errMsg, "message too large"),
		strings.Contains(errMsg, "record too large"):
		return ErrMessageTooLarge

	// Producer errors
	case strings.Contains(errMsg, "producer fenced"):
		return ErrProducerFenced
	case strings.Contains(errMsg, "invalid producer epoch"):
		return ErrInvalidProducerEpoch
	case strings.Contains(errMsg, "out of order sequence"):
		return ErrOutOfOrderSequence

	// Timeout errors
	case strings.Contains(errMsg, "deadline exceeded"):
		return ErrContextDeadlineExceeded
	case strings.Contains(errMsg, "timed out"),
		strings.Contains(errMsg, "timeout"):
		return ErrRequestTimedOut

	default:
		// Return the original error if no pattern matches
		return originalErr
	}
}
