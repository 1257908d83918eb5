package kafka

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		reusable bool
	}{
		{"no error", nil, 0, true},
		{"serialization", fmt.Errorf("%w: bad value", ErrSerialization), http.StatusBadRequest, true},
		{"invalid producer epoch", kafka.InvalidProducerEpoch, http.StatusBadGateway, false},
		{"out of order sequence", kafka.OutOfOrderSequenceNumber, http.StatusBadGateway, false},
		{"cluster authorization", kafka.ClusterAuthorizationFailed, http.StatusBadGateway, false},
		{"sasl authentication", kafka.SASLAuthenticationFailed, http.StatusBadGateway, false},
		{"request timed out", kafka.RequestTimedOut, http.StatusGatewayTimeout, false},
		{"context deadline", fmt.Errorf("write: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, false},
		{"network timeout", timeoutError{}, http.StatusGatewayTimeout, false},
		{"fenced by message", errors.New("Producer fenced by newer instance"), http.StatusBadGateway, false},
		{"message too large", kafka.MessageSizeTooLarge, http.StatusInternalServerError, false},
		{"unknown", errors.New("something broke"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr, reusable := ClassifyError(tt.err)
			assert.Equal(t, tt.reusable, reusable)
			if tt.status == 0 {
				assert.Nil(t, appErr)
				return
			}
			if assert.NotNil(t, appErr) {
				assert.Equal(t, tt.status, appErr.Status)
				if tt.err != nil {
					assert.ErrorIs(t, appErr, tt.err)
				}
			}
		})
	}
}

func TestClassifyWriteErrorsUsesWorstFailure(t *testing.T) {
	appErr, reusable := ClassifyError(kafka.WriteErrors{nil, kafka.RequestTimedOut, nil})
	assert.False(t, reusable)
	assert.Equal(t, http.StatusGatewayTimeout, appErr.Status)

	appErr, reusable = ClassifyError(kafka.WriteErrors{kafka.RequestTimedOut, kafka.TopicAuthorizationFailed})
	assert.False(t, reusable)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)

	appErr, _ = ClassifyError(kafka.WriteErrors{nil, nil})
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}
