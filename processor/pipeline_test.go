package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aalemi-dev/kafka-gateway/apperr"
	"github.com/aalemi-dev/kafka-gateway/auth"
)

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) CheckPermission(ctx context.Context, d *auth.EntityDetails, operation string) error {
	return m.Called(ctx, d, operation).Error(0)
}

func strPtr(s string) *string { return &s }

func identity(project, user, source string) *auth.EntityDetails {
	return &auth.EntityDetails{ProjectID: strPtr(project), UserID: strPtr(user), SourceID: strPtr(source)}
}

func entries(ids ...*auth.EntityDetails) Source {
	return func(yield func(Entry) error) error {
		for i, id := range ids {
			if err := yield(Entry{Key: i, Value: i * 10, Identity: id}); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestPipeline_ChecksEachIdentityOnce(t *testing.T) {
	checker := &mockChecker{}
	checker.On("CheckPermission", mock.Anything, mock.Anything, "POST battery").Return(nil)

	records, err := NewPipeline(true).Process(context.Background(), "battery", checker, entries(
		identity("p", "u1", "s"),
		identity("p", "u1", "s"),
		identity("p", "u2", "s"),
		identity("p", "u1", "s"),
		identity("p", "u2", "s"),
	))
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, r := range records {
		assert.Equal(t, i, r.Key)
		assert.Equal(t, i*10, r.Value)
	}
	checker.AssertNumberOfCalls(t, "CheckPermission", 2)
}

func TestPipeline_IgnoresSourceWhenNotChecked(t *testing.T) {
	checker := &mockChecker{}
	checker.On("CheckPermission", mock.Anything, mock.MatchedBy(func(d *auth.EntityDetails) bool {
		return d.SourceID == nil && *d.UserID == "u1"
	}), "POST battery").Return(nil)

	records, err := NewPipeline(false).Process(context.Background(), "battery", checker, entries(
		identity("p", "u1", "s1"),
		identity("p", "u1", "s2"),
	))
	require.NoError(t, err)
	assert.Len(t, records, 2)
	checker.AssertNumberOfCalls(t, "CheckPermission", 1)
}

func TestPipeline_PassesFreshDetails(t *testing.T) {
	shared := identity("p", "u1", "s")
	checker := &mockChecker{}
	checker.On("CheckPermission", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*auth.EntityDetails).Organization = "org"
		}).
		Return(nil)

	_, err := NewPipeline(true).Process(context.Background(), "battery", checker, entries(shared, shared))
	require.NoError(t, err)
	assert.Empty(t, shared.Organization)
}

func TestPipeline_RejectedIdentityReturnsNoRecords(t *testing.T) {
	forbidden := apperr.Forbidden("permission_mismatch", "No permission")
	checker := &mockChecker{}
	checker.On("CheckPermission", mock.Anything, mock.MatchedBy(func(d *auth.EntityDetails) bool {
		return *d.UserID == "u1"
	}), mock.Anything).Return(nil)
	checker.On("CheckPermission", mock.Anything, mock.Anything, mock.Anything).Return(forbidden)

	records, err := NewPipeline(true).Process(context.Background(), "battery", checker, entries(
		identity("p", "u1", "s"),
		identity("p", "u2", "s"),
		identity("p", "u1", "s"),
	))
	assert.ErrorIs(t, err, forbidden)
	assert.Nil(t, records)
}

func TestPipeline_SourceErrorReturnsNoRecords(t *testing.T) {
	checker := &mockChecker{}
	checker.On("CheckPermission", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mapping := errors.New("mapping failed")

	records, err := NewPipeline(true).Process(context.Background(), "battery", checker, func(yield func(Entry) error) error {
		if err := yield(Entry{Identity: identity("p", "u", "s")}); err != nil {
			return err
		}
		return mapping
	})
	assert.ErrorIs(t, err, mapping)
	assert.Nil(t, records)
}

func TestPipeline_ManyRecordsDoNotBlock(t *testing.T) {
	checker := &mockChecker{}
	checker.On("CheckPermission", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ids := make([]*auth.EntityDetails, 10*pendingChecks)
	for i := range ids {
		ids[i] = identity("p", "u", "s")
	}
	records, err := NewPipeline(true).Process(context.Background(), "battery", checker, entries(ids...))
	require.NoError(t, err)
	assert.Len(t, records, len(ids))
	checker.AssertNumberOfCalls(t, "CheckPermission", 1)
}
