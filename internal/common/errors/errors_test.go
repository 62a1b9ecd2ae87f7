// internal/common/errors/errors_test.go
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_UnwrapsCause(t *testing.T) {
	err := NewSearchCancelledError(context.DeadlineExceeded)
	wrapped := fmt.Errorf("handler: %w", err)

	assert.True(t, stderrors.Is(wrapped, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "SEARCH_CANCELLED")
	assert.Contains(t, err.Error(), "deadline exceeded")
}

func TestNormalize(t *testing.T) {
	std := NewInvalidSearchInputError("query is required")
	assert.Same(t, std, Normalize(fmt.Errorf("validate: %w", std)))

	internal := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, internal.Code)
	assert.Equal(t, "boom", internal.Details)
	assert.False(t, internal.Retryable)
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeInvalidSearchInput, 0},
		{ErrCodeIndexNotFound, 0},
		{ErrCodeWebSearchQuotaExhausted, 0},
		{ErrCodeSearchCancelled, 2},
		{ErrCodeWebSearchTimeout, 2},
		{ErrCodeExpansionFailed, 1},
		{ErrCodeDatabaseConnectionFailed, 3},
		{ErrCodeSearchQueryFailed, 3},
		{ErrCodeInternal, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetRetryCount(tt.code), string(tt.code))
		assert.Equal(t, tt.want > 0, IsRetryableErrorCode(tt.code), string(tt.code))
	}
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewQueryExecutionFailedError("esg_documents", stderrors.New("syntax error")))

	assert.Equal(t, "QUERY_EXECUTION_FAILED", bpmn.Code)
	assert.Equal(t, 3, bpmn.Retries)
	assert.True(t, bpmn.Retryable)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "QUERY_EXECUTION_FAILED", vars["errorCode"])
	assert.Equal(t, "QUERY_EXECUTION_FAILED", vars["originalErrorCode"])
	assert.Equal(t, "esg_documents", vars["table"])
	assert.Equal(t, "syntax error", vars["errorDetails"])
}

func TestConvertToBPMNError_NonRetryableHasNoRetries(t *testing.T) {
	bpmn := ConvertToBPMNError(NewInvalidSearchInputError("maxResults must be >= 1"))

	assert.Equal(t, "INVALID_SEARCH_INPUT", bpmn.Code)
	assert.Zero(t, bpmn.Retries)
	assert.False(t, bpmn.Retryable)
}

func TestConvertToBPMNError_UnknownCodePassesThrough(t *testing.T) {
	bpmn := ConvertToBPMNError(&StandardError{Code: "SOMETHING_NEW", Message: "m", Retryable: true})
	assert.Equal(t, "SOMETHING_NEW", bpmn.Code)
	assert.Zero(t, bpmn.Retries)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidSearchInput))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryExecutionFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseConnectionFailed))
	assert.Equal(t, "INDEX", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "INDEX", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "EXTERNAL", GetErrorCategory(ErrCodeWebSearchTimeout))
	assert.Equal(t, "EXTERNAL", GetErrorCategory(ErrCodeExpansionFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchCancelled))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSourceUnavailable))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestRemainingRetries(t *testing.T) {
	job := func(retries int32) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: retries}}
	}

	assert.Equal(t, int32(2), RemainingRetries(job(3), 3))
	assert.Equal(t, int32(2), RemainingRetries(job(10), 2))
	assert.Equal(t, int32(0), RemainingRetries(job(1), 3))
	assert.Equal(t, int32(0), RemainingRetries(job(0), 3))
}

func TestWithMetadata(t *testing.T) {
	err := NewSourceUnavailableError("external-web", nil).WithMetadata("attempt", 2)
	require.NotNil(t, err.Metadata)
	assert.Equal(t, "external-web", err.Metadata["source"])
	assert.Equal(t, 2, err.Metadata["attempt"])
	assert.True(t, err.Retryable)
}
