// internal/common/errors/errors.go

// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidSearchInput ErrorCode = "INVALID_SEARCH_INPUT"
	ErrCodeSearchCancelled    ErrorCode = "SEARCH_CANCELLED"

	// Degraded inside a search; surfaced only by health checks and tooling.
	ErrCodeSourceUnavailable       ErrorCode = "SOURCE_UNAVAILABLE"
	ErrCodeExpansionFailed         ErrorCode = "EXPANSION_FAILED"
	ErrCodeWebSearchTimeout        ErrorCode = "WEB_SEARCH_TIMEOUT"
	ErrCodeWebSearchQuotaExhausted ErrorCode = "WEB_SEARCH_QUOTA_EXHAUSTED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the error the StandardError was built from, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata adds a key to Metadata and returns e for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewInvalidSearchInputError rejects a job whose variables fail validation. Never retried.
func NewInvalidSearchInputError(details string) *StandardError {
	return newError(ErrCodeInvalidSearchInput, "Invalid search input", details, false, nil)
}

// NewSearchCancelledError reports a search abandoned because its deadline passed or the job was cancelled.
func NewSearchCancelledError(err error) *StandardError {
	return newError(ErrCodeSearchCancelled, "Search cancelled before completion", detailsOf(err), true, err)
}

func NewSourceUnavailableError(source string, err error) *StandardError {
	return newError(ErrCodeSourceUnavailable, "Search source unavailable", detailsOf(err), true, err).
		WithMetadata("source", source)
}

func NewExpansionFailedError(err error) *StandardError {
	return newError(ErrCodeExpansionFailed, "Query expansion failed", detailsOf(err), true, err)
}

func NewWebSearchTimeoutError(err error) *StandardError {
	return newError(ErrCodeWebSearchTimeout, "Web search request timed out", detailsOf(err), true, err)
}

func NewWebSearchQuotaExhaustedError(err error) *StandardError {
	return newError(ErrCodeWebSearchQuotaExhausted, "Web search daily quota exhausted", detailsOf(err), false, err)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Failed to connect to database", detailsOf(err), true, err)
}

func NewQueryExecutionFailedError(table string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Catalog query failed", detailsOf(err), true, err).
		WithMetadata("table", table)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Failed to connect to Elasticsearch", detailsOf(err), true, err)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query failed", detailsOf(err), true, err).
		WithMetadata("index", index)
}

func NewIndexNotFoundError(index string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Elasticsearch index not found", index, false, nil).
		WithMetadata("index", index)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", detailsOf(err), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes modelled in the process definition.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidSearchInput:            "INVALID_SEARCH_INPUT",
	ErrCodeSearchCancelled:               "SEARCH_CANCELLED",
	ErrCodeSourceUnavailable:             "SOURCE_UNAVAILABLE",
	ErrCodeExpansionFailed:               "EXPANSION_FAILED",
	ErrCodeWebSearchTimeout:              "WEB_SEARCH_TIMEOUT",
	ErrCodeWebSearchQuotaExhausted:       "WEB_SEARCH_QUOTA_EXHAUSTED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed:
		return 3

	case ErrCodeSearchCancelled,
		ErrCodeWebSearchTimeout,
		ErrCodeSourceUnavailable:
		return 2

	case ErrCodeExpansionFailed:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_EXECUTION"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "SEARCH_QUERY"):
		return "INDEX"
	case strings.Contains(codeStr, "WEB_SEARCH") || strings.Contains(codeStr, "EXPANSION"):
		return "EXTERNAL"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "SOURCE"):
		return "SEARCH"
	default:
		return "OTHER"
	}
}
