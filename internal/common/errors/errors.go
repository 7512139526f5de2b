// Package errors provides the standardized error kinds surfaced by the extraction and delivery pipeline.
package errors

import (
	stderrors "errors"
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
	// Retrieval
	ErrCodeRelayExhausted   ErrorCode = "RELAY_EXHAUSTED"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// Extraction
	ErrCodePatternNotFound  ErrorCode = "PATTERN_NOT_FOUND"
	ErrCodeMalformedPayload ErrorCode = "MALFORMED_PAYLOAD"
	ErrCodeEmptySchema      ErrorCode = "EMPTY_SCHEMA"

	// Delivery
	ErrCodeSubmissionFailed ErrorCode = "SUBMISSION_FAILED"

	// Input validation
	ErrCodeInvalidTargetURL ErrorCode = "INVALID_TARGET_URL"
	ErrCodeInvalidSchema    ErrorCode = "INVALID_SCHEMA"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches any StandardError carrying the same code, so the sentinel kinds below work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinel kinds for errors.Is comparisons.
var (
	ErrRelayExhausted   = &StandardError{Code: ErrCodeRelayExhausted}
	ErrPermissionDenied = &StandardError{Code: ErrCodePermissionDenied}
	ErrPatternNotFound  = &StandardError{Code: ErrCodePatternNotFound}
	ErrMalformedPayload = &StandardError{Code: ErrCodeMalformedPayload}
	ErrEmptySchema      = &StandardError{Code: ErrCodeEmptySchema}
	ErrSubmissionFailed = &StandardError{Code: ErrCodeSubmissionFailed}
	ErrInvalidTargetURL = &StandardError{Code: ErrCodeInvalidTargetURL}
	ErrInvalidSchema    = &StandardError{Code: ErrCodeInvalidSchema}
)

// ==========================
// 2. Error Constructors
// ==========================

// NewRelayExhaustedError reports that no relay produced a usable document.
func NewRelayExhaustedError(targetURL string, attempts int, lastErr error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRelayExhausted,
		Message:   "Unable to fetch document through any relay",
		Details:   fmt.Sprintf("url: %s, attempts: %d", targetURL, attempts),
		Retryable: true,
		Metadata:  map[string]interface{}{"attempts": attempts},
		Timestamp: time.Now().UTC(),
		Cause:     lastErr,
	}
}

// NewPermissionDeniedError reports an access-restricted document.
func NewPermissionDeniedError(targetURL, relay string) *StandardError {
	return &StandardError{
		Code:      ErrCodePermissionDenied,
		Message:   "Document is private or requires sign-in",
		Details:   fmt.Sprintf("url: %s, relay: %s", targetURL, relay),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPatternNotFoundError reports a document without the embedded data assignment.
func NewPatternNotFoundError(marker string) *StandardError {
	return &StandardError{
		Code:      ErrCodePatternNotFound,
		Message:   "Embedded data blob not found in document",
		Details:   fmt.Sprintf("marker: %s", marker),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedPayloadError reports an embedded blob that could not be decoded.
func NewMalformedPayloadError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedPayload,
		Message:   "Embedded data blob could not be decoded",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewEmptySchemaError reports a decoded blob without the question list.
func NewEmptySchemaError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptySchema,
		Message:   "Document appears to be empty or closed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionFailedError reports a single failed delivery attempt.
func NewSubmissionFailedError(target string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionFailed,
		Message:   "Delivery attempt failed",
		Details:   fmt.Sprintf("target: %s, error: %s", target, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewInvalidTargetURLError reports a URL that cannot be normalized.
func NewInvalidTargetURLError(rawURL, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTargetURL,
		Message:   "Target URL is not a recognizable form URL",
		Details:   fmt.Sprintf("url: %q, reason: %s", rawURL, reason),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidSchemaError reports a caller-supplied schema that fails validation.
func NewInvalidSchemaError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSchema,
		Message:   "Field schema is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError extracts the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the error code in err's chain, or "INTERNAL_ERROR".
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return "INTERNAL_ERROR"
}

// IsRetryableErrorCode reports whether retrying with a different input may help.
func IsRetryableErrorCode(code ErrorCode) bool {
	return code == ErrCodeRelayExhausted
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeRelayExhausted:
		return "UNREACHABLE"
	case code == ErrCodePermissionDenied:
		return "ACCESS_DENIED"
	case code == ErrCodePatternNotFound || code == ErrCodeMalformedPayload || code == ErrCodeEmptySchema:
		return "UNEXPECTED_SHAPE"
	case strings.Contains(codeStr, "SUBMISSION"):
		return "DELIVERY"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
