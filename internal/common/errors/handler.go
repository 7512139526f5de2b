// internal/common/errors/handler.go
package errors

import (
	"time"
)

// ErrorHandler turns pipeline errors into user guidance.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// Guidance is what the caller shows to a user after a failed operation.
type Guidance struct {
	Code      ErrorCode `json:"code"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Hint      string    `json:"hint"`
	Retryable bool      `json:"retryable"`
}

var hints = map[string]string{
	"UNREACHABLE":      "The document could not be fetched. Check that the URL opens in a private browser window and try again later.",
	"ACCESS_DENIED":    "The form is private. Allow responses from anyone with the link and disable sign-in requirements.",
	"UNEXPECTED_SHAPE": "The page was fetched but does not look like a public form. Use the form's view link.",
	"DELIVERY":         "A delivery attempt failed. The run continues; check the target endpoint.",
	"VALIDATION":       "The input was rejected. Fix the URL or schema and run again.",
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Describe normalizes err, logs it and returns guidance for the caller.
func (h *ErrorHandler) Describe(operation string, err error) Guidance {
	stdErr := h.normalizeError(err)
	category := GetErrorCategory(stdErr.Code)

	hint, ok := hints[category]
	if !ok {
		hint = "Unexpected failure. Re-run with --log-level debug for details."
	}

	h.logger.Error("operation failed", map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"errorCategory": category,
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
	})

	return Guidance{
		Code:      stdErr.Code,
		Category:  category,
		Message:   stdErr.Message,
		Hint:      hint,
		Retryable: stdErr.Retryable,
	}
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}
