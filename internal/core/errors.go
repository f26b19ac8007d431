package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatExtraction ErrorCategory = "extraction" // Media feature extraction failed
	ErrCatModel      ErrorCategory = "model"      // Generative model call failed
	ErrCatTimeout    ErrorCategory = "timeout"    // Operation timed out
	ErrCatRateLimit  ErrorCategory = "rate_limit" // API rate limited
	ErrCatAuth       ErrorCategory = "auth"       // Authentication failure
	ErrCatNetwork    ErrorCategory = "network"    // Network connectivity
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrExtraction creates a feature extraction error. Unreadable media does not
// get better on retry.
func ErrExtraction(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatExtraction,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrModel creates a model call error.
func ErrModel(code, message string, retryable bool) *DomainError {
	return &DomainError{
		Category:  ErrCatModel,
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}
}

// ErrTimeout creates a timeout error.
func ErrTimeout(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatTimeout,
		Code:      "TIMEOUT",
		Message:   message,
		Retryable: true,
	}
}

// ErrRateLimit creates a rate limit error.
func ErrRateLimit(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatRateLimit,
		Code:      "RATE_LIMITED",
		Message:   message,
		Retryable: true,
	}
}

// ErrAuth creates an authentication error.
func ErrAuth(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatAuth,
		Code:      "AUTH_FAILED",
		Message:   message,
		Retryable: false,
	}
}

// ErrNetwork creates a network error.
func ErrNetwork(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatNetwork,
		Code:      "NETWORK",
		Message:   message,
		Retryable: true,
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category:  ErrCatNotFound,
		Code:      "NOT_FOUND",
		Message:   fmt.Sprintf("%s not found: %s", resource, id),
		Retryable: false,
	}
}

// ErrUnsupportedType creates the error returned for content without an analyzer.
func ErrUnsupportedType(ct ContentType) *DomainError {
	return &DomainError{
		Category:  ErrCatValidation,
		Code:      CodeUnsupportedType,
		Message:   MsgUnsupportedType,
		Retryable: false,
		Details:   map[string]interface{}{"content_type": string(ct)},
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// Message returns the human readable part of err, without the category and
// code prefix that DomainError.Error adds.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var domErr *DomainError
	if errors.As(err, &domErr) {
		if domErr.Cause != nil {
			return fmt.Sprintf("%s: %v", domErr.Message, domErr.Cause)
		}
		return domErr.Message
	}
	return err.Error()
}

// Predefined error codes
const (
	CodeUnsupportedType = "UNSUPPORTED_CONTENT_TYPE"
	CodeEmptyInput      = "EMPTY_INPUT"
	CodeInvalidConfig   = "INVALID_CONFIG"
	CodeInvalidPreset   = "INVALID_PRESET"
	CodeTooLarge        = "FILE_TOO_LARGE"

	// Extraction error codes
	CodeMetadataFailed   = "METADATA_FAILED"
	CodeFramesFailed     = "FRAMES_FAILED"
	CodeTranscribeFailed = "TRANSCRIBE_FAILED"
	CodeDocumentFailed   = "DOCUMENT_FAILED"
	CodeNoDocumentText   = "NO_DOCUMENT_TEXT"
	CodeToolMissing      = "TOOL_MISSING"

	// Model error codes
	CodeModelFailed   = "MODEL_FAILED"
	CodeEmptyResponse = "EMPTY_RESPONSE"
	CodeBlocked       = "RESPONSE_BLOCKED"
	CodePanic         = "ANALYZER_PANIC"
)

// MsgUnsupportedType is the error text carried by verdicts for content types
// without a registered analyzer.
const MsgUnsupportedType = "unsupported content type"
