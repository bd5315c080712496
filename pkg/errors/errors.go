// Package errors provides structured error handling for the application.
// Every failure that leaves a client or store boundary is an *AppError whose
// Message is safe to show to the user.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorCode represents an error code
type ErrorCode string

// Error codes for the failure taxonomy of the client core
const (
	// Bad or insufficient input (fewer than two ingredients, malformed email...)
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Missing or expired session
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Non-2xx HTTP responses and network failures
	CodeTransport ErrorCode = "TRANSPORT_ERROR"

	// Malformed server payloads
	CodeDecode ErrorCode = "DECODE_ERROR"

	// Anything else
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// User-facing messages for mapped HTTP statuses
const (
	MessageSessionExpired = "Your session has expired. Please sign in again."
	MessageForbidden      = "You do not have permission to perform this action."
	MessageRateLimited    = "Too many requests. Please wait a moment and try again."
	MessageServerError    = "The server encountered an error. Please try again later."
	MessageNetwork        = "Could not reach the server. Check your connection."
)

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Status     int                    `json:"status,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status that best describes the error. Transport
// errors report the status the server answered with.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeValidationFailed:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTransport:
		if e.Status != 0 {
			return e.Status
		}
		return http.StatusBadGateway
	case CodeDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// NewValidationError creates a validation error carrying a displayable message
func NewValidationError(message string) *AppError {
	return NewAppError(CodeValidationFailed, message, "")
}

// NewAuthError creates an authentication error
func NewAuthError(message string) *AppError {
	if message == "" {
		message = "You need to sign in to continue."
	}
	return NewAppError(CodeUnauthorized, message, "")
}

// NewTransportError creates a transport error for the given HTTP status.
// A zero status means the request never got an answer.
func NewTransportError(status int, message string) *AppError {
	err := NewAppError(CodeTransport, message, "")
	err.Status = status
	if status != 0 {
		err.WithMetadata("status", status)
	}
	return err
}

// NewNetworkError wraps a failure to reach the server
func NewNetworkError(cause error) *AppError {
	return NewTransportError(0, MessageNetwork).WithCause(cause)
}

// NewDecodeError creates a decode error for a malformed payload
func NewDecodeError(what string, cause error) *AppError {
	return NewAppError(
		CodeDecode,
		"The server sent a response we could not read.",
		fmt.Sprintf("failed to decode %s", what),
	).WithCause(cause)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// FromStatus maps a non-2xx HTTP status to a typed error. 401 is reported as
// an expired session since every call that can see it was authenticated.
func FromStatus(status int) *AppError {
	switch status {
	case http.StatusUnauthorized:
		err := NewTransportError(status, MessageSessionExpired)
		err.Code = CodeUnauthorized
		return err
	case http.StatusForbidden:
		return NewTransportError(status, MessageForbidden)
	case http.StatusTooManyRequests:
		return NewTransportError(status, MessageRateLimited)
	case http.StatusInternalServerError:
		return NewTransportError(status, MessageServerError)
	default:
		return NewTransportError(status, fmt.Sprintf("Request failed (status %d).", status))
	}
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// UserMessage returns the message to display for any error
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return "An unexpected error occurred"
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "pkg/errors") {
			builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return builder.String()
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	if len(v) == 1 {
		return v[0].Message
	}

	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}

	return strings.Join(messages, "; ")
}

// NewValidationErrors creates a validation error from field errors. The
// first field message becomes the displayable message.
func NewValidationErrors(errors []ValidationError) *AppError {
	validationErrs := ValidationErrors(errors)

	message := "Validation failed"
	if len(validationErrs) > 0 {
		message = validationErrs[0].Message
	}

	return NewAppError(
		CodeValidationFailed,
		message,
		validationErrs.Error(),
	).WithMetadata("validation_errors", validationErrs)
}
