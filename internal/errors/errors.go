package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeInvalidCredentials indicates the identity provider rejected the credential pair.
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	// ErrCodeProviderUnavailable indicates a transport or backing-store failure at the identity provider.
	ErrCodeProviderUnavailable ErrorCode = "provider_unavailable"
	// ErrCodeAuthInProgress indicates a login was attempted while another login is in flight.
	ErrCodeAuthInProgress ErrorCode = "auth_in_progress"
	// ErrCodeIdentityInactive indicates the identity's account status is not active.
	ErrCodeIdentityInactive ErrorCode = "identity_inactive"
	// ErrCodeCorruptState indicates persisted session state was unparseable or schema-invalid.
	// Never user-facing: the session store self-heals by clearing storage.
	ErrCodeCorruptState ErrorCode = "corrupt_state"
	// ErrCodeNotAuthenticated indicates a capability check against a non-authenticated state.
	ErrCodeNotAuthenticated ErrorCode = "not_authenticated"
	// ErrCodeInsufficientCapability indicates the session lacks the required capability.
	ErrCodeInsufficientCapability ErrorCode = "insufficient_capability"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// InvalidCredentials creates an invalid-credentials error. Recoverable; the
// caller may retry with different credentials.
func InvalidCredentials(message string) *AppError {
	return New(ErrCodeInvalidCredentials, message)
}

// ProviderUnavailable wraps a transport failure at the identity provider.
// Recoverable; surfaced with retry guidance.
func ProviderUnavailable(err error) *AppError {
	return Wrap(err, ErrCodeProviderUnavailable, "identity provider unavailable")
}

// IdentityInactive creates an identity-inactive error, surfaced as
// "account not active".
func IdentityInactive(message string) *AppError {
	return New(ErrCodeIdentityInactive, message)
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsInvalidCredentials checks if an error is an invalid-credentials error.
func IsInvalidCredentials(err error) bool {
	return isCode(err, ErrCodeInvalidCredentials)
}

// IsProviderUnavailable checks if an error is a provider-unavailable error.
func IsProviderUnavailable(err error) bool {
	return isCode(err, ErrCodeProviderUnavailable)
}

// IsAuthInProgress checks if an error is an auth-in-progress error.
func IsAuthInProgress(err error) bool {
	return isCode(err, ErrCodeAuthInProgress)
}

// IsIdentityInactive checks if an error is an identity-inactive error.
func IsIdentityInactive(err error) bool {
	return isCode(err, ErrCodeIdentityInactive)
}

// IsCorruptState checks if an error is a corrupt-state error.
func IsCorruptState(err error) bool {
	return isCode(err, ErrCodeCorruptState)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
