package resource

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by every resource kind
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// Error is the base error returned by a Manager
type Error struct {
	Code    string // Stable error code (e.g. "NOT_FOUND")
	Message string // Human-readable message, safe to show to API callers
	Err     error  // Underlying error
}

// Error implements error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap allows error wrapping compatibility
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrOperationNotAllowed is returned when a kind's schema does not list the operation.
var ErrOperationNotAllowed = errors.New("operation not allowed for this resource kind")

// ============================================
// STORE-LEVEL ERRORS
// ============================================

// ErrDocumentNotFound is returned by a Store when no document matches the identifier.
var ErrDocumentNotFound = errors.New("document not found")

// DuplicateKeyError is returned by a Store when a unique field already holds the value.
type DuplicateKeyError struct {
	Collection string
	Field      string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key in %s: %s", e.Collection, e.Field)
}

// ============================================
// ERROR FACTORY FUNCTIONS
// ============================================

// NewValidationError creates a client-visible rejection
func NewValidationError(message string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewNotFound creates "<Singular> not found"
func NewNotFound(singular string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", singular),
	}
}

// NewStoreUnavailable wraps a connectivity or unexpected store failure.
// The underlying message is surfaced to the caller.
func NewStoreUnavailable(err error) *Error {
	msg := "store unavailable"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    CodeStoreUnavailable,
		Message: msg,
		Err:     err,
	}
}

// ============================================
// ERROR CHECKING FUNCTIONS
// ============================================

func hasCode(err error, code string) bool {
	var resErr *Error
	return errors.As(err, &resErr) && resErr.Code == code
}

// IsValidationError reports whether err is a client-side rejection
func IsValidationError(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsNotFound reports whether err is a not-found signal
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsStoreUnavailable reports whether err is a store failure
func IsStoreUnavailable(err error) bool {
	return hasCode(err, CodeStoreUnavailable)
}

// GetErrorMessage extracts the caller-facing message
func GetErrorMessage(err error) string {
	var resErr *Error
	if errors.As(err, &resErr) {
		return resErr.Message
	}
	return err.Error()
}

// MapErrorToHTTP converts a manager error into status, message and code
func MapErrorToHTTP(err error) (int, string, string) {
	if err == nil {
		return http.StatusOK, "Success", ""
	}

	switch {
	case IsValidationError(err):
		return http.StatusBadRequest, GetErrorMessage(err), CodeValidation
	case IsNotFound(err):
		return http.StatusNotFound, GetErrorMessage(err), CodeNotFound
	case IsStoreUnavailable(err):
		return http.StatusInternalServerError, GetErrorMessage(err), CodeStoreUnavailable
	case errors.Is(err, ErrOperationNotAllowed):
		return http.StatusNotFound, "Route not found", CodeNotFound
	default:
		return http.StatusInternalServerError, err.Error(), CodeStoreUnavailable
	}
}
