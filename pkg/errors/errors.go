// Package errors defines the coded error type returned across reportforge's I/O edges.
// The report core itself never fails; errors only arise when payloads are decoded,
// flavors are loaded, documents are exported or renders are persisted.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents application error codes
type ErrorCode string

const (
	// General errors (1xxx)
	ErrCodeInternal     ErrorCode = "E1000"
	ErrCodeValidation   ErrorCode = "E1001"
	ErrCodeNotFound     ErrorCode = "E1002"
	ErrCodeConflict     ErrorCode = "E1003"
	ErrCodeForbidden    ErrorCode = "E1004"
	ErrCodeUnauthorized ErrorCode = "E1005"

	// Payload and flavor errors (2xxx)
	ErrCodePayloadInvalid ErrorCode = "E2001"
	ErrCodeFlavorNotFound ErrorCode = "E2002"
	ErrCodeFlavorInvalid  ErrorCode = "E2003"

	// Export errors (3xxx)
	ErrCodeExportUnsupported ErrorCode = "E3001"
	ErrCodeExportFailed      ErrorCode = "E3002"

	// Render archive errors (4xxx)
	ErrCodeRenderNotFound ErrorCode = "E4001"

	// Database errors (5xxx)
	ErrCodeDBConnection ErrorCode = "E5001"
	ErrCodeDBQuery      ErrorCode = "E5002"
	ErrCodeDBMigration  ErrorCode = "E5003"

	// Configuration errors (6xxx)
	ErrCodeConfigNotFound ErrorCode = "E6001"
	ErrCodeConfigInvalid  ErrorCode = "E6002"
	ErrCodeConfigParse    ErrorCode = "E6003"
)

// ExitCodeConfigValidation is the process exit code when configuration fails validation
const ExitCodeConfigValidation = 2

// AppError represents an application-level error with code and context
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
	Details any       `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to a response status
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeNotFound, ErrCodeFlavorNotFound, ErrCodeRenderNotFound:
		return http.StatusNotFound
	case ErrCodeValidation, ErrCodePayloadInvalid, ErrCodeExportUnsupported:
		return http.StatusBadRequest
	case ErrCodeFlavorInvalid:
		return http.StatusUnprocessableEntity
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeDBConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// ErrInternal creates an internal server error
func ErrInternal(message string, err error) *AppError {
	return Wrap(ErrCodeInternal, message, err)
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// ErrPayloadInvalid creates an error for a payload that cannot be rendered
func ErrPayloadInvalid(message string, err error) *AppError {
	return Wrap(ErrCodePayloadInvalid, message, err)
}

// ErrFlavorNotFound creates an error for an unknown flavor id
func ErrFlavorNotFound(id string) *AppError {
	return New(ErrCodeFlavorNotFound, fmt.Sprintf("flavor %q not found", id))
}

// ErrExportUnsupported creates an error for an unknown export format
func ErrExportUnsupported(format string) *AppError {
	return New(ErrCodeExportUnsupported, fmt.Sprintf("unsupported export format: %s", format))
}

// ErrRenderNotFound creates an error for a missing archived render
func ErrRenderNotFound(id string) *AppError {
	return New(ErrCodeRenderNotFound, fmt.Sprintf("render %s not found", id))
}

// IsAppError checks if err is, or wraps, an AppError
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
