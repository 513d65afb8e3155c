package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"statdash/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeComputationError = "COMPUTATION_ERROR"
	CodeBusy             = "BUSY"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// DatabaseError marks a failed query or connection, keeping the driver error as cause
func DatabaseError(err error, message string) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: err}
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// FromDomain classifies a domain error into an AppError code.
// Errors that are already AppErrors keep their code.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	code := CodeInternalError
	switch {
	case core.IsParseError(err), core.IsSelectionError(err), core.IsArityError(err),
		stderrors.Is(err, core.ErrNoData), stderrors.Is(err, core.ErrNoResult),
		stderrors.Is(err, core.ErrUnknownProcedure):
		code = CodeInvalidInput
	case core.IsComputationError(err):
		code = CodeComputationError
	case stderrors.Is(err, core.ErrSessionNotFound):
		code = CodeNotFound
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

// HTTPStatus maps an error code to the status returned by JSON endpoints
func HTTPStatus(code string) int {
	switch code {
	case CodeInvalidInput, CodeValidationError, CodeComputationError:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
