package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies application errors for handler mapping and tracking.
type ErrorType string

const (
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeStorage    ErrorType = "STORAGE"
	ErrorTypeSearch     ErrorType = "SEARCH"
	ErrorTypeInternal   ErrorType = "INTERNAL"
)

// AppError is an error with a type tag. The tag drives the HTTP status and
// the error tracker's aggregation key.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error type to a response status. Search failures map
// to 502: the remote index failed, not this service.
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeSearch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AsAppError unwraps err to an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

func NewStorageError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeStorage, Message: message, Err: err}
}

func NewSearchError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeSearch, Message: message, Err: err}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}
