package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenExpired        = errors.New("token expired")
	ErrNoActiveCycle       = errors.New("no active fund cycle")
	ErrAlreadySettled      = errors.New("cycle already settled")
	ErrInvalidProfit       = errors.New("invalid profit amount")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNoActiveBalance     = errors.New("no active balance")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyProcessed    = errors.New("withdrawal already processed")
)

// Error codes returned to API clients.
const (
	CodeNotFound      = "ERR_NOT_FOUND"
	CodeInvalidInput  = "ERR_INVALID_INPUT"
	CodeBadRequest    = "ERR_BAD_REQUEST"
	CodeUnauthorized  = "ERR_UNAUTHORIZED"
	CodeForbidden     = "ERR_FORBIDDEN"
	CodeConflict      = "ERR_CONFLICT"
	CodeInternalError = "ERR_INTERNAL"
)

// AppError represents an application error with an HTTP status.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error.
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

// InternalError wraps a dependency failure. The underlying error is kept
// for logging and never rendered to the caller.
func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// NewError creates a bad-request error with a custom message wrapping a sentinel.
func NewError(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, err)
}
