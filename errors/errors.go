package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeInvalid  ErrorType = "invalid_argument"
	ErrorTypeNotFound ErrorType = "not_found"
	ErrorTypeConflict ErrorType = "conflict"
	ErrorTypeInternal ErrorType = "internal"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Sentinels for errors.Is. AppError.Is compares by Type only.
var (
	ErrInvalidArgument = &AppError{Type: ErrorTypeInvalid}
	ErrNotFound        = &AppError{Type: ErrorTypeNotFound}
	ErrConflict        = &AppError{Type: ErrorTypeConflict}
)

// AppError represents a structured error raised while assembling loggers.
type AppError struct {
	Type       ErrorType      `json:"type"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	InnerError error          `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.InnerError != nil {
		return e.InnerError.Error()
	}
	return string(e.Type)
}

// Unwrap returns the inner error
func (e *AppError) Unwrap() error {
	return e.InnerError
}

// WithMessage adds a message to the error
func (e *AppError) WithMessage(msg string) *AppError {
	e.Message = msg
	return e
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithInnerError sets the inner error
func (e *AppError) WithInnerError(err error) *AppError {
	e.InnerError = err
	return e
}

// Is checks if this error is of a specific type
func (e *AppError) Is(target error) bool {
	if targetApp, ok := target.(*AppError); ok {
		return e.Type == targetApp.Type
	}
	return false
}

// New creates a new AppError
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Code:    string(errType),
	}
}

// FromError converts a standard error to AppError
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return &AppError{
		Type:       ErrorTypeUnknown,
		Message:    err.Error(),
		InnerError: err,
	}
}

// Wrap wraps an error with a specific type
func Wrap(err error, errType ErrorType, message string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		InnerError: err,
		Code:       string(errType),
	}
}

func NewInvalidArgument(message string) *AppError {
	return New(ErrorTypeInvalid, message)
}

func NewNotFound(resource string, id any) *AppError {
	return New(ErrorTypeNotFound, fmt.Sprintf("%s %q not found", resource, fmt.Sprint(id))).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewConflict(resource string, id any) *AppError {
	return New(ErrorTypeConflict, fmt.Sprintf("%s %q already exists", resource, fmt.Sprint(id))).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewInternal(message string) *AppError {
	return New(ErrorTypeInternal, message)
}

// Format renders an error as a single line for bootstrap diagnostics.
func Format(err error) string {
	if err == nil {
		return ""
	}

	appErr := FromError(err)

	parts := []string{fmt.Sprintf("[%s] %s", appErr.Type, appErr.Message)}
	for k, v := range appErr.Details {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	if appErr.InnerError != nil && appErr.InnerError.Error() != appErr.Message {
		parts = append(parts, "caused_by: "+appErr.InnerError.Error())
	}
	return strings.Join(parts, " | ")
}
