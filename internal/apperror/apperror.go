// Package apperror defines the domain error taxonomy shared by all services.
// Handlers translate these to HTTP status codes; services never return raw
// storage errors for expected failures.
package apperror

import (
	"errors"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("duplicate")
	ErrNotFound   = errors.New("not found")
)

type AppError struct {
	Err     error  // sentinel for errors.Is checks
	Message string // human-readable, user-facing
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message}
}

func Duplicate(message string) *AppError {
	return &AppError{Err: ErrDuplicate, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Err: ErrNotFound, Message: message}
}
