package utils

import (
	"fmt"
	"net/http"
)

// AppError carries the HTTP status a handler should answer with.
type AppError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message}
}

func NewServiceUnavailableError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusServiceUnavailable, Message: message, Err: err}
}
