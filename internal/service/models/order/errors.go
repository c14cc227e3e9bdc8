package order

import (
	"errors"
	"net/http"
)

// ErrNotFound matches every NotFoundError through errors.Is.
var ErrNotFound = errors.New("order not found")

// NotFoundError reports a missing order together with the status code the boundary should answer with.
type NotFoundError struct {
	Message    string
	StatusCode int
}

// NewNotFoundError creates a NotFoundError carrying http.StatusNotFound.
func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
