package client

import (
	"errors"
	"fmt"
)

// Error is the normalized failure of a backend call.
//
// Status is 0 for transport failures (timeout, cancellation, connection
// refused, DNS) and the HTTP status code for non-2xx responses. Data holds
// the parsed response body (or its raw text) when the server answered.
type Error struct {
	Status  int
	Message string
	Data    any

	cause error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("taskflow: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("taskflow: %s", e.Message)
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// IsNetwork reports whether the call never produced an HTTP response.
func (e *Error) IsNetwork() bool {
	return e.Status == 0
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not a
// client error or is a transport failure.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func newNetworkError(message string, cause error) *Error {
	return &Error{Message: message, cause: cause}
}
