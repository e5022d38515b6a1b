package main

import (
	"errors"
	"net/http"
)

// ErrNotFound is returned by stores when a lookup, update or delete matches no row.
var ErrNotFound = errors.New("not found")

const errMethodNotAllowed = "Method not allowed"

// requestError is a failure detected before or instead of a backend call.
// Its message is written to the client as is.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(message string) error {
	return &requestError{status: http.StatusBadRequest, message: message}
}

func notFound(message string) error {
	return &requestError{status: http.StatusNotFound, message: message}
}

func tooLarge(message string) error {
	return &requestError{status: http.StatusRequestEntityTooLarge, message: message}
}

// statusFor maps an error to the HTTP status written to the client.
// Anything not classified locally is a backend failure.
func statusFor(err error) int {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.status
	}
	return http.StatusInternalServerError
}
