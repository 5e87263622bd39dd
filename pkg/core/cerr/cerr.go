// Package cerr defines the errors which the use cases return in order
// to classify their failures. Each Error carries the HTTP status code
// which the restful adapters report, so the core layer may choose it
// without depending on a web framework.
package cerr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Err            error
	HTTPStatusCode int
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %v", e.HTTPStatusCode, e.Err)
}

// StatusCode returns the HTTP status code of the first *Error in the
// err chain, or 500 if there is none. A nil err has the 200 code.
func StatusCode(err error) int {
	var e *Error
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &e):
		return e.HTTPStatusCode
	default:
		return http.StatusInternalServerError
	}
}

func wrap(code int) func(error) *Error {
	return func(err error) *Error {
		return &Error{Err: err, HTTPStatusCode: code}
	}
}

var (
	BadRequest     = wrap(http.StatusBadRequest)
	Authentication = wrap(http.StatusUnauthorized)
	Authorization  = wrap(http.StatusForbidden)
	NotFound       = wrap(http.StatusNotFound)
	Conflict       = wrap(http.StatusConflict)
	Unprocessable  = wrap(http.StatusUnprocessableEntity)
)
