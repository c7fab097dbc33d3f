package errors

import (
	"errors"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func NotFound(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
}

func BadRequest(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest}
}

func Conflict(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusConflict}
}

// Unauthorized without a message uses the generic credentials text.
func Unauthorized(message string) error {
	if message == "" {
		message = "Invalid credentials"
	}
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusUnauthorized}
}

// AppError is surfaced for failed side effects (storage, conversion). The
// original error must be logged by the caller, only message reaches the client.
func AppError(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusInternalServerError}
}

// StatusCode returns status of err or 500 if err carries none
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

func hasStatus(err error, status int) bool {
	var e *ErrorWithStatusCode
	return errors.As(err, &e) && e.StatusCode == status
}

func IsNotFound(err error) bool     { return hasStatus(err, http.StatusNotFound) }
func IsBadRequest(err error) bool   { return hasStatus(err, http.StatusBadRequest) }
func IsConflict(err error) bool     { return hasStatus(err, http.StatusConflict) }
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }
