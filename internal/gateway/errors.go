package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound matches a rejected request for a record the server does not have.
var ErrNotFound = errors.New("recipe not found")

// TransientError wraps failures that may succeed if tried again later:
// network errors, timeouts, 5xx and 429 responses.
type TransientError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned %d: %v", e.Op, e.Status, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// RejectedError means the server refused the request (validation, conflict,
// missing record). Retrying the same request will not help.
type RejectedError struct {
	Op      string
	Status  int
	Message string
	Fields  []string
}

func (e *RejectedError) Error() string {
	msg := fmt.Sprintf("%s rejected (status %d)", e.Op, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if len(e.Fields) > 0 {
		msg += " [invalid: " + strings.Join(e.Fields, ", ") + "]"
	}

	return msg
}

// Is lets errors.Is(err, ErrNotFound) match a 404 rejection.
func (e *RejectedError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// IsTransient reports whether err is, or wraps, a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsRejected reports whether err is, or wraps, a RejectedError.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// transientStatus reports whether an HTTP status should be classed as transient.
func transientStatus(code int) bool {
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}
