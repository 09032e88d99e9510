package google

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// AuthError means the caller holds no valid Google credential. It is
// surfaced as "not logged in" rather than retried.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("%s: not authenticated: %v", e.Op, e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// TransportError is a network failure or a non-2xx response that is
// neither an auth problem nor a missing resource. No retry happens at
// this layer.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError means the remote resource is already absent (404/410).
// Deletes treat this as soft success; lookups treat it as a miss.
type NotFoundError struct {
	Op  string
	Err error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s: gone: %v", e.Op, e.Err) }
func (e *NotFoundError) Unwrap() error { return e.Err }

// wrapErr maps a raw Tasks API error onto the typed taxonomy.
func wrapErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Op: op, Err: err}
		case http.StatusNotFound, http.StatusGone:
			return &NotFoundError{Op: op, Err: err}
		default:
			return &TransportError{Op: op, StatusCode: gerr.Code, Err: err}
		}
	}
	return &TransportError{Op: op, Err: err}
}

// IsAuth reports whether err means the user is not authenticated.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err means the remote task or list is
// already gone.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
