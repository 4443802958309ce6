package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrSessionInvalid = errors.New("session invalid")
	ErrBusy           = errors.New("operation already in progress")
	ErrClosed         = errors.New("task manager closed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrNotLoggedIn    = errors.New("not logged in")
)

// ValidationError reports an empty or malformed field, raised before any
// network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RequestError is a non-success response or a transport failure.
// Status is 0 when no response arrived.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil && e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Message returns the human-readable text for err, suitable for a
// notification.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	switch {
	case errors.Is(err, ErrBusy):
		return "Still working on that task"
	case errors.Is(err, ErrNotLoggedIn):
		return "Not logged in"
	}
	return err.Error()
}
