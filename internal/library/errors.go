package library

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRemoteCall   = errors.New("library api call failed")
	ErrInvalidInput = errors.New("invalid library input")
)

// RemoteError describes a failed call to the library API: either a transport
// failure (Err set) or a non-2xx answer (StatusCode set).
type RemoteError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

func (e *RemoteError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRemoteCall, e.Err}
	}
	return []error{ErrRemoteCall}
}

// IsNotFound reports whether the API answered 404.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}
