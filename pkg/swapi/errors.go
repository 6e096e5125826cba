package swapi

import (
	"errors"
	"fmt"
)

// ErrCancelled marks a fetch abandoned because its context was cancelled. Callers
// treat it as "no result" rather than a failure to display.
var ErrCancelled = errors.New("swapi: request cancelled")

// RemoteError reports a non-2xx response (StatusCode set) or a transport failure
// (StatusCode zero, Err set).
type RemoteError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func statusError(code int, statusText string) *RemoteError {
	return &RemoteError{
		StatusCode: code,
		Message:    fmt.Sprintf("Failed to fetch starships: %s", statusText),
	}
}

func networkError(err error) *RemoteError {
	return &RemoteError{
		Message: fmt.Sprintf("Network error: %v", err),
		Err:     err,
	}
}

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// IsCancelled reports whether err came from a cancelled fetch.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// AsRemoteError extracts the RemoteError from err's chain.
func AsRemoteError(err error) (*RemoteError, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote, true
	}
	return nil, false
}
