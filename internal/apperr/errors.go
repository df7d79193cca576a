package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDataURL  = errors.New("invalid data url")
	ErrNoGraph         = errors.New("no graph is open")
	ErrUnknownSetting  = errors.New("unknown setting")
	ErrUnknownFeature  = errors.New("unknown feature")
	ErrInvalidArgument = errors.New("invalid argument")
)

// TransportError is returned when the note-store answers with a non-2xx status.
type TransportError struct {
	Status int
	URL    string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("http error: status %d from %s", e.Status, e.URL)
}

// RemoteMethodError is returned when a call succeeds at the HTTP level but the
// note-store reports an application error. Body is kept as raw JSON.
type RemoteMethodError struct {
	Method string
	Body   []byte
}

func (e *RemoteMethodError) Error() string {
	return fmt.Sprintf("remote method %s failed: %s", e.Method, e.Body)
}

// FileSystemError wraps a failed write or copy performed through the host bridge.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }
