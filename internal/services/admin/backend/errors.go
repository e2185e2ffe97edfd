package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed backend call.
type ErrorKind int

const (
	// KindTransport is a network failure before a response arrived.
	KindTransport ErrorKind = iota + 1
	// KindStatus is a non-success HTTP status.
	KindStatus
	// KindDecode is a success response whose body had an unexpected shape.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

var (
	// ErrNotFound reports a 404 from the backend.
	ErrNotFound = errors.New("backend record not found")
	// ErrInvalidCredentials reports a rejected sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Error describes a failed backend call.
type Error struct {
	Kind     ErrorKind
	Method   string
	Endpoint string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Endpoint, e.Status)
	default:
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Endpoint, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrNotFound for 404 responses.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindStatus && e.Status == http.StatusNotFound
}

// KindOf returns the kind of a backend error, or zero for other errors.
func KindOf(err error) ErrorKind {
	var backendErr *Error
	if errors.As(err, &backendErr) {
		return backendErr.Kind
	}
	return 0
}
