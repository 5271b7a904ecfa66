package client

import (
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Detail is one (code, message) entry sent by the server.
type Detail struct {
	Code    string
	Message string
}

// ServerError is a failure reported by the service.
type ServerError struct {
	Status  codes.Code
	Details []Detail
}

func (e *ServerError) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Message)
	}
	return strings.Join(msgs, "\n")
}

// HasCode reports whether any entry carries code.
func (e *ServerError) HasCode(code string) bool {
	for _, d := range e.Details {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Is lets errors.Is(err, ErrUnauthorized) and errors.Is(err, ErrNotFound)
// match server errors with the corresponding status.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == codes.Unauthenticated
	case ErrNotFound:
		return e.Status == codes.NotFound
	}
	return false
}
