package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Kind names a domain failure. The string value is the wire error code.
type Kind string

const (
	KindEmailInUse              Kind = "EmailInUse"
	KindPasswordPolicyViolation Kind = "PasswordPolicyViolation"
	KindInvalidCredentials      Kind = "InvalidCredentials"
	KindUserNotActive           Kind = "UserNotActive"
	KindMissingSubject          Kind = "MissingSubject"
	KindUserNotFound            Kind = "UserNotFound"
	KindInvalidRequest          Kind = "InvalidRequest"
)

// Kinds lists every domain failure kind that may cross the service boundary.
var Kinds = []Kind{
	KindEmailInUse,
	KindPasswordPolicyViolation,
	KindInvalidCredentials,
	KindUserNotActive,
	KindMissingSubject,
	KindUserNotFound,
	KindInvalidRequest,
}

// DomainError is a classified failure. Its message is safe to show to callers.
type DomainError struct {
	Kind    Kind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError of the same kind, so the Err* values below can
// be used with errors.Is regardless of the message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Kind == e.Kind
}

// Kind-only values for errors.Is matching.
var (
	ErrEmailInUse              = &DomainError{Kind: KindEmailInUse}
	ErrPasswordPolicyViolation = &DomainError{Kind: KindPasswordPolicyViolation}
	ErrInvalidCredentials      = &DomainError{Kind: KindInvalidCredentials}
	ErrUserNotActive           = &DomainError{Kind: KindUserNotActive}
	ErrMissingSubject          = &DomainError{Kind: KindMissingSubject}
	ErrUserNotFound            = &DomainError{Kind: KindUserNotFound}
	ErrInvalidRequest          = &DomainError{Kind: KindInvalidRequest}
)

// InvalidCredentialsMessage is shared by every sign-in path that fails before
// the password has been proven.
const InvalidCredentialsMessage = "Invalid credentials."

func EmailInUse(email string) error {
	return &DomainError{Kind: KindEmailInUse, Message: fmt.Sprintf("Email '%s' is already in use.", email)}
}

func PasswordPolicyViolation(details string) error {
	return &DomainError{Kind: KindPasswordPolicyViolation, Message: details}
}

func InvalidCredentials() error {
	return &DomainError{Kind: KindInvalidCredentials, Message: InvalidCredentialsMessage}
}

func UserNotActive(id string) error {
	return &DomainError{Kind: KindUserNotActive, Message: fmt.Sprintf("User with ID: '%s' is not active.", id)}
}

func MissingSubject() error {
	return &DomainError{Kind: KindMissingSubject, Message: "User ID claim (subject) cannot be empty."}
}

func UserNotFound(id string) error {
	return &DomainError{Kind: KindUserNotFound, Message: fmt.Sprintf("User with ID: '%s' was not found.", id)}
}

func InvalidRequest(details string) error {
	return &DomainError{Kind: KindInvalidRequest, Message: details}
}

// AsDomainError reports whether err carries a classified failure.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
