// Package errs holds the error kinds shared by the vault, account and delivery
// domains. Callers classify with errors.Is; messages of ErrInvalidPassword never
// say which check rejected the secret.
package errs

import "errors"

var (
	ErrInvalidPassword       = errors.New("invalid password")
	ErrCorruptManifest       = errors.New("corrupt manifest")
	ErrStorageUnavailable    = errors.New("content store unavailable")
	ErrNotFound              = errors.New("not found")
	ErrRecoveryKeyAlreadySet = errors.New("recovery key already set")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidInput          = errors.New("invalid input")
)

// DomainError attaches a human readable message and a stable code to one of
// the sentinel errors above.
type DomainError struct {
	Err     error
	Message string
	Code    string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Invalid wraps ErrInvalidInput with a validation message.
func Invalid(code, message string) error {
	return &DomainError{Err: ErrInvalidInput, Message: message, Code: code}
}
