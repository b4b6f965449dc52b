// Package apierr turns domain errors into huma status errors.
package apierr

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
)

// From maps err onto an HTTP status. Unknown errors become a bare 500 so
// internals never reach the client.
func From(err error) error {
	if err == nil {
		return nil
	}

	msg := ""
	var de *errs.DomainError
	if errors.As(err, &de) {
		msg = de.Message
	}

	switch {
	case errors.Is(err, errs.ErrInvalidPassword):
		return huma.Error403Forbidden("invalid password")
	case errors.Is(err, errs.ErrUnauthorized):
		return huma.Error401Unauthorized(or(msg, "unauthorized"))
	case errors.Is(err, errs.ErrNotFound):
		return huma.Error404NotFound(or(msg, "not found"))
	case errors.Is(err, errs.ErrRecoveryKeyAlreadySet):
		return huma.Error409Conflict("recovery key already set, delete it first")
	case errors.Is(err, errs.ErrCorruptManifest):
		return huma.Error422UnprocessableEntity("stored vault content is unreadable")
	case errors.Is(err, errs.ErrInvalidInput):
		return huma.Error422UnprocessableEntity(or(msg, "invalid input"))
	case errors.Is(err, errs.ErrStorageUnavailable):
		return huma.Error503ServiceUnavailable("content store unavailable, try again later")
	}

	return huma.Error500InternalServerError("internal error")
}

func or(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
