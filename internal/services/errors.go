// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/localbiz/directory-backend/internal/lifecycle"
)

var (
	// ErrNotFound is returned when the referenced listing, application or user is absent.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks a missing or unusable identity token or bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict marks a unique constraint hit, such as a taken email.
	ErrConflict = errors.New("conflict")
	// ErrPublishedReadOnly is returned when an owner edits a published listing.
	ErrPublishedReadOnly = fmt.Errorf("%w: published listings are read-only", lifecycle.ErrForbidden)

	ErrValidation        = lifecycle.ErrValidation
	ErrForbidden         = lifecycle.ErrForbidden
	ErrInvalidTransition = lifecycle.ErrInvalidTransition
	ErrTerminal          = lifecycle.ErrTerminal
	ErrNotPublishReady   = lifecycle.ErrNotPublishReady
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
