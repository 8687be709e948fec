// internal/lifecycle/errors.go
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed or too-short event input.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden marks an event fired by an actor that may not fire it.
	ErrForbidden = errors.New("permission denied")
	// ErrInvalidTransition marks an event that is not legal from the current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrTerminal marks any event fired at a deleted listing.
	ErrTerminal = errors.New("listing is deleted")
	// ErrNotPublishReady is matched by *NotReadyError.
	ErrNotPublishReady = errors.New("listing is not publish ready")
)

// NotReadyError is returned by requestPublish when the listing fails readiness
// or its stored readiness is stale.
type NotReadyError struct {
	MissingFields     []string
	UnmetRequirements []string
	Stale             bool
}

func (e *NotReadyError) Error() string {
	if e.Stale {
		return "listing is not publish ready: readiness must be recomputed first"
	}
	return fmt.Sprintf("listing is not publish ready: missing %s", strings.Join(e.UnmetRequirements, ", "))
}

func (e *NotReadyError) Is(target error) bool {
	return target == ErrNotPublishReady
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func invalidTransition(event EventType, from State) error {
	return fmt.Errorf("%w: cannot %s from (%s, %s, %s)",
		ErrInvalidTransition, event, from.Application, from.Business, from.Admin)
}
