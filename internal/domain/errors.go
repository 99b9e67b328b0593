package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotInSession       = errors.New("not in a session")
	ErrNotCreator         = errors.New("only the session creator can do that")
	ErrAlreadySeated      = errors.New("already in a session")
	ErrSessionFull        = errors.New("session is full")
	ErrSessionNotFound    = errors.New("session not found")
	ErrRegistryFull       = errors.New("too many sessions")
	ErrBanned             = errors.New("banned from session")
	ErrAlreadyBanned      = errors.New("already banned")
	ErrSelfTarget         = errors.New("cannot target yourself")
	ErrInsufficientSupply = errors.New("not enough scraps")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyPending     = errors.New("request already pending")
	ErrRequestDenied      = errors.New("request denied")
	ErrRequestTimedOut    = errors.New("request timed out")
	ErrInternal           = errors.New("internal error")
)

// ValidationError describes a rejected input. It matches ErrValidation.
type ValidationError struct {
	Reason string
	Value  string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s (%q)", ErrValidation, e.Reason, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(reason, value string) error {
	return &ValidationError{Reason: reason, Value: value}
}
