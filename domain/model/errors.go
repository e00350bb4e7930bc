package model

import (
	"errors"
	"fmt"
)

var (
	// ErrRoomNotFound is a benign outcome, not a failure: unknown or
	// already-expired room ids resolve to it.
	ErrRoomNotFound = errors.New("room not found")

	// ErrForbidden means the caller's token grants no capability for the
	// attempted command.
	ErrForbidden = errors.New("forbidden")

	// ErrBackendUnavailable wraps transient store errors (redis unreachable).
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Validation reasons for rejected selection requests.
const (
	ReasonCountNotPositive    = "count_not_positive"
	ReasonCountExceedsMembers = "count_exceeds_members"
)

// ValidationError rejects a command before any mutation happens.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Reason, e.Message)
}

func NewValidationError(reason, format string, args ...any) *ValidationError {
	return &ValidationError{
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}
