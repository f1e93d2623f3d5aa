package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRedlineNotFound = errors.New("redline not found")
	// ErrEmptyRedline rejects submitting a redline with no changes.
	ErrEmptyRedline = errors.New("redline has no changes to submit")
	// ErrChainConflict serializes redline chains: a profile with an
	// in-flight redline cannot accept another submission.
	ErrChainConflict = errors.New("another open redline exists for this profile")
	ErrUnknownField  = errors.New("change targets an unknown rate card item field")
	ErrUnknownAction = errors.New("unknown review action")
)

// InvalidTransitionError reports a workflow move attempted from the
// wrong state. It is raised from the conditional status update, so a
// concurrent transition on the same redline surfaces here instead of
// being silently overwritten.
type InvalidTransitionError struct {
	Attempted string
	Current   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a redline in status %s", e.Attempted, e.Current)
}
