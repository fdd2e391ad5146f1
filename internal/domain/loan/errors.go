package loan

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid stage transition")
	// ErrStaleRecord means the revision check failed: another request
	// committed a transition between our read and our write.
	ErrStaleRecord = errors.New("loan record modified concurrently")
	// ErrLoanNotActive guards operations that only apply to active loans,
	// payment posting in particular.
	ErrLoanNotActive = errors.New("loan is not active")
	// ErrDuplicateApplicationID means a concurrent create won the same
	// monthly sequence number; the caller may re-scan and retry.
	ErrDuplicateApplicationID = errors.New("application id already taken")
)

// InvalidTransitionError carries the offending pair; errors.Is matches it
// against ErrInvalidTransition.
type InvalidTransitionError struct {
	From Stage
	To   Stage
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s is not permitted", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }
