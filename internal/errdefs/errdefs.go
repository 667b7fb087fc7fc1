// Package errdefs defines the business-rule error taxonomy shared by the
// engine, the storage layer, and the HTTP surface. All sentinels represent
// rule violations scoped to a single request; none are retried.
package errdefs

import "errors"

var (
	// ErrNotAuthorized is returned when the caller lacks the required role:
	// not a partnership member, self-approving a habit, or dismissing a
	// habit they did not create.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidState is returned when an operation is illegal for the
	// entity's current status, e.g. approving a non-pending habit.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotYourTurn is returned when the caller does not hold the habit's
	// current turn.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrDuplicateForDay is returned when a challenge already exists for the
	// habit on the given day.
	ErrDuplicateForDay = errors.New("challenge already exists for this day")

	// ErrAlreadyCompleted is returned when the user already has a completion
	// for the challenge.
	ErrAlreadyCompleted = errors.New("challenge already completed by this user")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// IsConflict reports whether err is one of the uniqueness-violation
// sentinels. Conflicts map to HTTP 409.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateForDay) || errors.Is(err, ErrAlreadyCompleted) || errors.Is(err, ErrInvalidState)
}
