package arena

import "errors"

var (
	// ErrInvalidState is returned for operations on a match that is not
	// active (not yet started, or already concluded).
	ErrInvalidState = errors.New("arena: match is not active")

	// ErrNotParticipant is returned when a player acts on a match they are
	// not part of.
	ErrNotParticipant = errors.New("arena: player is not a match participant")

	// ErrMatchNotFound is returned when no live match exists for an id.
	ErrMatchNotFound = errors.New("arena: match not found")

	// ErrExecutionTimeout is returned by the executor when a run exceeds its
	// time budget.
	ErrExecutionTimeout = errors.New("arena: code execution timed out")

	// ErrExecutionError is returned by the executor for any other run failure.
	ErrExecutionError = errors.New("arena: code execution failed")

	// ErrScorerUnavailable is returned when an external scorer cannot be
	// reached; the affected sub-score degrades to zero.
	ErrScorerUnavailable = errors.New("arena: scorer unavailable")

	// ErrChangeNotFound is returned when no rating change exists for an id.
	ErrChangeNotFound = errors.New("arena: rating change not found")

	// ErrChangeNotFrozen is returned when clearing a rating change that was
	// already applied.
	ErrChangeNotFrozen = errors.New("arena: rating change is not frozen")
)
