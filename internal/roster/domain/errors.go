package roster

import "errors"

var (
	// ErrEmptyMatchID is returned when a match id is empty.
	ErrEmptyMatchID = errors.New("roster: empty match id")
	// ErrEmptyPlayerID is returned when a player id is empty.
	ErrEmptyPlayerID = errors.New("roster: empty player id")
	// ErrMatchNotFound is returned when a match does not exist.
	ErrMatchNotFound = errors.New("roster: match not found")
	// ErrPlayerNotFound is returned when a player does not exist.
	ErrPlayerNotFound = errors.New("roster: player not found")
	// ErrInvalidResult is returned for an unknown match result.
	ErrInvalidResult = errors.New("roster: invalid match result")
)
