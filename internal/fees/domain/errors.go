package fees

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeCost is returned when a match cost total is negative.
	ErrNegativeCost = errors.New("fees: negative cost total")
	// ErrNonFiniteCost is returned when a match cost total is NaN or infinite.
	ErrNonFiniteCost = errors.New("fees: non-finite cost total")
	// ErrNonFiniteAmount is returned when a monetary value cannot be rounded.
	ErrNonFiniteAmount = errors.New("fees: non-finite amount")
	// ErrInvalidScheduledCells is returned when the video fee denominator is not positive.
	ErrInvalidScheduledCells = errors.New("fees: scheduled cells must be positive")
	// ErrMissingOverrideNote is returned when an override carries no justification.
	ErrMissingOverrideNote = errors.New("fees: override requires a note")
	// ErrEmptyPlayerID is returned when a player id is empty.
	ErrEmptyPlayerID = errors.New("fees: empty player id")
	// ErrEmptyMatchID is returned when a match id is empty.
	ErrEmptyMatchID = errors.New("fees: empty match id")
)

// InvalidRateError reports a rate input that is negative, NaN or infinite.
type InvalidRateError struct {
	Name  string
	Value float64
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("fees: invalid %s rate %v", e.Name, e.Value)
}

// RecalculationError wraps the first per-player failure of a batch
// recalculation. The batch is aborted; no participant is updated.
type RecalculationError struct {
	MatchID  string
	PlayerID string
	Err      error
}

func (e *RecalculationError) Error() string {
	return fmt.Sprintf("fees: recalculation of match %s failed for player %s: %v", e.MatchID, e.PlayerID, e.Err)
}

func (e *RecalculationError) Unwrap() error { return e.Err }
