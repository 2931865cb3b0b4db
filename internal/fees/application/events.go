package application

import "time"

// FeesRecalculated is emitted after a successful full-match recalculation.
// Callers use it to invalidate derived read views (match details,
// leaderboards, statistics); the engine itself knows nothing about caching.
type FeesRecalculated struct {
	MatchID           string
	TotalParticipants int
	FeeCoefficient    float64
	TotalFinalFees    float64
	OccurredAt        time.Time
}

// OverrideApplied is emitted when a manual fee override is applied or
// removed for a (player, match) pair.
type OverrideApplied struct {
	MatchID    string
	PlayerID   string
	Amount     float64
	Removed    bool
	OccurredAt time.Time
}
