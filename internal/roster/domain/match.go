package roster

import (
	"context"
	"time"
)

// Result classifies a finished match from the club's perspective.
type Result string

const (
	ResultWin  Result = "win"
	ResultDraw Result = "draw"
	ResultLoss Result = "loss"
)

// ResultFromScore derives the result from a final score.
func ResultFromScore(goalsFor, goalsAgainst int) Result {
	switch {
	case goalsFor > goalsAgainst:
		return ResultWin
	case goalsFor < goalsAgainst:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// Match holds one fixture's basic info and its cost context. Basic info
// (score, notes) and fee recalculation are separable units of work: a failed
// recalculation never rolls back an info edit.
type Match struct {
	ID           string
	PlayedAt     time.Time
	Opponent     string
	GoalsFor     int
	GoalsAgainst int
	Result       Result
	Notes        string

	// Cost context. FeeCoefficient is persisted for cheap reads but is
	// always derivable from the totals; it is refreshed by every
	// recalculation pass.
	FieldFeeTotal  float64
	WaterFeeTotal  float64
	FeeCoefficient float64
	// Optional match-level rate overrides; nil means use club settings.
	VideoFeeRate *float64
	LateFeeRate  *float64
	// ScheduledCells is the video-fee denominator: the number of
	// sub-interval cells actually scheduled for this match.
	ScheduledCells int

	// Aggregates written by the last successful recalculation.
	TotalParticipants int
	TotalFinalFees    float64
}

// MatchRepository persists matches.
type MatchRepository interface {
	Get(ctx context.Context, matchID string) (*Match, error)
	ListByMonth(ctx context.Context, year int, month time.Month) ([]*Match, error)
	Save(ctx context.Context, match *Match) error
}

// PlayerRepository persists players.
type PlayerRepository interface {
	Get(ctx context.Context, playerID string) (*Player, error)
	ListActive(ctx context.Context) ([]*Player, error)
	Save(ctx context.Context, player *Player) error
}
