package stats

import (
	"context"
	"time"
)

// MonthlyAggregate is the derived statistics bucket for a (year, month).
// It is never hand-edited or incrementally patched: every recomputation is
// a full re-fold over the bucket's matches so drift cannot accumulate.
type MonthlyAggregate struct {
	Year  int
	Month time.Month

	GamesPlayed  int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int

	FieldFeeTotal float64
	WaterFeeTotal float64
	FinalFeeTotal float64

	ComputedAt time.Time
}

// AggregateRepository persists monthly aggregates.
type AggregateRepository interface {
	Get(ctx context.Context, year int, month time.Month) (*MonthlyAggregate, error)
	Save(ctx context.Context, aggregate *MonthlyAggregate) error
}

// MonthlyStatsRecomputed is emitted after a bucket is re-folded.
type MonthlyStatsRecomputed struct {
	Year       int
	Month      time.Month
	OccurredAt time.Time
}
