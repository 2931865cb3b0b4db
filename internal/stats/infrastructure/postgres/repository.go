package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	stats "clubledger/internal/stats/domain"
)

// AggregateRepository persists monthly aggregates scoped to one club.
type AggregateRepository struct {
	db     *sql.DB
	clubID string
}

// NewAggregateRepository constructs a repository.
func NewAggregateRepository(db *sql.DB, clubID string) *AggregateRepository {
	return &AggregateRepository{db: db, clubID: clubID}
}

// Get loads an aggregate bucket.
func (r *AggregateRepository) Get(ctx context.Context, year int, month time.Month) (*stats.MonthlyAggregate, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("aggregate repo: nil db")
	}
	var aggregate stats.MonthlyAggregate
	var monthValue int
	err := r.db.QueryRowContext(ctx, `
SELECT year, month, games_played, wins, draws, losses, goals_for, goals_against,
	field_fee_total, water_fee_total, final_fee_total, computed_at
FROM club_monthly_stats
WHERE club_id = $1 AND year = $2 AND month = $3
LIMIT 1`, r.clubID, year, int(month)).Scan(
		&aggregate.Year, &monthValue, &aggregate.GamesPlayed, &aggregate.Wins, &aggregate.Draws, &aggregate.Losses,
		&aggregate.GoalsFor, &aggregate.GoalsAgainst,
		&aggregate.FieldFeeTotal, &aggregate.WaterFeeTotal, &aggregate.FinalFeeTotal, &aggregate.ComputedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, stats.ErrAggregateNotFound
	}
	if err != nil {
		return nil, err
	}
	aggregate.Month = time.Month(monthValue)
	aggregate.ComputedAt = aggregate.ComputedAt.UTC()
	return &aggregate, nil
}

// Save overwrites an aggregate bucket.
func (r *AggregateRepository) Save(ctx context.Context, aggregate *stats.MonthlyAggregate) error {
	if r == nil || r.db == nil {
		return errors.New("aggregate repo: nil db")
	}
	if aggregate == nil {
		return stats.ErrNilAggregate
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO club_monthly_stats (
	club_id, year, month, games_played, wins, draws, losses, goals_for, goals_against,
	field_fee_total, water_fee_total, final_fee_total, computed_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
)
ON CONFLICT (club_id, year, month) DO UPDATE SET
	games_played = EXCLUDED.games_played,
	wins = EXCLUDED.wins,
	draws = EXCLUDED.draws,
	losses = EXCLUDED.losses,
	goals_for = EXCLUDED.goals_for,
	goals_against = EXCLUDED.goals_against,
	field_fee_total = EXCLUDED.field_fee_total,
	water_fee_total = EXCLUDED.water_fee_total,
	final_fee_total = EXCLUDED.final_fee_total,
	computed_at = EXCLUDED.computed_at`,
		r.clubID, aggregate.Year, int(aggregate.Month), aggregate.GamesPlayed, aggregate.Wins, aggregate.Draws, aggregate.Losses,
		aggregate.GoalsFor, aggregate.GoalsAgainst,
		aggregate.FieldFeeTotal, aggregate.WaterFeeTotal, aggregate.FinalFeeTotal, aggregate.ComputedAt.UTC())
	return err
}
