package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	roster "clubledger/internal/roster/domain"
)

// MatchRepository persists matches scoped to one club.
type MatchRepository struct {
	db     *sql.DB
	clubID string
}

// NewMatchRepository constructs a repository.
func NewMatchRepository(db *sql.DB, clubID string) *MatchRepository {
	return &MatchRepository{db: db, clubID: clubID}
}

// Get loads one match.
func (r *MatchRepository) Get(ctx context.Context, matchID string) (*roster.Match, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("match repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, played_at, opponent, goals_for, goals_against, result, notes,
	field_fee_total, water_fee_total, fee_coefficient,
	video_fee_rate, late_fee_rate, scheduled_cells,
	total_participants, total_final_fees
FROM club_matches
WHERE club_id = $1 AND id = $2
LIMIT 1`, r.clubID, matchID)
	return scanMatch(row)
}

// ListByMonth returns the club's matches played in a calendar month.
func (r *MatchRepository) ListByMonth(ctx context.Context, year int, month time.Month) ([]*roster.Match, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("match repo: nil db")
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows, err := r.db.QueryContext(ctx, `
SELECT id, played_at, opponent, goals_for, goals_against, result, notes,
	field_fee_total, water_fee_total, fee_coefficient,
	video_fee_rate, late_fee_rate, scheduled_cells,
	total_participants, total_final_fees
FROM club_matches
WHERE club_id = $1 AND played_at >= $2 AND played_at < $3
ORDER BY played_at ASC`, r.clubID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*roster.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, match)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Save upserts a match row.
func (r *MatchRepository) Save(ctx context.Context, match *roster.Match) error {
	if r == nil || r.db == nil {
		return errors.New("match repo: nil db")
	}
	if match == nil || match.ID == "" {
		return roster.ErrEmptyMatchID
	}
	var videoRate, lateRate sql.NullFloat64
	if match.VideoFeeRate != nil {
		videoRate = sql.NullFloat64{Float64: *match.VideoFeeRate, Valid: true}
	}
	if match.LateFeeRate != nil {
		lateRate = sql.NullFloat64{Float64: *match.LateFeeRate, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO club_matches (
	id, club_id, played_at, opponent, goals_for, goals_against, result, notes,
	field_fee_total, water_fee_total, fee_coefficient,
	video_fee_rate, late_fee_rate, scheduled_cells,
	total_participants, total_final_fees, updated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
)
ON CONFLICT (id) DO UPDATE SET
	played_at = EXCLUDED.played_at,
	opponent = EXCLUDED.opponent,
	goals_for = EXCLUDED.goals_for,
	goals_against = EXCLUDED.goals_against,
	result = EXCLUDED.result,
	notes = EXCLUDED.notes,
	field_fee_total = EXCLUDED.field_fee_total,
	water_fee_total = EXCLUDED.water_fee_total,
	fee_coefficient = EXCLUDED.fee_coefficient,
	video_fee_rate = EXCLUDED.video_fee_rate,
	late_fee_rate = EXCLUDED.late_fee_rate,
	scheduled_cells = EXCLUDED.scheduled_cells,
	total_participants = EXCLUDED.total_participants,
	total_final_fees = EXCLUDED.total_final_fees,
	updated_at = EXCLUDED.updated_at`,
		match.ID, r.clubID, match.PlayedAt.UTC(), match.Opponent, match.GoalsFor, match.GoalsAgainst, string(match.Result), match.Notes,
		match.FieldFeeTotal, match.WaterFeeTotal, match.FeeCoefficient,
		videoRate, lateRate, match.ScheduledCells,
		match.TotalParticipants, match.TotalFinalFees, time.Now().UTC())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*roster.Match, error) {
	var match roster.Match
	var result string
	var videoRate, lateRate sql.NullFloat64
	err := row.Scan(
		&match.ID, &match.PlayedAt, &match.Opponent, &match.GoalsFor, &match.GoalsAgainst, &result, &match.Notes,
		&match.FieldFeeTotal, &match.WaterFeeTotal, &match.FeeCoefficient,
		&videoRate, &lateRate, &match.ScheduledCells,
		&match.TotalParticipants, &match.TotalFinalFees,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roster.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	match.PlayedAt = match.PlayedAt.UTC()
	match.Result = roster.Result(result)
	if videoRate.Valid {
		value := videoRate.Float64
		match.VideoFeeRate = &value
	}
	if lateRate.Valid {
		value := lateRate.Float64
		match.LateFeeRate = &value
	}
	return &match, nil
}

// PlayerRepository persists players scoped to one club.
type PlayerRepository struct {
	db     *sql.DB
	clubID string
}

// NewPlayerRepository constructs a repository.
func NewPlayerRepository(db *sql.DB, clubID string) *PlayerRepository {
	return &PlayerRepository{db: db, clubID: clubID}
}

// Get loads one player.
func (r *PlayerRepository) Get(ctx context.Context, playerID string) (*roster.Player, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("player repo: nil db")
	}
	var player roster.Player
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, active, joined_at
FROM club_players
WHERE club_id = $1 AND id = $2
LIMIT 1`, r.clubID, playerID).Scan(&player.ID, &player.Name, &player.Active, &player.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roster.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	player.JoinedAt = player.JoinedAt.UTC()
	return &player, nil
}

// ListActive returns the club's active players.
func (r *PlayerRepository) ListActive(ctx context.Context) ([]*roster.Player, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("player repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, active, joined_at
FROM club_players
WHERE club_id = $1 AND active
ORDER BY name ASC`, r.clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*roster.Player
	for rows.Next() {
		var player roster.Player
		if err := rows.Scan(&player.ID, &player.Name, &player.Active, &player.JoinedAt); err != nil {
			return nil, err
		}
		player.JoinedAt = player.JoinedAt.UTC()
		result = append(result, &player)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Save upserts a player row.
func (r *PlayerRepository) Save(ctx context.Context, player *roster.Player) error {
	if r == nil || r.db == nil {
		return errors.New("player repo: nil db")
	}
	if player == nil || player.ID == "" {
		return roster.ErrEmptyPlayerID
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO club_players (
	id, club_id, name, active, joined_at
) VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	active = EXCLUDED.active,
	joined_at = EXCLUDED.joined_at`,
		player.ID, r.clubID, player.Name, player.Active, player.JoinedAt.UTC())
	return err
}
