package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"clubledger/internal/fees/application"
	fees "clubledger/internal/fees/domain"
	roster "clubledger/internal/roster/domain"
)

// ResultRepository persists computed fee results.
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository constructs a repository.
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// ListByMatch returns the stored results for a match.
func (r *ResultRepository) ListByMatch(ctx context.Context, matchID string) ([]fees.Result, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("result repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT match_id, player_id, total_time, field_fee, late_fee, video_fee, total_fee
FROM club_fee_results
WHERE match_id = $1
ORDER BY player_id ASC`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []fees.Result
	for rows.Next() {
		var row fees.Result
		if err := rows.Scan(&row.MatchID, &row.PlayerID, &row.TotalTime, &row.FieldFee, &row.LateFee, &row.VideoFee, &row.TotalFee); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceMatch swaps all fee rows of a match and refreshes the match row's
// coefficient and aggregates in one transaction. Either every participant
// reflects the new coefficient or none do.
func (r *ResultRepository) ReplaceMatch(ctx context.Context, match *roster.Match, results []fees.Result) error {
	if r == nil || r.db == nil {
		return errors.New("result repo: nil db")
	}
	if match == nil {
		return roster.ErrMatchNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM club_fee_results WHERE match_id = $1`, match.ID); err != nil {
		_ = tx.Rollback()
		return err
	}

	computedAt := time.Now().UTC()
	for _, result := range results {
		_, err := tx.ExecContext(ctx, `
INSERT INTO club_fee_results (
	match_id, player_id, total_time, field_fee, late_fee, video_fee, total_fee, computed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			result.MatchID, result.PlayerID, result.TotalTime, result.FieldFee, result.LateFee, result.VideoFee, result.TotalFee, computedAt)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `
UPDATE club_matches
SET fee_coefficient = $1, total_participants = $2, total_final_fees = $3, updated_at = $4
WHERE id = $5`,
		match.FeeCoefficient, match.TotalParticipants, match.TotalFinalFees, computedAt, match.ID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return roster.ErrMatchNotFound
	}
	return tx.Commit()
}

// OverrideRepository persists manual fee overrides.
type OverrideRepository struct {
	db *sql.DB
}

// NewOverrideRepository constructs a repository.
func NewOverrideRepository(db *sql.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// ListByMatch returns the active overrides for a match.
func (r *OverrideRepository) ListByMatch(ctx context.Context, matchID string) ([]fees.Override, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("override repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT match_id, player_id, amount, note, created_by, created_at
FROM club_fee_overrides
WHERE match_id = $1
ORDER BY player_id ASC`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []fees.Override
	for rows.Next() {
		var row fees.Override
		if err := rows.Scan(&row.MatchID, &row.PlayerID, &row.Amount, &row.Note, &row.CreatedBy, &row.CreatedAt); err != nil {
			return nil, err
		}
		row.CreatedAt = row.CreatedAt.UTC()
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns the override for a (match, player) pair, or nil.
func (r *OverrideRepository) Get(ctx context.Context, matchID, playerID string) (*fees.Override, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("override repo: nil db")
	}
	var row fees.Override
	err := r.db.QueryRowContext(ctx, `
SELECT match_id, player_id, amount, note, created_by, created_at
FROM club_fee_overrides
WHERE match_id = $1 AND player_id = $2
LIMIT 1`, matchID, playerID).Scan(&row.MatchID, &row.PlayerID, &row.Amount, &row.Note, &row.CreatedBy, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.CreatedAt = row.CreatedAt.UTC()
	return &row, nil
}

// Save stores an override, replacing any previous one for the pair.
func (r *OverrideRepository) Save(ctx context.Context, override fees.Override) error {
	if r == nil || r.db == nil {
		return errors.New("override repo: nil db")
	}
	if err := override.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO club_fee_overrides (
	match_id, player_id, amount, note, created_by, created_at
) VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (match_id, player_id) DO UPDATE SET
	amount = EXCLUDED.amount,
	note = EXCLUDED.note,
	created_by = EXCLUDED.created_by,
	created_at = EXCLUDED.created_at`,
		override.MatchID, override.PlayerID, override.Amount, override.Note, override.CreatedBy, override.CreatedAt)
	return err
}

// Delete removes an override if present.
func (r *OverrideRepository) Delete(ctx context.Context, matchID, playerID string) error {
	if r == nil || r.db == nil {
		return errors.New("override repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
DELETE FROM club_fee_overrides
WHERE match_id = $1 AND player_id = $2`, matchID, playerID)
	return err
}

// ParticipantRepository reads stored attendance documents.
type ParticipantRepository struct {
	db *sql.DB
}

// NewParticipantRepository constructs a repository.
func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// ListParticipants returns the participants of a match with their raw
// attendance documents. Validation happens in the recalculation pass, not
// here, so a malformed stored document is attributed to its player.
func (r *ParticipantRepository) ListParticipants(ctx context.Context, matchID string) ([]application.Participant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("participant repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT player_id, attendance, late_arrival
FROM club_match_participants
WHERE match_id = $1
ORDER BY player_id ASC`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []application.Participant
	for rows.Next() {
		var row application.Participant
		if err := rows.Scan(&row.PlayerID, &row.Attendance, &row.LateArrival); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveParticipant upserts one player's attendance for a match.
func (r *ParticipantRepository) SaveParticipant(ctx context.Context, matchID string, participant application.Participant) error {
	if r == nil || r.db == nil {
		return errors.New("participant repo: nil db")
	}
	if matchID == "" {
		return fees.ErrEmptyMatchID
	}
	if participant.PlayerID == "" {
		return fees.ErrEmptyPlayerID
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO club_match_participants (
	match_id, player_id, attendance, late_arrival, updated_at
) VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (match_id, player_id) DO UPDATE SET
	attendance = EXCLUDED.attendance,
	late_arrival = EXCLUDED.late_arrival,
	updated_at = EXCLUDED.updated_at`,
		matchID, participant.PlayerID, participant.Attendance, participant.LateArrival, time.Now().UTC())
	return err
}
