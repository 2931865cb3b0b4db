package auth

import (
	"context"
	"database/sql"
	"errors"
)

var (
	// ErrClubMismatch indicates resource belongs to a different club.
	ErrClubMismatch = errors.New("club mismatch")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("resource not found")
)

// MatchClubChecker validates match club ownership.
type MatchClubChecker interface {
	EnsureMatchClub(ctx context.Context, clubID, matchID string) error
}

// MatchChecker checks match ownership against the matches table.
type MatchChecker struct {
	db *sql.DB
}

// NewMatchChecker constructs a MatchChecker.
func NewMatchChecker(db *sql.DB) *MatchChecker {
	if db == nil {
		return nil
	}
	return &MatchChecker{db: db}
}

// EnsureMatchClub verifies the match belongs to the club.
func (c *MatchChecker) EnsureMatchClub(ctx context.Context, clubID, matchID string) error {
	if c == nil || c.db == nil {
		return nil
	}
	if clubID == "" || matchID == "" {
		return nil
	}
	var owner string
	err := c.db.QueryRowContext(ctx, `SELECT club_id FROM club_matches WHERE id = $1`, matchID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != clubID {
		return ErrClubMismatch
	}
	return nil
}
