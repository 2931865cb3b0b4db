package memory

import (
	"context"
	"sync"
	"time"

	roster "clubledger/internal/roster/domain"
)

// MatchRepository is an in-memory match store for tests and demos.
type MatchRepository struct {
	mu   sync.RWMutex
	data map[string]roster.Match
}

// NewMatchRepository constructs a repository.
func NewMatchRepository() *MatchRepository {
	return &MatchRepository{data: make(map[string]roster.Match)}
}

// Get loads a match by id.
func (r *MatchRepository) Get(ctx context.Context, matchID string) (*roster.Match, error) {
	_ = ctx
	if matchID == "" {
		return nil, roster.ErrEmptyMatchID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	match, ok := r.data[matchID]
	if !ok {
		return nil, roster.ErrMatchNotFound
	}
	copy := match
	return &copy, nil
}

// ListByMonth returns matches played in the given month.
func (r *MatchRepository) ListByMonth(ctx context.Context, year int, month time.Month) ([]*roster.Match, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []*roster.Match
	for _, match := range r.data {
		played := match.PlayedAt.UTC()
		if played.Year() == year && played.Month() == month {
			copy := match
			matches = append(matches, &copy)
		}
	}
	return matches, nil
}

// Save stores a match (overwrites existing).
func (r *MatchRepository) Save(ctx context.Context, match *roster.Match) error {
	_ = ctx
	if match == nil || match.ID == "" {
		return roster.ErrEmptyMatchID
	}
	r.mu.Lock()
	r.data[match.ID] = *match
	r.mu.Unlock()
	return nil
}

// PlayerRepository is an in-memory player store.
type PlayerRepository struct {
	mu   sync.RWMutex
	data map[string]roster.Player
}

// NewPlayerRepository constructs a repository.
func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{data: make(map[string]roster.Player)}
}

// Get loads a player by id.
func (r *PlayerRepository) Get(ctx context.Context, playerID string) (*roster.Player, error) {
	_ = ctx
	if playerID == "" {
		return nil, roster.ErrEmptyPlayerID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	player, ok := r.data[playerID]
	if !ok {
		return nil, nil
	}
	copy := player
	return &copy, nil
}

// ListActive returns players currently on the roster.
func (r *PlayerRepository) ListActive(ctx context.Context) ([]*roster.Player, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var players []*roster.Player
	for _, player := range r.data {
		if player.Active {
			copy := player
			players = append(players, &copy)
		}
	}
	return players, nil
}

// Save stores a player (overwrites existing).
func (r *PlayerRepository) Save(ctx context.Context, player *roster.Player) error {
	_ = ctx
	if player == nil || player.ID == "" {
		return roster.ErrEmptyPlayerID
	}
	r.mu.Lock()
	r.data[player.ID] = *player
	r.mu.Unlock()
	return nil
}
