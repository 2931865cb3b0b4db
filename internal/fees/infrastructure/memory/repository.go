package memory

import (
	"context"
	"sync"

	"clubledger/internal/fees/application"
	fees "clubledger/internal/fees/domain"
	roster "clubledger/internal/roster/domain"
)

// ResultRepository is an in-memory result store for tests and demos.
type ResultRepository struct {
	mu      sync.RWMutex
	results map[string][]fees.Result
	matches map[string]roster.Match
}

// NewResultRepository constructs a repository.
func NewResultRepository() *ResultRepository {
	return &ResultRepository{
		results: make(map[string][]fees.Result),
		matches: make(map[string]roster.Match),
	}
}

// ListByMatch returns the stored results for a match.
func (r *ResultRepository) ListByMatch(ctx context.Context, matchID string) ([]fees.Result, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]fees.Result(nil), r.results[matchID]...), nil
}

// ReplaceMatch swaps all results and the match aggregates in one step.
func (r *ResultRepository) ReplaceMatch(ctx context.Context, match *roster.Match, results []fees.Result) error {
	_ = ctx
	if match == nil {
		return roster.ErrMatchNotFound
	}
	r.mu.Lock()
	r.results[match.ID] = append([]fees.Result(nil), results...)
	r.matches[match.ID] = *match
	r.mu.Unlock()
	return nil
}

// StoredMatch returns the match row written by the last ReplaceMatch, for
// assertion convenience.
func (r *ResultRepository) StoredMatch(matchID string) (roster.Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	match, ok := r.matches[matchID]
	return match, ok
}

// OverrideRepository is an in-memory override store.
type OverrideRepository struct {
	mu   sync.RWMutex
	data map[string]fees.Override
}

// NewOverrideRepository constructs a repository.
func NewOverrideRepository() *OverrideRepository {
	return &OverrideRepository{data: make(map[string]fees.Override)}
}

func overrideKey(matchID, playerID string) string {
	return matchID + "|" + playerID
}

// ListByMatch returns the active overrides for a match.
func (r *OverrideRepository) ListByMatch(ctx context.Context, matchID string) ([]fees.Override, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var overrides []fees.Override
	for _, override := range r.data {
		if override.MatchID == matchID {
			overrides = append(overrides, override)
		}
	}
	return overrides, nil
}

// Get returns the override for a (match, player) pair, or nil.
func (r *OverrideRepository) Get(ctx context.Context, matchID, playerID string) (*fees.Override, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	override, ok := r.data[overrideKey(matchID, playerID)]
	if !ok {
		return nil, nil
	}
	return &override, nil
}

// Save stores an override, replacing any previous one for the pair.
func (r *OverrideRepository) Save(ctx context.Context, override fees.Override) error {
	_ = ctx
	if err := override.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.data[overrideKey(override.MatchID, override.PlayerID)] = override
	r.mu.Unlock()
	return nil
}

// Delete removes an override if present.
func (r *OverrideRepository) Delete(ctx context.Context, matchID, playerID string) error {
	_ = ctx
	r.mu.Lock()
	delete(r.data, overrideKey(matchID, playerID))
	r.mu.Unlock()
	return nil
}

// ParticipantStore is an in-memory attendance source.
type ParticipantStore struct {
	mu   sync.RWMutex
	data map[string][]application.Participant
}

// NewParticipantStore constructs a store.
func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{data: make(map[string][]application.Participant)}
}

// SetParticipants replaces the participants of a match.
func (s *ParticipantStore) SetParticipants(matchID string, participants []application.Participant) {
	s.mu.Lock()
	s.data[matchID] = append([]application.Participant(nil), participants...)
	s.mu.Unlock()
}

// ListParticipants returns the participants of a match.
func (s *ParticipantStore) ListParticipants(ctx context.Context, matchID string) ([]application.Participant, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]application.Participant(nil), s.data[matchID]...), nil
}
