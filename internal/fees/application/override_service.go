package application

import (
	"context"
	"errors"

	fees "clubledger/internal/fees/domain"
)

// OverrideRepository persists manual fee overrides.
type OverrideRepository interface {
	OverrideReader
	Get(ctx context.Context, matchID, playerID string) (*fees.Override, error)
	Save(ctx context.Context, override fees.Override) error
	Delete(ctx context.Context, matchID, playerID string) error
}

// OverridePublisher emits override events.
type OverridePublisher interface {
	PublishOverrideApplied(ctx context.Context, event OverrideApplied) error
}

// OverrideService applies and removes manual fee corrections. Overrides are
// additive metadata on top of computed results; applying one never touches
// the computed baseline.
type OverrideService struct {
	overrides OverrideRepository
	publisher OverridePublisher
	clock     Clock
}

// NewOverrideService constructs the service.
func NewOverrideService(overrides OverrideRepository, publisher OverridePublisher, clock Clock) (*OverrideService, error) {
	if overrides == nil {
		return nil, errors.New("override service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &OverrideService{overrides: overrides, publisher: publisher, clock: clock}, nil
}

// Apply validates and stores an override, replacing any previous one for the
// same (player, match) pair.
func (s *OverrideService) Apply(ctx context.Context, override fees.Override) error {
	if err := override.Validate(); err != nil {
		return err
	}
	if override.CreatedAt.IsZero() {
		override.CreatedAt = s.clock.Now()
	}
	if err := s.overrides.Save(ctx, override); err != nil {
		return err
	}
	return s.publish(ctx, OverrideApplied{
		MatchID:    override.MatchID,
		PlayerID:   override.PlayerID,
		Amount:     override.Amount,
		OccurredAt: s.clock.Now(),
	})
}

// Remove deletes an active override; the final fee reverts to the computed
// value without recomputation.
func (s *OverrideService) Remove(ctx context.Context, matchID, playerID string) error {
	if matchID == "" {
		return fees.ErrEmptyMatchID
	}
	if playerID == "" {
		return fees.ErrEmptyPlayerID
	}
	if err := s.overrides.Delete(ctx, matchID, playerID); err != nil {
		return err
	}
	return s.publish(ctx, OverrideApplied{
		MatchID:    matchID,
		PlayerID:   playerID,
		Removed:    true,
		OccurredAt: s.clock.Now(),
	})
}

func (s *OverrideService) publish(ctx context.Context, event OverrideApplied) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishOverrideApplied(ctx, event)
}
