package interfaces

import (
	"context"

	"clubledger/internal/eventing"
	stats "clubledger/internal/stats/domain"
)

// OutboxPublisher writes stats events to the outbox.
type OutboxPublisher struct {
	publisher *eventing.Publisher
	clubID    string
}

// NewOutboxPublisher constructs an outbox publisher.
func NewOutboxPublisher(publisher *eventing.Publisher, clubID string) *OutboxPublisher {
	return &OutboxPublisher{publisher: publisher, clubID: clubID}
}

// PublishMonthlyStatsRecomputed writes the event to the outbox.
func (p *OutboxPublisher) PublishMonthlyStatsRecomputed(ctx context.Context, event stats.MonthlyStatsRecomputed) error {
	if p == nil || p.publisher == nil {
		return nil
	}
	ctx = eventing.WithClubID(ctx, p.clubID)
	return p.publisher.Publish(ctx, event)
}
