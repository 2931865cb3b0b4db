package interfaces

import (
	"context"

	"clubledger/internal/eventing"
	"clubledger/internal/fees/application"
)

// OutboxPublisher writes fee events to the outbox.
type OutboxPublisher struct {
	publisher *eventing.Publisher
	clubID    string
}

// NewOutboxPublisher constructs an outbox publisher.
func NewOutboxPublisher(publisher *eventing.Publisher, clubID string) *OutboxPublisher {
	return &OutboxPublisher{publisher: publisher, clubID: clubID}
}

// PublishFeesRecalculated writes the event to the outbox.
func (p *OutboxPublisher) PublishFeesRecalculated(ctx context.Context, event application.FeesRecalculated) error {
	if p == nil || p.publisher == nil {
		return nil
	}
	ctx = eventing.WithClubID(ctx, p.clubID)
	return p.publisher.Publish(ctx, event)
}

// PublishOverrideApplied writes the event to the outbox.
func (p *OutboxPublisher) PublishOverrideApplied(ctx context.Context, event application.OverrideApplied) error {
	if p == nil || p.publisher == nil {
		return nil
	}
	ctx = eventing.WithClubID(ctx, p.clubID)
	return p.publisher.Publish(ctx, event)
}
