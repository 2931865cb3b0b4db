package interfaces

import (
	"context"
	"errors"
	"log"

	"clubledger/internal/fees/application"
)

// LoggingPublisher logs fee events.
type LoggingPublisher struct {
	logger *log.Logger
}

// NewLoggingPublisher constructs a logging publisher.
func NewLoggingPublisher(logger *log.Logger) *LoggingPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingPublisher{logger: logger}
}

// PublishFeesRecalculated logs the event.
func (p *LoggingPublisher) PublishFeesRecalculated(ctx context.Context, event application.FeesRecalculated) error {
	_ = ctx
	if p == nil {
		return errors.New("fees publisher: nil publisher")
	}
	p.logger.Printf("fees recalculated: match=%s participants=%d coefficient=%.4f total=%.2f", event.MatchID, event.TotalParticipants, event.FeeCoefficient, event.TotalFinalFees)
	return nil
}

// PublishOverrideApplied logs the event.
func (p *LoggingPublisher) PublishOverrideApplied(ctx context.Context, event application.OverrideApplied) error {
	_ = ctx
	if p == nil {
		return errors.New("fees publisher: nil publisher")
	}
	if event.Removed {
		p.logger.Printf("override removed: match=%s player=%s", event.MatchID, event.PlayerID)
		return nil
	}
	p.logger.Printf("override applied: match=%s player=%s amount=%.2f", event.MatchID, event.PlayerID, event.Amount)
	return nil
}
