package interfaces

import (
	"context"
	"errors"
	"log"
	"time"

	"clubledger/internal/eventing"
	"clubledger/internal/fees/application"
	"clubledger/internal/observability/metrics"
	roster "clubledger/internal/roster/domain"
	stats "clubledger/internal/stats/domain"
)

// FeesRecalculatedHandler re-folds a month's aggregate whenever a match in
// that month is recalculated, keeping the bucket consistent with the fee
// aggregates without waiting for the next manual rollup.
type FeesRecalculatedHandler struct {
	matches roster.MatchRepository
	rollup  *stats.RollupService
	logger  *log.Logger
}

// NewFeesRecalculatedHandler constructs a handler.
func NewFeesRecalculatedHandler(matches roster.MatchRepository, rollup *stats.RollupService, logger *log.Logger) (*FeesRecalculatedHandler, error) {
	if matches == nil {
		return nil, errors.New("stats consumer: nil match repository")
	}
	if rollup == nil {
		return nil, errors.New("stats consumer: nil rollup service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FeesRecalculatedHandler{matches: matches, rollup: rollup, logger: logger}, nil
}

// HandleFeesRecalculated re-folds the bucket of the recalculated match.
func (h *FeesRecalculatedHandler) HandleFeesRecalculated(ctx context.Context, event application.FeesRecalculated) error {
	if env, ok := eventing.EnvelopeFromContext(ctx); ok && !env.OccurredAt.IsZero() {
		metrics.ObserveConsumerLag("stats.refold", time.Since(env.OccurredAt))
	}
	match, err := h.matches.Get(ctx, event.MatchID)
	if err != nil {
		return err
	}
	if match == nil {
		return roster.ErrMatchNotFound
	}
	played := match.PlayedAt.UTC()
	aggregate, err := h.rollup.RollupMonth(ctx, played.Year(), played.Month())
	if err != nil {
		return err
	}
	h.logger.Printf("monthly stats refolded: period=%04d-%02d games=%d", aggregate.Year, int(aggregate.Month), aggregate.GamesPlayed)
	return nil
}
