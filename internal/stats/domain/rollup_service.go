package stats

import (
	"context"
	"errors"
	"time"

	roster "clubledger/internal/roster/domain"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Publisher emits rollup events.
type Publisher interface {
	PublishMonthlyStatsRecomputed(ctx context.Context, event MonthlyStatsRecomputed) error
}

// RollupService folds finalized matches into monthly buckets.
type RollupService struct {
	matches   roster.MatchRepository
	repo      AggregateRepository
	publisher Publisher
	clock     Clock
}

// NewRollupService constructs the service.
func NewRollupService(matches roster.MatchRepository, repo AggregateRepository, publisher Publisher, clock Clock) (*RollupService, error) {
	if matches == nil {
		return nil, errors.New("rollup service: nil match repository")
	}
	if repo == nil {
		return nil, errors.New("rollup service: nil aggregate repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &RollupService{matches: matches, repo: repo, publisher: publisher, clock: clock}, nil
}

// RollupMonth recomputes the bucket from scratch and overwrites the stored
// aggregate.
func (s *RollupService) RollupMonth(ctx context.Context, year int, month time.Month) (*MonthlyAggregate, error) {
	if year <= 0 || month < time.January || month > time.December {
		return nil, ErrInvalidPeriod
	}

	matches, err := s.matches.ListByMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	aggregate := &MonthlyAggregate{Year: year, Month: month}
	for _, match := range matches {
		if match == nil {
			continue
		}
		aggregate.GamesPlayed++
		switch match.Result {
		case roster.ResultWin:
			aggregate.Wins++
		case roster.ResultDraw:
			aggregate.Draws++
		case roster.ResultLoss:
			aggregate.Losses++
		}
		aggregate.GoalsFor += match.GoalsFor
		aggregate.GoalsAgainst += match.GoalsAgainst
		aggregate.FieldFeeTotal += match.FieldFeeTotal
		aggregate.WaterFeeTotal += match.WaterFeeTotal
		aggregate.FinalFeeTotal += match.TotalFinalFees
	}
	aggregate.ComputedAt = s.clock.Now()

	if err := s.repo.Save(ctx, aggregate); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		err := s.publisher.PublishMonthlyStatsRecomputed(ctx, MonthlyStatsRecomputed{
			Year:       year,
			Month:      month,
			OccurredAt: s.clock.Now(),
		})
		if err != nil {
			return nil, err
		}
	}
	return aggregate, nil
}
