package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	attendance "clubledger/internal/attendance/domain"
	fees "clubledger/internal/fees/domain"
	roster "clubledger/internal/roster/domain"
)

// Participant is one player's attendance in a match, as supplied by the
// persistence boundary. Attendance is the stored boundary JSON; it is
// parsed and validated per participant during the recalculation pass, so a
// malformed document aborts the whole pass identifying the player.
type Participant struct {
	PlayerID    string
	Attendance  []byte
	LateArrival bool
}

// ParticipantReader loads the participants of a match.
type ParticipantReader interface {
	ListParticipants(ctx context.Context, matchID string) ([]Participant, error)
}

// ResultRepository persists computed fee results. ReplaceMatch must apply
// the staged results, the refreshed coefficient and the match aggregates as
// one unit: either every participant reflects the new coefficient or none do.
type ResultRepository interface {
	ListByMatch(ctx context.Context, matchID string) ([]fees.Result, error)
	ReplaceMatch(ctx context.Context, match *roster.Match, results []fees.Result) error
}

// OverrideReader loads active overrides for a match.
type OverrideReader interface {
	ListByMatch(ctx context.Context, matchID string) ([]fees.Override, error)
}

// SettingsProvider supplies the club-level default rates.
type SettingsProvider interface {
	VideoFeeRate(ctx context.Context) (float64, error)
	LateFeeRate(ctx context.Context) (float64, error)
}

// RecalcPublisher emits the recalculation-occurred signal.
type RecalcPublisher interface {
	PublishFeesRecalculated(ctx context.Context, event FeesRecalculated) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Summary reports the outcome of one recalculation pass.
type Summary struct {
	TotalParticipants int
	FeeCoefficient    float64
	TotalFinalFees    float64
}

// ErrPublishAfterCommit marks a pass whose fees committed but whose
// recalculated event could not be recorded. The summary returned alongside
// it is valid; only the invalidation signal was lost.
var ErrPublishAfterCommit = errors.New("fees recalculated but event publish failed")

// MatchRecalculationService orchestrates full-match fee recomputation.
// A cost change invalidates every participant's fee at once because the
// coefficient is match-global, so the whole match is always recomputed.
type MatchRecalculationService struct {
	matches      roster.MatchRepository
	participants ParticipantReader
	results      ResultRepository
	overrides    OverrideReader
	settings     SettingsProvider
	publisher    RecalcPublisher
	clock        Clock

	mu         sync.Mutex
	matchLocks map[string]*matchLock
}

// matchLock serializes recalculation passes for one match. The reference
// count lets lockMatch drop the entry once the last waiter releases it, so
// the lock table stays bounded by in-flight recalculations.
type matchLock struct {
	mu   sync.Mutex
	refs int
}

// NewMatchRecalculationService constructs the service.
func NewMatchRecalculationService(
	matches roster.MatchRepository,
	participants ParticipantReader,
	results ResultRepository,
	overrides OverrideReader,
	settings SettingsProvider,
	publisher RecalcPublisher,
	clock Clock,
) (*MatchRecalculationService, error) {
	if matches == nil {
		return nil, errors.New("recalc service: nil match repository")
	}
	if participants == nil {
		return nil, errors.New("recalc service: nil participant reader")
	}
	if results == nil {
		return nil, errors.New("recalc service: nil result repository")
	}
	if overrides == nil {
		return nil, errors.New("recalc service: nil override reader")
	}
	if settings == nil {
		return nil, errors.New("recalc service: nil settings provider")
	}
	if clock == nil {
		clock = SystemClock{}
	}

	return &MatchRecalculationService{
		matches:      matches,
		participants: participants,
		results:      results,
		overrides:    overrides,
		settings:     settings,
		publisher:    publisher,
		clock:        clock,
		matchLocks:   make(map[string]*matchLock),
	}, nil
}

// RecalculateMatch recomputes every participant's fee for a match and
// refreshes the stored coefficient and aggregates. All-or-nothing: results
// are staged in memory, the first failing participant aborts the pass and
// nothing is written. Concurrent calls for the same match serialize; the
// coefficient is derived once per pass and shared by every participant.
func (s *MatchRecalculationService) RecalculateMatch(ctx context.Context, matchID string) (Summary, error) {
	if matchID == "" {
		return Summary{}, fees.ErrEmptyMatchID
	}

	unlock := s.lockMatch(matchID)
	defer unlock()

	match, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return Summary{}, err
	}
	if match == nil {
		return Summary{}, roster.ErrMatchNotFound
	}

	coefficient, err := fees.ComputeCoefficient(match.FieldFeeTotal, match.WaterFeeTotal)
	if err != nil {
		return Summary{}, err
	}

	rates, err := s.resolveRates(ctx, match)
	if err != nil {
		return Summary{}, err
	}

	cells := match.ScheduledCells
	if cells == 0 {
		cells = attendance.CellCount
	}

	participants, err := s.participants.ListParticipants(ctx, matchID)
	if err != nil {
		return Summary{}, err
	}

	staged := make([]fees.Result, 0, len(participants))
	for _, participant := range participants {
		record, err := attendance.Parse(participant.Attendance)
		if err != nil {
			return Summary{}, &fees.RecalculationError{MatchID: matchID, PlayerID: participant.PlayerID, Err: err}
		}
		record.MarkLateArrival(participant.LateArrival)

		result, err := fees.ComputePlayerFee(participant.PlayerID, matchID, record, coefficient, rates, cells)
		if err != nil {
			return Summary{}, &fees.RecalculationError{MatchID: matchID, PlayerID: participant.PlayerID, Err: err}
		}
		staged = append(staged, result)
	}

	overrides, err := s.overrides.ListByMatch(ctx, matchID)
	if err != nil {
		return Summary{}, err
	}
	overrideByPlayer := make(map[string]*fees.Override, len(overrides))
	for i := range overrides {
		overrideByPlayer[overrides[i].PlayerID] = &overrides[i]
	}

	var totalFinalFees float64
	for _, result := range staged {
		totalFinalFees += fees.FinalFee(result, overrideByPlayer[result.PlayerID])
	}

	updated := *match
	updated.FeeCoefficient = coefficient
	updated.TotalParticipants = len(staged)
	updated.TotalFinalFees = totalFinalFees

	if err := s.results.ReplaceMatch(ctx, &updated, staged); err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalParticipants: len(staged),
		FeeCoefficient:    coefficient,
		TotalFinalFees:    totalFinalFees,
	}

	if s.publisher != nil {
		err := s.publisher.PublishFeesRecalculated(ctx, FeesRecalculated{
			MatchID:           matchID,
			TotalParticipants: summary.TotalParticipants,
			FeeCoefficient:    summary.FeeCoefficient,
			TotalFinalFees:    summary.TotalFinalFees,
			OccurredAt:        s.clock.Now(),
		})
		if err != nil {
			return summary, fmt.Errorf("%w: %v", ErrPublishAfterCommit, err)
		}
	}

	return summary, nil
}

func (s *MatchRecalculationService) resolveRates(ctx context.Context, match *roster.Match) (fees.Rates, error) {
	var rates fees.Rates

	if match.VideoFeeRate != nil {
		rates.VideoFee = *match.VideoFeeRate
	} else {
		rate, err := s.settings.VideoFeeRate(ctx)
		if err != nil {
			return fees.Rates{}, err
		}
		rates.VideoFee = rate
	}

	if match.LateFeeRate != nil {
		rates.LateFee = *match.LateFeeRate
	} else {
		rate, err := s.settings.LateFeeRate(ctx)
		if err != nil {
			return fees.Rates{}, err
		}
		rates.LateFee = rate
	}

	return rates, rates.Validate()
}

func (s *MatchRecalculationService) lockMatch(matchID string) func() {
	s.mu.Lock()
	entry, ok := s.matchLocks[matchID]
	if !ok {
		entry = &matchLock{}
		s.matchLocks[matchID] = entry
	}
	entry.refs++
	s.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		s.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(s.matchLocks, matchID)
		}
		s.mu.Unlock()
	}
}
