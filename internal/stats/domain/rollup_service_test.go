package stats_test

import (
	"context"
	"testing"
	"time"

	roster "clubledger/internal/roster/domain"
	rostermemory "clubledger/internal/roster/infrastructure/memory"
	stats "clubledger/internal/stats/domain"
	statsmemory "clubledger/internal/stats/infrastructure/memory"
)

func TestRollupMonth_FoldsFinalizedMatches(t *testing.T) {
	ctx := context.Background()
	matches := rostermemory.NewMatchRepository()
	repo := statsmemory.NewAggregateRepository()

	saveMatch(t, matches, &roster.Match{
		ID: "m1", PlayedAt: time.Date(2026, time.March, 7, 19, 0, 0, 0, time.UTC),
		GoalsFor: 3, GoalsAgainst: 1, Result: roster.ResultWin,
		FieldFeeTotal: 300, WaterFeeTotal: 30, TotalFinalFees: 360,
	})
	saveMatch(t, matches, &roster.Match{
		ID: "m2", PlayedAt: time.Date(2026, time.March, 21, 19, 0, 0, 0, time.UTC),
		GoalsFor: 2, GoalsAgainst: 2, Result: roster.ResultDraw,
		FieldFeeTotal: 270, WaterFeeTotal: 0, TotalFinalFees: 275,
	})
	// Different month: must not leak into the March bucket.
	saveMatch(t, matches, &roster.Match{
		ID: "m3", PlayedAt: time.Date(2026, time.April, 4, 19, 0, 0, 0, time.UTC),
		GoalsFor: 0, GoalsAgainst: 1, Result: roster.ResultLoss,
		FieldFeeTotal: 300, TotalFinalFees: 310,
	})

	service, err := stats.NewRollupService(matches, repo, nil, fixedClock{now: time.Date(2026, time.April, 1, 6, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("new rollup service: %v", err)
	}

	aggregate, err := service.RollupMonth(ctx, 2026, time.March)
	if err != nil {
		t.Fatalf("rollup month: %v", err)
	}

	if aggregate.GamesPlayed != 2 || aggregate.Wins != 1 || aggregate.Draws != 1 || aggregate.Losses != 0 {
		t.Fatalf("result counts mismatch: %+v", aggregate)
	}
	if aggregate.GoalsFor != 5 || aggregate.GoalsAgainst != 3 {
		t.Fatalf("goal counts mismatch: %+v", aggregate)
	}
	if aggregate.FieldFeeTotal != 570 || aggregate.WaterFeeTotal != 30 || aggregate.FinalFeeTotal != 635 {
		t.Fatalf("financial totals mismatch: %+v", aggregate)
	}

	stored, err := repo.Get(ctx, 2026, time.March)
	if err != nil {
		t.Fatalf("get stored aggregate: %v", err)
	}
	if *stored != *aggregate {
		t.Fatalf("stored aggregate mismatch:\n stored=%+v\ncomputed=%+v", stored, aggregate)
	}
}

func TestRollupMonth_FullRefoldOverwrites(t *testing.T) {
	ctx := context.Background()
	matches := rostermemory.NewMatchRepository()
	repo := statsmemory.NewAggregateRepository()

	match := &roster.Match{
		ID: "m1", PlayedAt: time.Date(2026, time.May, 2, 19, 0, 0, 0, time.UTC),
		GoalsFor: 1, GoalsAgainst: 0, Result: roster.ResultWin,
		FieldFeeTotal: 300, TotalFinalFees: 320,
	}
	saveMatch(t, matches, match)

	service, err := stats.NewRollupService(matches, repo, nil, fixedClock{now: time.Now().UTC()})
	if err != nil {
		t.Fatalf("new rollup service: %v", err)
	}
	if _, err := service.RollupMonth(ctx, 2026, time.May); err != nil {
		t.Fatalf("first rollup: %v", err)
	}

	// A corrected score re-folds to the new truth instead of accumulating.
	match.GoalsFor = 0
	match.GoalsAgainst = 2
	match.Result = roster.ResultLoss
	saveMatch(t, matches, match)

	aggregate, err := service.RollupMonth(ctx, 2026, time.May)
	if err != nil {
		t.Fatalf("second rollup: %v", err)
	}
	if aggregate.GamesPlayed != 1 || aggregate.Wins != 0 || aggregate.Losses != 1 {
		t.Fatalf("re-fold did not overwrite: %+v", aggregate)
	}
}

func TestRollupMonth_InvalidPeriod(t *testing.T) {
	service, err := stats.NewRollupService(rostermemory.NewMatchRepository(), statsmemory.NewAggregateRepository(), nil, nil)
	if err != nil {
		t.Fatalf("new rollup service: %v", err)
	}
	if _, err := service.RollupMonth(context.Background(), 0, time.March); err != stats.ErrInvalidPeriod {
		t.Fatalf("expected invalid period error, got %v", err)
	}
}

func saveMatch(t *testing.T, repo *rostermemory.MatchRepository, match *roster.Match) {
	t.Helper()
	if err := repo.Save(context.Background(), match); err != nil {
		t.Fatalf("save match: %v", err)
	}
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
