package application_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"clubledger/internal/fees/application"
	fees "clubledger/internal/fees/domain"
	"clubledger/internal/fees/infrastructure/memory"
	roster "clubledger/internal/roster/domain"
	rostermemory "clubledger/internal/roster/infrastructure/memory"
)

const (
	fullTwoSections = `{"attendance":{"1":{"1":1,"2":1,"3":1},"2":{"1":1,"2":1,"3":1}},"goalkeeper":{}}`
	fullOneSection  = `{"attendance":{"1":{"1":1,"2":1,"3":1}},"goalkeeper":{}}`
	malformedCells  = `{"attendance":{"2":{"1":0.75}},"goalkeeper":{}}`
)

func TestRecalculateMatch_EndToEnd(t *testing.T) {
	ctx := context.Background()
	env := newRecalcEnv(t)

	env.saveMatch(t, &roster.Match{
		ID:            "m1",
		PlayedAt:      time.Date(2026, time.March, 14, 19, 0, 0, 0, time.UTC),
		FieldFeeTotal: 300,
		WaterFeeTotal: 0,
	})
	env.participants.SetParticipants("m1", []application.Participant{
		{PlayerID: "p1", Attendance: []byte(fullTwoSections)},
		{PlayerID: "p2", Attendance: []byte(fullOneSection), LateArrival: true},
	})

	summary, err := env.service.RecalculateMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}

	if summary.TotalParticipants != 2 {
		t.Fatalf("participants mismatch: got=%d want=2", summary.TotalParticipants)
	}
	wantCoefficient := 300.0 / fees.NominalMatchTimeUnits
	if summary.FeeCoefficient != wantCoefficient {
		t.Fatalf("coefficient mismatch: got=%v want=%v", summary.FeeCoefficient, wantCoefficient)
	}

	results, err := env.results.ListByMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	byPlayer := make(map[string]fees.Result, len(results))
	for _, result := range results {
		byPlayer[result.PlayerID] = result
	}

	// p1: 6 time units, coefficient 300/90: field 20, video 6/9*2 -> 1.
	p1 := byPlayer["p1"]
	if p1.FieldFee != 20 || p1.VideoFee != 1 || p1.LateFee != 0 || p1.TotalFee != 21 {
		t.Fatalf("p1 fee breakdown mismatch: %+v", p1)
	}
	// p2: 3 time units, late: field 10, video 3/9*2 -> 1, late 10.
	p2 := byPlayer["p2"]
	if p2.FieldFee != 10 || p2.VideoFee != 1 || p2.LateFee != 10 || p2.TotalFee != 21 {
		t.Fatalf("p2 fee breakdown mismatch: %+v", p2)
	}

	if summary.TotalFinalFees != 42 {
		t.Fatalf("total final fees mismatch: got=%v want=42", summary.TotalFinalFees)
	}

	stored, ok := env.results.StoredMatch("m1")
	if !ok {
		t.Fatal("expected match aggregates to be stored")
	}
	if stored.FeeCoefficient != wantCoefficient || stored.TotalParticipants != 2 || stored.TotalFinalFees != 42 {
		t.Fatalf("stored match aggregates mismatch: %+v", stored)
	}

	if env.events.RecalcCount() != 1 {
		t.Fatalf("expected one FeesRecalculated event, got %d", env.events.RecalcCount())
	}
}

func TestRecalculateMatch_Idempotent(t *testing.T) {
	ctx := context.Background()
	env := newRecalcEnv(t)

	env.saveMatch(t, &roster.Match{ID: "m1", PlayedAt: time.Now().UTC(), FieldFeeTotal: 412.5, WaterFeeTotal: 37.5})
	env.participants.SetParticipants("m1", []application.Participant{
		{PlayerID: "p1", Attendance: []byte(fullTwoSections)},
		{PlayerID: "p2", Attendance: []byte(fullOneSection)},
	})

	first, err := env.service.RecalculateMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("first recalculation: %v", err)
	}
	firstResults, err := env.results.ListByMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}

	second, err := env.service.RecalculateMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("second recalculation: %v", err)
	}
	secondResults, err := env.results.ListByMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}

	if first != second {
		t.Fatalf("summaries differ: first=%+v second=%+v", first, second)
	}
	if !reflect.DeepEqual(firstResults, secondResults) {
		t.Fatalf("results are not bit-identical:\n first=%+v\nsecond=%+v", firstResults, secondResults)
	}
}

func TestRecalculateMatch_AbortsWholeBatchOnMalformedParticipant(t *testing.T) {
	ctx := context.Background()
	env := newRecalcEnv(t)

	env.saveMatch(t, &roster.Match{ID: "m1", PlayedAt: time.Now().UTC(), FieldFeeTotal: 300})
	env.participants.SetParticipants("m1", []application.Participant{
		{PlayerID: "p1", Attendance: []byte(fullTwoSections)},
	})
	if _, err := env.service.RecalculateMatch(ctx, "m1"); err != nil {
		t.Fatalf("seed recalculation: %v", err)
	}
	baseline, err := env.results.ListByMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	baselineMatch, _ := env.results.StoredMatch("m1")

	// Costs change and a malformed participant appears: the new pass must
	// fail without touching any stored fee or the stored coefficient.
	env.saveMatch(t, &roster.Match{ID: "m1", PlayedAt: time.Now().UTC(), FieldFeeTotal: 450})
	env.participants.SetParticipants("m1", []application.Participant{
		{PlayerID: "p1", Attendance: []byte(fullTwoSections)},
		{PlayerID: "p3", Attendance: []byte(malformedCells)},
	})

	_, err = env.service.RecalculateMatch(ctx, "m1")
	if err == nil {
		t.Fatal("expected recalculation failure")
	}
	var recalcErr *fees.RecalculationError
	if !errors.As(err, &recalcErr) {
		t.Fatalf("expected RecalculationError, got %T: %v", err, err)
	}
	if recalcErr.PlayerID != "p3" {
		t.Fatalf("failing player mismatch: got=%q want=p3", recalcErr.PlayerID)
	}

	after, err := env.results.ListByMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if !reflect.DeepEqual(baseline, after) {
		t.Fatalf("stored results changed after aborted pass:\nbefore=%+v\n after=%+v", baseline, after)
	}
	afterMatch, _ := env.results.StoredMatch("m1")
	if afterMatch.FeeCoefficient != baselineMatch.FeeCoefficient {
		t.Fatalf("stored coefficient changed after aborted pass: before=%v after=%v", baselineMatch.FeeCoefficient, afterMatch.FeeCoefficient)
	}
	if env.events.RecalcCount() != 1 {
		t.Fatalf("aborted pass must not publish events, got %d", env.events.RecalcCount())
	}
}

func TestRecalculateMatch_OverridePrecedenceAndRevert(t *testing.T) {
	ctx := context.Background()
	env := newRecalcEnv(t)

	env.saveMatch(t, &roster.Match{ID: "m1", PlayedAt: time.Now().UTC(), FieldFeeTotal: 300})
	env.participants.SetParticipants("m1", []application.Participant{
		{PlayerID: "p1", Attendance: []byte(fullTwoSections)},
	})

	overrideSvc, err := application.NewOverrideService(env.overrides, env.events, env.clock)
	if err != nil {
		t.Fatalf("new override service: %v", err)
	}
	err = overrideSvc.Apply(ctx, fees.Override{
		PlayerID: "p1",
		MatchID:  "m1",
		Amount:   5,
		Note:     "brought the match ball, fee waived down",
	})
	if err != nil {
		t.Fatalf("apply override: %v", err)
	}

	withOverride, err := env.service.RecalculateMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if withOverride.TotalFinalFees != 5 {
		t.Fatalf("override must win: got=%v want=5", withOverride.TotalFinalFees)
	}

	// The computed baseline is retained alongside the override.
	results, err := env.results.ListByMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 1 || results[0].TotalFee != 21 {
		t.Fatalf("computed baseline lost: %+v", results)
	}

	if err := overrideSvc.Remove(ctx, "m1", "p1"); err != nil {
		t.Fatalf("remove override: %v", err)
	}
	reverted, err := env.service.RecalculateMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if reverted.TotalFinalFees != 21 {
		t.Fatalf("final fee must revert to computed value: got=%v want=21", reverted.TotalFinalFees)
	}
}

func TestRecalculateMatch_UnknownMatch(t *testing.T) {
	env := newRecalcEnv(t)
	_, err := env.service.RecalculateMatch(context.Background(), "missing")
	if !errors.Is(err, roster.ErrMatchNotFound) {
		t.Fatalf("expected match not found, got %v", err)
	}
}

type recalcEnv struct {
	matches      *rostermemory.MatchRepository
	participants *memory.ParticipantStore
	results      *memory.ResultRepository
	overrides    *memory.OverrideRepository
	events       *eventRecorder
	clock        fixedClock
	service      *application.MatchRecalculationService
}

func newRecalcEnv(t *testing.T) *recalcEnv {
	t.Helper()

	env := &recalcEnv{
		matches:      rostermemory.NewMatchRepository(),
		participants: memory.NewParticipantStore(),
		results:      memory.NewResultRepository(),
		overrides:    memory.NewOverrideRepository(),
		events:       &eventRecorder{},
		clock:        fixedClock{now: time.Date(2026, time.March, 15, 8, 0, 0, 0, time.UTC)},
	}

	service, err := application.NewMatchRecalculationService(
		env.matches,
		env.participants,
		env.results,
		env.overrides,
		fixedSettings{video: 2, late: 10},
		env.events,
		env.clock,
	)
	if err != nil {
		t.Fatalf("new recalc service: %v", err)
	}
	env.service = service
	return env
}

func (e *recalcEnv) saveMatch(t *testing.T, match *roster.Match) {
	t.Helper()
	if err := e.matches.Save(context.Background(), match); err != nil {
		t.Fatalf("save match: %v", err)
	}
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fixedSettings struct {
	video float64
	late  float64
}

func (s fixedSettings) VideoFeeRate(ctx context.Context) (float64, error) {
	_ = ctx
	return s.video, nil
}

func (s fixedSettings) LateFeeRate(ctx context.Context) (float64, error) {
	_ = ctx
	return s.late, nil
}

type eventRecorder struct {
	mu        sync.Mutex
	recalcs   []application.FeesRecalculated
	overrides []application.OverrideApplied
}

func (r *eventRecorder) PublishFeesRecalculated(ctx context.Context, event application.FeesRecalculated) error {
	_ = ctx
	r.mu.Lock()
	r.recalcs = append(r.recalcs, event)
	r.mu.Unlock()
	return nil
}

func (r *eventRecorder) PublishOverrideApplied(ctx context.Context, event application.OverrideApplied) error {
	_ = ctx
	r.mu.Lock()
	r.overrides = append(r.overrides, event)
	r.mu.Unlock()
	return nil
}

func (r *eventRecorder) RecalcCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recalcs)
}
