package interfaces

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"clubledger/internal/fees/application"
	roster "clubledger/internal/roster/domain"
	stats "clubledger/internal/stats/domain"
)

func sampleAggregate() *stats.MonthlyAggregate {
	return &stats.MonthlyAggregate{
		Year: 2026, Month: time.March,
		GamesPlayed: 2, Wins: 1, Draws: 1,
		GoalsFor: 5, GoalsAgainst: 3,
		FieldFeeTotal: 570, WaterFeeTotal: 30, FinalFeeTotal: 635,
		ComputedAt: time.Date(2026, time.April, 1, 6, 0, 0, 0, time.UTC),
	}
}

func sampleMatches() []*roster.Match {
	return []*roster.Match{
		{
			ID: "m1", PlayedAt: time.Date(2026, time.March, 7, 19, 0, 0, 0, time.UTC),
			Opponent: "Riverside FC", GoalsFor: 3, GoalsAgainst: 1, Result: roster.ResultWin,
			FieldFeeTotal: 300, WaterFeeTotal: 30, TotalFinalFees: 360,
		},
		{
			ID: "m2", PlayedAt: time.Date(2026, time.March, 21, 19, 0, 0, 0, time.UTC),
			Opponent: "Harbor United", GoalsFor: 2, GoalsAgainst: 2, Result: roster.ResultDraw,
			FieldFeeTotal: 270, TotalFinalFees: 275,
		},
	}
}

func TestBuildMonthlyStatementXLSX(t *testing.T) {
	data, err := BuildMonthlyStatementXLSX(sampleAggregate(), sampleMatches(), "CNY")
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty xlsx output")
	}
	// XLSX files are zip archives.
	if data[0] != 'P' || data[1] != 'K' {
		t.Fatalf("unexpected xlsx magic: %x", data[:2])
	}
}

func TestBuildMonthlyStatementPDF(t *testing.T) {
	data, err := BuildMonthlyStatementPDF(sampleAggregate(), sampleMatches(), "CNY")
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty pdf output")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("unexpected pdf magic: %q", data[:4])
	}
}

func TestLoggingPublisher(t *testing.T) {
	var buf bytes.Buffer
	publisher := NewLoggingPublisher(log.New(&buf, "", 0))

	ctx := context.Background()
	err := publisher.PublishFeesRecalculated(ctx, application.FeesRecalculated{
		MatchID: "m-1", TotalParticipants: 2, FeeCoefficient: 5, TotalFinalFees: 42,
	})
	if err != nil {
		t.Fatalf("publish recalculated: %v", err)
	}
	err = publisher.PublishOverrideApplied(ctx, application.OverrideApplied{
		MatchID: "m-1", PlayerID: "p-1", Removed: true,
	})
	if err != nil {
		t.Fatalf("publish override: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "fees recalculated: match=m-1") {
		t.Fatalf("missing recalculated line: %q", out)
	}
	if !strings.Contains(out, "override removed: match=m-1 player=p-1") {
		t.Fatalf("missing override line: %q", out)
	}
}
