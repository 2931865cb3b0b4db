package attendance

import (
	"errors"
	"testing"
)

func TestParse_BoundaryShape(t *testing.T) {
	data := []byte(`{
		"attendance": {"1": {"1": 1, "2": 0.5, "3": 0}, "2": {"1": 1}},
		"goalkeeper": {"1": {"3": true}}
	}`)

	record, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := record.TotalTime(); got != 2.5 {
		t.Fatalf("total time mismatch: got=%v want=2.5", got)
	}
	if record.PresenceAt(1, 2) != 0.5 {
		t.Fatalf("presence (1,2) mismatch: got=%v", record.PresenceAt(1, 2))
	}
	if !record.IsGoalkeeperAt(1, 3) {
		t.Fatal("expected goalkeeper at (1,3)")
	}
	if record.IsGoalkeeperAt(2, 1) {
		t.Fatal("unexpected goalkeeper at (2,1)")
	}
}

func TestParse_MissingCellsDefaultToAbsent(t *testing.T) {
	record, err := Parse([]byte(`{"attendance": {"3": {"3": 1}}, "goalkeeper": {}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if record.PresenceAt(1, 1) != 0 {
		t.Fatalf("missing cell should be absent, got %v", record.PresenceAt(1, 1))
	}
	if record.TotalTime() != 1 {
		t.Fatalf("total time mismatch: got=%v want=1", record.TotalTime())
	}
}

func TestParse_RejectsInvalidPresenceValue(t *testing.T) {
	_, err := Parse([]byte(`{"attendance": {"2": {"1": 0.75}}, "goalkeeper": {}}`))
	if err == nil {
		t.Fatal("expected error for presence value 0.75")
	}
	var cellErr *CellError
	if !errors.As(err, &cellErr) {
		t.Fatalf("expected CellError, got %T", err)
	}
	if cellErr.Section != 2 || cellErr.Part != 1 {
		t.Fatalf("cell error location mismatch: got section=%d part=%d", cellErr.Section, cellErr.Part)
	}
}

func TestParse_RejectsUnknownSectionKey(t *testing.T) {
	_, err := Parse([]byte(`{"attendance": {"4": {"1": 1}}, "goalkeeper": {}}`))
	if !errors.Is(err, ErrSectionOutOfRange) {
		t.Fatalf("expected section range error, got %v", err)
	}
}

func TestEncodeParse_RoundTrip(t *testing.T) {
	var record Record
	mustSetPresence(t, &record, 1, 1, 1)
	mustSetPresence(t, &record, 2, 2, 0.5)
	if err := record.SetGoalkeeper(3, 1, true); err != nil {
		t.Fatalf("set goalkeeper: %v", err)
	}

	encoded, err := Encode(record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Parse(encoded)
	if err != nil {
		t.Fatalf("parse encoded: %v", err)
	}

	if decoded.TotalTime() != record.TotalTime() {
		t.Fatalf("round trip total time mismatch: got=%v want=%v", decoded.TotalTime(), record.TotalTime())
	}
	if !decoded.IsGoalkeeperAt(3, 1) {
		t.Fatal("round trip lost goalkeeper cell")
	}

	reencoded, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if string(reencoded) != string(encoded) {
		t.Fatalf("encoding is not stable:\n first=%s\nsecond=%s", encoded, reencoded)
	}
}
