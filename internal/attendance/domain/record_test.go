package attendance

import (
	"errors"
	"math"
	"testing"
)

func TestTotalTime_SumsAllCells(t *testing.T) {
	var record Record
	mustSetPresence(t, &record, 1, 1, 1)
	mustSetPresence(t, &record, 1, 2, 0.5)
	mustSetPresence(t, &record, 2, 3, 1)
	mustSetPresence(t, &record, 3, 1, 0.5)

	if got := record.TotalTime(); got != 3 {
		t.Fatalf("total time mismatch: got=%v want=3", got)
	}
}

func TestTotalTime_FullAttendanceBoundedByCellCount(t *testing.T) {
	var record Record
	for section := 1; section <= SectionCount; section++ {
		for part := 1; part <= PartCount; part++ {
			mustSetPresence(t, &record, section, part, 1)
		}
	}

	if got := record.TotalTime(); got != float64(CellCount) {
		t.Fatalf("full attendance mismatch: got=%v want=%d", got, CellCount)
	}
}

func TestTotalTime_AlwaysMultipleOfHalf(t *testing.T) {
	var record Record
	mustSetPresence(t, &record, 1, 1, 0.5)
	mustSetPresence(t, &record, 2, 2, 0.5)
	mustSetPresence(t, &record, 3, 3, 1)

	total := record.TotalTime()
	if math.Mod(total*2, 1) != 0 {
		t.Fatalf("total time %v is not a multiple of 0.5", total)
	}
}

func TestSetPresence_RejectsInvalidValue(t *testing.T) {
	var record Record
	err := record.SetPresence(2, 3, 0.25)
	if err == nil {
		t.Fatal("expected error for presence value 0.25")
	}

	var cellErr *CellError
	if !errors.As(err, &cellErr) {
		t.Fatalf("expected CellError, got %T", err)
	}
	if cellErr.Section != 2 || cellErr.Part != 3 {
		t.Fatalf("cell error location mismatch: got section=%d part=%d", cellErr.Section, cellErr.Part)
	}
}

func TestSetPresence_RejectsOutOfRangeIndexes(t *testing.T) {
	var record Record
	if err := record.SetPresence(0, 1, 1); !errors.Is(err, ErrSectionOutOfRange) {
		t.Fatalf("expected section range error, got %v", err)
	}
	if err := record.SetPresence(1, 4, 1); !errors.Is(err, ErrPartOutOfRange) {
		t.Fatalf("expected part range error, got %v", err)
	}
}

func TestGoalkeeperTrackedSeparatelyFromPresence(t *testing.T) {
	var record Record
	if err := record.SetGoalkeeper(1, 2, true); err != nil {
		t.Fatalf("set goalkeeper: %v", err)
	}

	if !record.IsGoalkeeperAt(1, 2) {
		t.Fatal("expected goalkeeper duty at section 1 part 2")
	}
	if record.TotalTime() != 0 {
		t.Fatalf("goalkeeper duty must not add presence time, got %v", record.TotalTime())
	}
}

func TestLateArrivalFlag(t *testing.T) {
	var record Record
	if record.IsLateArrival() {
		t.Fatal("new record must not be late")
	}
	record.MarkLateArrival(true)
	if !record.IsLateArrival() {
		t.Fatal("expected late arrival flag set")
	}
}

func mustSetPresence(t *testing.T, record *Record, section, part int, value float64) {
	t.Helper()
	if err := record.SetPresence(section, part, value); err != nil {
		t.Fatalf("set presence section=%d part=%d: %v", section, part, err)
	}
}
