package attendance

// A match is split into fixed sections, each split into fixed parts.
// Presence is credited per cell: 0 (absent), 0.5 (partial) or 1 (full).
const (
	SectionCount = 3
	PartCount    = 3
	// CellCount is the number of presence cells in a full grid.
	CellCount = SectionCount * PartCount
)

// Record is one player's presence in one match.
// The grid is read-only input to the fee calculators; late arrival is a
// match-scoped flag, not a per-cell value.
type Record struct {
	presence    [SectionCount][PartCount]float64
	goalkeeper  [SectionCount][PartCount]bool
	lateArrival bool
}

// NewRecord returns an empty record (no presence, no goalkeeper duty).
func NewRecord() Record {
	return Record{}
}

// ValidPresence reports whether value is an allowed presence credit.
func ValidPresence(value float64) bool {
	return value == 0 || value == 0.5 || value == 1
}

// SetPresence records a presence value for a cell. Sections and parts are
// 1-based, matching the persisted attendance shape.
func (r *Record) SetPresence(section, part int, value float64) error {
	if section < 1 || section > SectionCount {
		return ErrSectionOutOfRange
	}
	if part < 1 || part > PartCount {
		return ErrPartOutOfRange
	}
	if !ValidPresence(value) {
		return &CellError{Section: section, Part: part, Value: value}
	}
	r.presence[section-1][part-1] = value
	return nil
}

// SetGoalkeeper flags a cell as goalkeeper duty. Goalkeeper cells are tracked
// separately from presence because club policy may exempt or adjust them.
func (r *Record) SetGoalkeeper(section, part int, on bool) error {
	if section < 1 || section > SectionCount {
		return ErrSectionOutOfRange
	}
	if part < 1 || part > PartCount {
		return ErrPartOutOfRange
	}
	r.goalkeeper[section-1][part-1] = on
	return nil
}

// MarkLateArrival sets the match-scoped late flag.
func (r *Record) MarkLateArrival(late bool) {
	r.lateArrival = late
}

// PresenceAt returns the presence value for a 1-based cell.
func (r Record) PresenceAt(section, part int) float64 {
	if section < 1 || section > SectionCount || part < 1 || part > PartCount {
		return 0
	}
	return r.presence[section-1][part-1]
}

// IsGoalkeeperAt reports goalkeeper duty for a 1-based cell.
func (r Record) IsGoalkeeperAt(section, part int) bool {
	if section < 1 || section > SectionCount || part < 1 || part > PartCount {
		return false
	}
	return r.goalkeeper[section-1][part-1]
}

// IsLateArrival reports the match-scoped late flag.
func (r Record) IsLateArrival() bool {
	return r.lateArrival
}

// TotalTime sums all presence cells. The result is always a multiple of 0.5
// and bounded by CellCount.
func (r Record) TotalTime() float64 {
	var total float64
	for section := 0; section < SectionCount; section++ {
		for part := 0; part < PartCount; part++ {
			total += r.presence[section][part]
		}
	}
	return total
}

// Validate re-checks every cell against the allowed presence values.
// Records built through SetPresence cannot fail this; records decoded from
// stored JSON can.
func (r Record) Validate() error {
	for section := 0; section < SectionCount; section++ {
		for part := 0; part < PartCount; part++ {
			if !ValidPresence(r.presence[section][part]) {
				return &CellError{Section: section + 1, Part: part + 1, Value: r.presence[section][part]}
			}
		}
	}
	return nil
}
