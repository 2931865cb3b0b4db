package attendance

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// recordJSON is the persisted attendance contract: nested mappings keyed by
// string section then string part. Existing stored rows use this exact shape,
// so it must round-trip unchanged.
type recordJSON struct {
	Attendance map[string]map[string]float64 `json:"attendance"`
	Goalkeeper map[string]map[string]bool    `json:"goalkeeper"`
}

// Parse decodes a stored attendance document and validates every cell.
// A presence value outside {0, 0.5, 1} fails with a CellError naming the
// offending section and part.
func Parse(data []byte) (Record, error) {
	var doc recordJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return Record{}, fmt.Errorf("attendance: decode: %w", err)
	}

	var record Record
	for sectionKey, parts := range doc.Attendance {
		section, err := parseIndex(sectionKey, SectionCount, ErrSectionOutOfRange)
		if err != nil {
			return Record{}, err
		}
		for partKey, value := range parts {
			part, err := parseIndex(partKey, PartCount, ErrPartOutOfRange)
			if err != nil {
				return Record{}, err
			}
			if err := record.SetPresence(section, part, value); err != nil {
				return Record{}, err
			}
		}
	}
	for sectionKey, parts := range doc.Goalkeeper {
		section, err := parseIndex(sectionKey, SectionCount, ErrSectionOutOfRange)
		if err != nil {
			return Record{}, err
		}
		for partKey, on := range parts {
			part, err := parseIndex(partKey, PartCount, ErrPartOutOfRange)
			if err != nil {
				return Record{}, err
			}
			if err := record.SetGoalkeeper(section, part, on); err != nil {
				return Record{}, err
			}
		}
	}
	return record, nil
}

// Encode serializes the full grid in the persisted shape. Every cell is
// emitted so stored documents stay self-describing.
func Encode(record Record) ([]byte, error) {
	doc := recordJSON{
		Attendance: make(map[string]map[string]float64, SectionCount),
		Goalkeeper: make(map[string]map[string]bool, SectionCount),
	}
	for section := 1; section <= SectionCount; section++ {
		sectionKey := strconv.Itoa(section)
		doc.Attendance[sectionKey] = make(map[string]float64, PartCount)
		doc.Goalkeeper[sectionKey] = make(map[string]bool, PartCount)
		for part := 1; part <= PartCount; part++ {
			partKey := strconv.Itoa(part)
			doc.Attendance[sectionKey][partKey] = record.PresenceAt(section, part)
			doc.Goalkeeper[sectionKey][partKey] = record.IsGoalkeeperAt(section, part)
		}
	}
	return json.Marshal(doc)
}

func parseIndex(key string, max int, rangeErr error) (int, error) {
	index, err := strconv.Atoi(key)
	if err != nil {
		return 0, fmt.Errorf("attendance: invalid grid key %q: %w", key, err)
	}
	if index < 1 || index > max {
		return 0, rangeErr
	}
	return index, nil
}
