package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrSectionOutOfRange is returned when a section index is outside the grid.
	ErrSectionOutOfRange = errors.New("attendance: section out of range")
	// ErrPartOutOfRange is returned when a part index is outside the grid.
	ErrPartOutOfRange = errors.New("attendance: part out of range")
)

// CellError reports an invalid presence value at a specific grid cell.
// Presence values must be one of 0, 0.5 or 1; anything else fails at
// ingestion, never at calculation time.
type CellError struct {
	Section int
	Part    int
	Value   float64
}

func (e *CellError) Error() string {
	return fmt.Sprintf("attendance: invalid presence value %v at section %d part %d", e.Value, e.Section, e.Part)
}
