package stats

import "errors"

var (
	// ErrInvalidPeriod is returned for an invalid (year, month) bucket.
	ErrInvalidPeriod = errors.New("stats: invalid period")
	// ErrNilAggregate is returned when saving a nil aggregate.
	ErrNilAggregate = errors.New("stats: nil aggregate")
	// ErrAggregateNotFound is returned when a bucket has no aggregate.
	ErrAggregateNotFound = errors.New("stats: aggregate not found")
)
