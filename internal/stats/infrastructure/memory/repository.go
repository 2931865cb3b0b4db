package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	stats "clubledger/internal/stats/domain"
)

// AggregateRepository is an in-memory monthly aggregate store.
type AggregateRepository struct {
	mu   sync.RWMutex
	data map[string]stats.MonthlyAggregate
}

// NewAggregateRepository constructs a repository.
func NewAggregateRepository() *AggregateRepository {
	return &AggregateRepository{data: make(map[string]stats.MonthlyAggregate)}
}

func bucketKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// Get loads an aggregate bucket.
func (r *AggregateRepository) Get(ctx context.Context, year int, month time.Month) (*stats.MonthlyAggregate, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	aggregate, ok := r.data[bucketKey(year, month)]
	if !ok {
		return nil, stats.ErrAggregateNotFound
	}
	copy := aggregate
	return &copy, nil
}

// Save overwrites an aggregate bucket.
func (r *AggregateRepository) Save(ctx context.Context, aggregate *stats.MonthlyAggregate) error {
	_ = ctx
	if aggregate == nil {
		return stats.ErrNilAggregate
	}
	r.mu.Lock()
	r.data[bucketKey(aggregate.Year, aggregate.Month)] = *aggregate
	r.mu.Unlock()
	return nil
}
