package settings

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestCachedProvider_DefaultsWhenUnset(t *testing.T) {
	store := newFakeStore()
	clock := &stepClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)}

	provider := newProvider(t, store, clock)

	video, err := provider.VideoFeeRate(context.Background())
	if err != nil {
		t.Fatalf("video rate: %v", err)
	}
	late, err := provider.LateFeeRate(context.Background())
	if err != nil {
		t.Fatalf("late rate: %v", err)
	}
	if video != DefaultVideoFeeRate || late != DefaultLateFeeRate {
		t.Fatalf("default rates mismatch: video=%v late=%v", video, late)
	}
}

func TestCachedProvider_BoundedStaleness(t *testing.T) {
	store := newFakeStore()
	store.set(KeyVideoFeeRate, 2)
	clock := &stepClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)}

	provider := newProvider(t, store, clock, WithTTL(time.Minute))

	if rate := mustVideoRate(t, provider); rate != 2 {
		t.Fatalf("initial rate mismatch: got=%v want=2", rate)
	}

	// A write inside the staleness window is not observed yet.
	store.set(KeyVideoFeeRate, 3)
	clock.advance(30 * time.Second)
	if rate := mustVideoRate(t, provider); rate != 2 {
		t.Fatalf("rate inside TTL must stay cached: got=%v want=2", rate)
	}

	// Once the window elapses the fresh value is read.
	clock.advance(31 * time.Second)
	if rate := mustVideoRate(t, provider); rate != 3 {
		t.Fatalf("rate after TTL mismatch: got=%v want=3", rate)
	}
}

func TestCachedProvider_ExplicitInvalidate(t *testing.T) {
	store := newFakeStore()
	store.set(KeyLateFeeRate, 10)
	clock := &stepClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)}

	provider := newProvider(t, store, clock)

	if _, err := provider.LateFeeRate(context.Background()); err != nil {
		t.Fatalf("late rate: %v", err)
	}
	store.set(KeyLateFeeRate, 15)
	provider.Invalidate()

	rate, err := provider.LateFeeRate(context.Background())
	if err != nil {
		t.Fatalf("late rate: %v", err)
	}
	if rate != 15 {
		t.Fatalf("invalidate must force a fresh read: got=%v want=15", rate)
	}
	if store.lookups(KeyLateFeeRate) < 2 {
		t.Fatalf("expected a second store read after invalidate, got %d", store.lookups(KeyLateFeeRate))
	}
}

func TestCachedProvider_LegacyKeyAlias(t *testing.T) {
	store := newFakeStore()
	store.set(legacyKeyVideoFeeRate, 4)
	clock := &stepClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)}

	provider := newProvider(t, store, clock)

	if rate := mustVideoRate(t, provider); rate != 4 {
		t.Fatalf("legacy alias not honored: got=%v want=4", rate)
	}
}

func newProvider(t *testing.T, store Store, clock Clock, opts ...Option) *CachedProvider {
	t.Helper()
	provider, err := NewCachedProvider(store, clock, opts...)
	if err != nil {
		t.Fatalf("new cached provider: %v", err)
	}
	return provider
}

func mustVideoRate(t *testing.T, provider *CachedProvider) float64 {
	t.Helper()
	rate, err := provider.VideoFeeRate(context.Background())
	if err != nil {
		t.Fatalf("video rate: %v", err)
	}
	return rate
}

type fakeStore struct {
	mu     sync.Mutex
	values map[string]float64
	reads  map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]float64), reads: make(map[string]int)}
}

func (s *fakeStore) set(key string, value float64) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

func (s *fakeStore) lookups(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[key]
}

func (s *fakeStore) Lookup(ctx context.Context, keys ...string) (float64, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.reads[key]++
		if value, ok := s.values[key]; ok {
			return value, true, nil
		}
	}
	return 0, false, nil
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
