package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]float64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]float64)}
}

func (s *memoryStore) Lookup(ctx context.Context, keys ...string) (float64, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if value, ok := s.values[key]; ok {
			return value, true, nil
		}
	}
	return 0, false, nil
}

func (s *memoryStore) Upsert(ctx context.Context, key string, value float64) error {
	_ = ctx
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

type frozenClock struct {
	now time.Time
}

func (c frozenClock) Now() time.Time { return c.now }

func newSettingsHandler(t *testing.T, store *memoryStore) *Handler {
	t.Helper()
	provider, err := NewCachedProvider(store, frozenClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	handler, err := NewHandler(provider, store)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func TestSettingsHandler_GetDefaults(t *testing.T) {
	handler := newSettingsHandler(t, newMemoryStore())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var got ratesPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.VideoFeeRate != DefaultVideoFeeRate || got.LateFeeRate != DefaultLateFeeRate {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestSettingsHandler_PutInvalidatesCache(t *testing.T) {
	store := newMemoryStore()
	handler := newSettingsHandler(t, store)

	// Prime the cache with the defaults under a frozen clock; without an
	// explicit invalidation the snapshot would never expire.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("prime status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(`{"video_fee_rate":3,"late_fee_rate":15}`)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("put status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	var got ratesPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.VideoFeeRate != 3 || got.LateFeeRate != 15 {
		t.Fatalf("new rates not visible after put: %+v", got)
	}
}

func TestSettingsHandler_RejectsNegativeRates(t *testing.T) {
	handler := newSettingsHandler(t, newMemoryStore())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(`{"video_fee_rate":-1,"late_fee_rate":10}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}
