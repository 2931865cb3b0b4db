package settings

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Setting keys. The legacy aliases match rows written by the previous
// generation of the admin tooling and are still honored on reads.
const (
	KeyVideoFeeRate = "video_fee_rate"
	KeyLateFeeRate  = "late_fee_rate"

	legacyKeyVideoFeeRate = "VIDEO_FEE"
	legacyKeyLateFeeRate  = "LATE_FEE"
)

// Documented fallbacks when no persisted value exists.
const (
	DefaultVideoFeeRate = 2.0
	DefaultLateFeeRate  = 10.0
)

// DefaultTTL bounds how stale a cached rate may be. Fee calculation
// tolerates slightly stale rates; freshness is this package's concern.
const DefaultTTL = 5 * time.Minute

// Store reads persisted setting values. Lookup returns the first value
// found among the given keys.
type Store interface {
	Lookup(ctx context.Context, keys ...string) (float64, bool, error)
}

// Provider supplies the club default rates.
type Provider interface {
	VideoFeeRate(ctx context.Context) (float64, error)
	LateFeeRate(ctx context.Context) (float64, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// CachedProvider caches rates for a bounded TTL. The clock is injectable so
// tests control staleness deterministically, and Invalidate drops the
// snapshot explicitly instead of waiting out the window.
type CachedProvider struct {
	store Store
	clock Clock
	ttl   time.Duration

	defaultVideo float64
	defaultLate  float64

	mu        sync.Mutex
	video     float64
	late      float64
	fetchedAt time.Time
}

// Option configures the provider.
type Option func(*CachedProvider)

// WithTTL overrides the staleness window.
func WithTTL(ttl time.Duration) Option {
	return func(p *CachedProvider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithDefaults overrides the fallback rates.
func WithDefaults(video, late float64) Option {
	return func(p *CachedProvider) {
		p.defaultVideo = video
		p.defaultLate = late
	}
}

// NewCachedProvider constructs a provider.
func NewCachedProvider(store Store, clock Clock, opts ...Option) (*CachedProvider, error) {
	if store == nil {
		return nil, errors.New("settings: nil store")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	provider := &CachedProvider{
		store:        store,
		clock:        clock,
		ttl:          DefaultTTL,
		defaultVideo: DefaultVideoFeeRate,
		defaultLate:  DefaultLateFeeRate,
	}
	for _, opt := range opts {
		opt(provider)
	}
	return provider, nil
}

// VideoFeeRate returns the video fee rate, refreshing the snapshot when
// stale.
func (p *CachedProvider) VideoFeeRate(ctx context.Context) (float64, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.video, nil
}

// LateFeeRate returns the late fee rate, refreshing the snapshot when stale.
func (p *CachedProvider) LateFeeRate(ctx context.Context) (float64, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.late, nil
}

// Invalidate drops the cached snapshot; the next read hits the store.
func (p *CachedProvider) Invalidate() {
	p.mu.Lock()
	p.fetchedAt = time.Time{}
	p.mu.Unlock()
}

func (p *CachedProvider) ensureFresh(ctx context.Context) error {
	p.mu.Lock()
	fresh := !p.fetchedAt.IsZero() && p.clock.Now().Sub(p.fetchedAt) < p.ttl
	p.mu.Unlock()
	if fresh {
		return nil
	}

	video, found, err := p.store.Lookup(ctx, KeyVideoFeeRate, legacyKeyVideoFeeRate)
	if err != nil {
		return err
	}
	if !found {
		video = p.defaultVideo
	}

	late, found, err := p.store.Lookup(ctx, KeyLateFeeRate, legacyKeyLateFeeRate)
	if err != nil {
		return err
	}
	if !found {
		late = p.defaultLate
	}

	p.mu.Lock()
	p.video = video
	p.late = late
	p.fetchedAt = p.clock.Now()
	p.mu.Unlock()
	return nil
}
