package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/trezcool/foyer/core"
)

const quickStatsKey = "dashboard:quick-stats"

var NowFunc = time.Now // mockable

type (
	Repository interface {
		// Counts aggregates rooms, residents and staff; `now` decides which residents are active.
		Counts(ctx context.Context, now time.Time) (Counts, error)
	}

	// Cache is a string key-value store with expiry. Get returns core.ErrCacheMiss for absent keys.
	Cache interface {
		Get(ctx context.Context, key string) (string, error)
		Set(ctx context.Context, key string, value string, ttl time.Duration) error
	}

	Service struct {
		repo   Repository
		cache  Cache // optional
		ttl    time.Duration
		logger core.Logger
	}
)

// NewService: cache may be nil, in which case quick stats are always computed.
func NewService(repo Repository, cache Cache, ttl time.Duration, logger core.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	now := NowFunc().UTC()
	c, err := svc.repo.Counts(ctx, now)
	if err != nil {
		return Stats{}, err
	}
	return NewStats(c, now), nil
}

// QuickStats is served from the cache when possible. Cache failures are logged, never returned.
func (svc *Service) QuickStats(ctx context.Context) (QuickStats, error) {
	if svc.cache != nil {
		val, err := svc.cache.Get(ctx, quickStatsKey)
		switch {
		case err == nil:
			var qs QuickStats
			if err = json.Unmarshal([]byte(val), &qs); err == nil {
				return qs, nil
			}
			svc.logger.Warn("decoding cached quick stats", err)
		case !errors.Is(err, core.ErrCacheMiss):
			svc.logger.Warn("reading cached quick stats", err)
		}
	}

	c, err := svc.repo.Counts(ctx, NowFunc().UTC())
	if err != nil {
		return QuickStats{}, err
	}
	qs := NewQuickStats(c)

	if svc.cache != nil && svc.ttl > 0 {
		if data, err := json.Marshal(qs); err == nil {
			if err = svc.cache.Set(ctx, quickStatsKey, string(data), svc.ttl); err != nil {
				svc.logger.Warn("caching quick stats", err)
			}
		}
	}
	return qs, nil
}
