package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/dashboard"
	"github.com/trezcool/foyer/storage/cache"
)

type countingRepo struct {
	counts dashboard.Counts
	err    error
	calls  int
}

func (r *countingRepo) Counts(context.Context, time.Time) (dashboard.Counts, error) {
	r.calls++
	return r.counts, r.err
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, error) { return "", errors.New("connection refused") }
func (brokenCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}

func TestService_Stats(t *testing.T) {
	now := time.Date(2024, 10, 1, 8, 0, 0, 0, time.FixedZone("WAT", 3600))
	defer func(orig func() time.Time) { dashboard.NowFunc = orig }(dashboard.NowFunc)
	dashboard.NowFunc = func() time.Time { return now }

	repo := &countingRepo{counts: dashboard.Counts{TotalRooms: 2, OccupiedRooms: 1}}
	svc := dashboard.NewService(repo, nil, 0, core.NopLogger{})

	s, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50.0, s.Rooms.OccupancyRate)
	assert.True(t, s.GeneratedAt.Equal(now))
	assert.Equal(t, time.UTC, s.GeneratedAt.Location())

	repo.err = errors.New("db down")
	_, err = svc.Stats(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestService_QuickStats(t *testing.T) {
	ctx := context.Background()

	t.Run("cached", func(t *testing.T) {
		repo := &countingRepo{counts: dashboard.Counts{TotalRooms: 4, OccupiedRooms: 1, TotalStaff: 2}}
		svc := dashboard.NewService(repo, cache.NewMemoryKV(), time.Minute, core.NopLogger{})

		first, err := svc.QuickStats(ctx)
		require.NoError(t, err)
		repo.counts.TotalRooms = 10
		second, err := svc.QuickStats(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 4, second.TotalRooms)
		assert.Equal(t, 1, repo.calls)
	})

	t.Run("no cache", func(t *testing.T) {
		repo := &countingRepo{}
		svc := dashboard.NewService(repo, nil, time.Minute, core.NopLogger{})
		for i := 0; i < 3; i++ {
			_, err := svc.QuickStats(ctx)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, repo.calls)
	})

	t.Run("zero ttl skips caching", func(t *testing.T) {
		repo := &countingRepo{}
		svc := dashboard.NewService(repo, cache.NewMemoryKV(), 0, core.NopLogger{})
		_, _ = svc.QuickStats(ctx)
		_, _ = svc.QuickStats(ctx)
		assert.Equal(t, 2, repo.calls)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		kv := cache.NewMemoryKV()
		require.NoError(t, kv.Set(ctx, "dashboard:quick-stats", "{not json", 0))
		repo := &countingRepo{counts: dashboard.Counts{TotalStaff: 5}}
		svc := dashboard.NewService(repo, kv, time.Minute, core.NopLogger{})

		qs, err := svc.QuickStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, qs.TotalStaff)
		assert.Equal(t, 1, repo.calls)
	})

	t.Run("cache failures are not fatal", func(t *testing.T) {
		repo := &countingRepo{counts: dashboard.Counts{TotalResidents: 7}}
		svc := dashboard.NewService(repo, brokenCache{}, time.Minute, core.NopLogger{})

		qs, err := svc.QuickStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, qs.TotalResidents)
	})
}
