package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/foyer/core"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	kv := NewMemoryKV()
	kv.now = func() time.Time { return now }

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, kv.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, kv.Set(ctx, "b", "2", 0))

	val, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", val)

	now = now.Add(time.Minute)
	_, err = kv.Get(ctx, "a")
	assert.ErrorIs(t, err, core.ErrCacheMiss, "expired")

	val, err = kv.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", val, "no ttl never expires")

	require.NoError(t, kv.Delete(ctx, "b"))
	_, err = kv.Get(ctx, "b")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}
