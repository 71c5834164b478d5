package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/foyer/core"
)

func TestSetUpStatsCache(t *testing.T) {
	t.Run("no redis, no cache", func(t *testing.T) {
		conf := &core.Config{}

		statsCache, closeCache, err := setUpStatsCache(context.Background(), conf)
		require.NoError(t, err)
		require.NotNil(t, closeCache)
		defer closeCache()
		assert.Nil(t, statsCache)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		conf := &core.Config{}
		conf.Redis.Addr = "127.0.0.1:1"

		statsCache, closeCache, err := setUpStatsCache(context.Background(), conf)
		assert.Error(t, err)
		assert.Nil(t, statsCache)
		closeCache()
	})
}
