package cache

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixKey_NamespacesByServiceAndVersion(t *testing.T) {
	a := New(nil, "docchat", "1.0.0")
	b := New(nil, "docchat", "2.0.0")

	assert.Equal(t, "docchat:1.0.0:abc", a.prefixKey("abc"))
	assert.Equal(t, "docchat:2.0.0:abc", b.prefixKey("abc"))
	assert.NotEqual(t, a.prefixKey("abc"), b.prefixKey("abc"))
}

func TestCacheRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	ctx := context.Background()

	c := New(rdb, "docchat-test", "0.0.0")

	t.Run("miss reports absence", func(t *testing.T) {
		_, found, err := c.Get(ctx, "never-written")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k1", "extracted text", 0))
		defer c.Delete(ctx, "k1")

		v, found, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "extracted text", v)
	})

	t.Run("empty string is a real entry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k2", "", 0))
		defer c.Delete(ctx, "k2")

		v, found, err := c.Get(ctx, "k2")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "", v)
	})
}
