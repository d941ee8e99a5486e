package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a test Redis client using miniredis
func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := &Client{
		Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}

	return client, mr
}

func TestClient_SetGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()

	err := client.Set(ctx, "test:key1", "value1", 1*time.Hour)
	require.NoError(t, err)

	val, err := client.Get(ctx, "test:key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", val)
}

func TestClient_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()

	_ = client.Set(ctx, "test:key1", "value1", 1*time.Hour)
	_ = client.Set(ctx, "test:key2", "value2", 1*time.Hour)

	err := client.Delete(ctx, "test:key1", "test:key2")
	require.NoError(t, err)

	exists, err := client.Exists(ctx, "test:key1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_DeletePattern(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	userID := "7a0f7bfa-27d5-4a3e-9a3c-0d3f9f8f2b11"

	_ = client.Set(ctx, LeadListKey(userID, "new", "", 1, 50), "page1", 1*time.Hour)
	_ = client.Set(ctx, LeadListKey(userID, "", "", 2, 50), "page2", 1*time.Hour)
	_ = client.Set(ctx, "leads:other-user:all", "keep", 1*time.Hour)

	err := client.DeletePattern(ctx, LeadListPattern(userID))
	require.NoError(t, err)

	exists, err := client.Exists(ctx, LeadListKey(userID, "new", "", 1, 50))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = client.Exists(ctx, "leads:other-user:all")
	require.NoError(t, err)
	assert.True(t, exists)
}
