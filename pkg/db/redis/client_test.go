package redis_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texter/pkg/db/redis"
)

func configFor(t *testing.T, addr string) *redis.Config {
	t.Helper()

	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := redis.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.Timeout = 500 * time.Millisecond
	return cfg
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	t.Run("connects and pings", func(t *testing.T) {
		mr := miniredis.RunT(t)

		client, err := redis.NewClient(ctx, configFor(t, mr.Addr()))
		require.NoError(t, err)

		assert.NoError(t, client.Ping(ctx))
		require.NoError(t, client.RawClient().Set(ctx, "k", "v", 0).Err())
		mr.CheckGet(t, "k", "v")
		assert.NoError(t, client.Close(ctx))
	})

	t.Run("fails when server is down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := configFor(t, mr.Addr())
		mr.Close()

		client, err := redis.NewClient(ctx, cfg)
		require.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestConfigAddr(t *testing.T) {
	cfg := redis.DefaultConfig()
	assert.Equal(t, "redis:6379", cfg.Addr())
}
