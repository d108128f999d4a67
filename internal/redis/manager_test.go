package redis_test

import (
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/robalyx/presencerelay/internal/redis"
	"github.com/robalyx/presencerelay/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetClient(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	manager := redis.NewManager(&config.Redis{Enabled: true, Host: mr.Host(), Port: port}, zap.NewNop())
	defer manager.Close()

	client, err := manager.GetClient(redis.StatusDBIndex)
	require.NoError(t, err)

	again, err := manager.GetClient(redis.StatusDBIndex)
	require.NoError(t, err)
	assert.Equal(t, client, again)

	require.NoError(t, client.Do(t.Context(), client.B().Set().Key("k").Value("v").Build()).Error())

	value, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}

func TestGetClientDisabled(t *testing.T) {
	t.Parallel()

	manager := redis.NewManager(&config.Redis{}, zap.NewNop())
	assert.False(t, manager.Enabled())

	_, err := manager.GetClient(redis.StatusDBIndex)
	require.ErrorIs(t, err, redis.ErrRedisDisabled)
}
