package cache

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/syntheses-api/pkg/config"
)

func TestNewRedisPings(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewRedis(context.Background(), config.RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	defer client.Close()
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port, _ := strconv.Atoi(mr.Port())
	mr.Close()

	_, err := NewRedis(context.Background(), config.RedisConfig{Host: mr.Host(), Port: port})
	assert.Error(t, err)
}
