//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisProfileStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := DialRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := NewProfileStore(NewScoped(NewRedisKV(client), "acct-1"))
	p := sampleProfile()
	require.NoError(t, s.Save(ctx, p))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, p, *got)

	require.NoError(t, client.Set(ctx, "sahayak:acct-1:"+ProfileKey, "{oops", 0).Err())
	_, err = s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = client.Get(ctx, "sahayak:acct-1:"+ProfileKey).Result()
	require.ErrorIs(t, err, redis.Nil)
}
