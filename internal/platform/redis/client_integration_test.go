//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gatekeeper/internal/platform/config"
	"gatekeeper/pkg/testutil/containers"
)

func TestNew_ConnectsAndReportsHealth(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	client, err := New(ctx, config.RedisConfig{URL: rc.Addr, PoolSize: 4})
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Health(ctx))
}
