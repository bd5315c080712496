//go:build integration

package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

func TestStateStore_Redis(t *testing.T) {
	ctx := context.Background()

	// Start Redis container
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("Ready to accept connections").
					WithStartupTimeout(30*time.Second),
				wait.ForListeningPort("6379/tcp"),
			),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	})

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := NewClient(ctx, config.RedisConfig{
		Addrs:        []string{fmt.Sprintf("%s:%s", host, port.Port())},
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	store := NewStateStore(client, "pantry-test:", zap.NewNop())

	_, err = store.Get(ctx, outbound.KeyLastSearchResults)
	assert.ErrorIs(t, err, outbound.ErrStateNotFound)

	require.NoError(t, store.Set(ctx, outbound.KeyLastSearchResults, []byte(`[{"id":"1"}]`)))
	got, err := store.Get(ctx, outbound.KeyLastSearchResults)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	raw, err := client.Get(ctx, "pantry-test:"+outbound.KeyLastSearchResults).Result()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	require.NoError(t, store.Delete(ctx, outbound.KeyLastSearchResults))
	_, err = store.Get(ctx, outbound.KeyLastSearchResults)
	assert.ErrorIs(t, err, outbound.ErrStateNotFound)
}

func TestNewClient_RequiresAddrs(t *testing.T) {
	_, err := NewClient(context.Background(), config.RedisConfig{}, zap.NewNop())
	assert.Error(t, err)
}
