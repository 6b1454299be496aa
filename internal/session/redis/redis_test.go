package redis

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/account-client/internal/session"
)

// Интеграционные тесты: поднимают реальный Redis через testcontainers-go.
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/session/redis -v -race -count=1

func startRedis(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "docker.io/redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	s, err := New(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()), "test:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStore_SetGetRemove(t *testing.T) {
	s := startRedis(t)
	ctx := context.Background()

	_, err := s.Get(ctx, session.AccessCookie)
	require.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, s.Set(ctx, session.NewCookie(session.AccessCookie, "acc")))
	require.NoError(t, s.Set(ctx, session.NewCookie(session.RefreshCookie, "ref")))

	v, err := s.Get(ctx, session.AccessCookie)
	require.NoError(t, err)
	require.Equal(t, "acc", v)

	require.NoError(t, s.Remove(ctx))
	_, err = s.Get(ctx, session.RefreshCookie)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestStore_TTLFromMaxAge(t *testing.T) {
	s := startRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, &http.Cookie{Name: session.AccessCookie, Value: "acc", MaxAge: 120}))

	ttl, err := s.rdb.TTL(ctx, s.key(session.AccessCookie)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Minute)
	require.LessOrEqual(t, ttl, 2*time.Minute)
}

func TestStore_ExpiredCookieDeletes(t *testing.T) {
	s := startRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, session.NewCookie(session.AccessCookie, "acc")))
	require.NoError(t, s.Set(ctx, session.ExpiredCookie(session.AccessCookie)))

	_, err := s.Get(ctx, session.AccessCookie)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestNew_BadURL(t *testing.T) {
	_, err := New(context.Background(), "not-a-url", "")
	require.Error(t, err)
}
