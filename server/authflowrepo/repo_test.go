package authflowrepo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("single use", func(t *testing.T) {
		repo := NewInMemoryRepo()
		require.NoError(t, repo.Save(ctx, "s1", &AuthFlowState{ReturnURL: "/dashboard"}, time.Minute))

		got, err := repo.Consume(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, "/dashboard", got.ReturnURL)

		_, err = repo.Consume(ctx, "s1")
		require.ErrorIs(t, err, ErrStateNotFound)
	})

	t.Run("unknown and empty states", func(t *testing.T) {
		repo := NewInMemoryRepo()
		_, err := repo.Consume(ctx, "nope")
		require.ErrorIs(t, err, ErrStateNotFound)
		_, err = repo.Consume(ctx, "")
		require.ErrorIs(t, err, ErrStateNotFound)
		require.Error(t, repo.Save(ctx, "", &AuthFlowState{}, time.Minute))
		require.Error(t, repo.Save(ctx, "s", nil, time.Minute))
	})

	t.Run("expiry", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		repo := NewInMemoryRepo()
		repo.now = func() time.Time { return now }

		require.NoError(t, repo.Save(ctx, "old", &AuthFlowState{}, 10*time.Minute))
		require.NoError(t, repo.Save(ctx, "fresh", &AuthFlowState{}, 10*time.Minute))

		now = now.Add(10 * time.Minute)
		_, err := repo.Consume(ctx, "old")
		require.ErrorIs(t, err, ErrStateNotFound)

		require.NoError(t, repo.Save(ctx, "new", &AuthFlowState{}, 10*time.Minute))
		require.Equal(t, 1, repo.Len())
	})

	t.Run("stored copy is isolated", func(t *testing.T) {
		repo := NewInMemoryRepo()
		state := &AuthFlowState{ReturnURL: "/a"}
		require.NoError(t, repo.Save(ctx, "s", state, time.Minute))
		state.ReturnURL = "/b"

		got, err := repo.Consume(ctx, "s")
		require.NoError(t, err)
		require.Equal(t, "/a", got.ReturnURL)
	})
}

func newMiniRedisRepo(t *testing.T) (*RedisRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRepo(client), mr
}

func TestRedisRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("single use", func(t *testing.T) {
		repo, mr := newMiniRedisRepo(t)
		state := uuid.NewString()
		require.NoError(t, repo.Save(ctx, state, &AuthFlowState{ReturnURL: "/dashboard", CreatedAt: time.Now().UTC()}, time.Minute))
		require.True(t, mr.Exists("oauth_state:"+state))
		require.Equal(t, time.Minute, mr.TTL("oauth_state:"+state))

		got, err := repo.Consume(ctx, state)
		require.NoError(t, err)
		require.Equal(t, "/dashboard", got.ReturnURL)
		require.False(t, mr.Exists("oauth_state:"+state))

		_, err = repo.Consume(ctx, state)
		require.ErrorIs(t, err, ErrStateNotFound)
	})

	t.Run("unknown and empty states", func(t *testing.T) {
		repo, _ := newMiniRedisRepo(t)
		_, err := repo.Consume(ctx, "nope")
		require.ErrorIs(t, err, ErrStateNotFound)
		_, err = repo.Consume(ctx, "")
		require.ErrorIs(t, err, ErrStateNotFound)
		require.Error(t, repo.Save(ctx, "", &AuthFlowState{}, time.Minute))
		require.Error(t, repo.Save(ctx, "s", nil, time.Minute))
		require.Error(t, repo.Save(ctx, "s", &AuthFlowState{}, 0))
	})

	t.Run("expiry", func(t *testing.T) {
		repo, mr := newMiniRedisRepo(t)
		require.NoError(t, repo.Save(ctx, "old", &AuthFlowState{}, 10*time.Minute))

		mr.FastForward(10 * time.Minute)
		_, err := repo.Consume(ctx, "old")
		require.ErrorIs(t, err, ErrStateNotFound)
	})

	t.Run("corrupt value", func(t *testing.T) {
		repo, mr := newMiniRedisRepo(t)
		require.NoError(t, mr.Set("oauth_state:bad", "not json"))
		_, err := repo.Consume(ctx, "bad")
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrStateNotFound)
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, err := NewRedisClient(ctx, addr, "")
		require.Error(t, err)
	})
}
