package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type payload struct {
	Name string `json:"name"`
}

func TestAside(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			dest.Name = "lakers"
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, "teams", TeamsKey, &first, time.Minute, fetch(&first)))
	assert.Equal(t, "lakers", first.Name)
	assert.True(t, mr.Exists(TeamsKey))

	var second payload
	require.NoError(t, Aside(ctx, "teams", TeamsKey, &second, time.Minute, fetch(&second)))
	assert.Equal(t, "lakers", second.Name)
	assert.Equal(t, 1, calls, "second lookup is served from redis")

	mr.FastForward(2 * time.Minute)
	var third payload
	require.NoError(t, Aside(ctx, "teams", TeamsKey, &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := withMiniredis(t)
	boom := errors.New("boom")

	var dest payload
	err := Aside(context.Background(), "teams", TeamsKey, &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(TeamsKey))
}

func TestAside_WithoutClient(t *testing.T) {
	SetClient(nil)
	var dest payload
	err := Aside(context.Background(), "teams", TeamsKey, &dest, time.Minute, func() error {
		dest.Name = "celtics"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "celtics", dest.Name)
}

func TestInvalidateTeamPosts(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, TeamPostsKey(1, 20), payload{Name: "a"}, time.Minute))
	require.NoError(t, SetJSON(ctx, TeamPostsKey(1, 50), payload{Name: "b"}, time.Minute))
	require.NoError(t, SetJSON(ctx, TeamPostsKey(2, 20), payload{Name: "c"}, time.Minute))

	InvalidateTeamPosts(ctx, 1)

	assert.False(t, mr.Exists(TeamPostsKey(1, 20)))
	assert.False(t, mr.Exists(TeamPostsKey(1, 50)))
	assert.True(t, mr.Exists(TeamPostsKey(2, 20)))
}
