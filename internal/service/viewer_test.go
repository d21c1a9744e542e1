package service

import (
	"context"
	"errors"
	"testing"

	"courtside/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLookup struct {
	calls int
	ids   [][]uint
	liked []uint
	err   error
}

func (l *countingLookup) fn(_ context.Context, _ uint, ids []uint) ([]uint, error) {
	l.calls++
	l.ids = append(l.ids, ids)
	return l.liked, l.err
}

func TestDecorateLiked(t *testing.T) {
	t.Parallel()
	viewer := uint(7)

	t.Run("anonymous viewer leaves liked absent", func(t *testing.T) {
		t.Parallel()
		lookup := &countingLookup{}
		posts := []models.Post{{ID: 1}, {ID: 2}}

		require.NoError(t, DecorateLiked(context.Background(), posts, nil, lookup.fn))
		assert.Zero(t, lookup.calls)
		for _, p := range posts {
			assert.Nil(t, p.Liked)
		}
	})

	t.Run("empty collection makes no lookup", func(t *testing.T) {
		t.Parallel()
		lookup := &countingLookup{}
		require.NoError(t, DecorateLiked(context.Background(), []models.Post{}, &viewer, lookup.fn))
		assert.Zero(t, lookup.calls)
	})

	t.Run("one lookup for the whole page", func(t *testing.T) {
		t.Parallel()
		lookup := &countingLookup{liked: []uint{2, 99}}
		comments := []models.PostComment{{ID: 1}, {ID: 2}, {ID: 3}}

		require.NoError(t, DecorateLiked(context.Background(), comments, &viewer, lookup.fn))
		assert.Equal(t, 1, lookup.calls)
		assert.Equal(t, [][]uint{{1, 2, 3}}, lookup.ids)

		got := make([]bool, 0, len(comments))
		for _, c := range comments {
			require.NotNil(t, c.Liked)
			got = append(got, *c.Liked)
		}
		assert.Equal(t, []bool{false, true, false}, got)
	})

	t.Run("lookup error is returned", func(t *testing.T) {
		t.Parallel()
		lookup := &countingLookup{err: errors.New("boom")}
		posts := []models.Post{{ID: 1}}
		assert.EqualError(t, DecorateLiked(context.Background(), posts, &viewer, lookup.fn), "boom")
		assert.Nil(t, posts[0].Liked)
	})
}
