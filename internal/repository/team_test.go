package repository

import (
	"context"
	"testing"

	"courtside/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamSymbols(teams []models.Team) []string {
	out := make([]string, 0, len(teams))
	for _, t := range teams {
		out = append(out, t.Symbol)
	}
	return out
}

func TestTeamRepository_Favorites(t *testing.T) {
	db := setupDB(t)
	repo := NewTeamRepository(db)
	ctx := context.Background()

	favs, err := repo.Favorites(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, favs)

	require.NoError(t, repo.ReplaceFavorites(ctx, alice, []uint{lakers, warriors, 42}))
	favs, err = repo.Favorites(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"GSW", "LAL"}, teamSymbols(favs), "unknown team ids are ignored")
	assert.NotEmpty(t, favs[0].TeamNames)

	require.NoError(t, repo.ReplaceFavorites(ctx, alice, []uint{lakers}))
	favs, err = repo.Favorites(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"LAL"}, teamSymbols(favs))

	require.NoError(t, repo.AddFavorite(ctx, alice, warriors))
	require.NoError(t, repo.AddFavorite(ctx, alice, warriors))
	favs, err = repo.Favorites(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"GSW", "LAL"}, teamSymbols(favs))

	removed, err := repo.RemoveFavorite(ctx, alice, lakers)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.RemoveFavorite(ctx, alice, lakers)
	require.NoError(t, err)
	assert.False(t, removed)

	others, err := repo.Favorites(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestTeamRepository_GetByID(t *testing.T) {
	db := setupDB(t)
	repo := NewTeamRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.AddFavorite(ctx, alice, lakers))

	team, err := repo.GetByID(ctx, lakers, nil)
	require.NoError(t, err)
	assert.Equal(t, "LAL", team.Symbol)
	assert.Nil(t, team.Liked)

	team, err = repo.GetByID(ctx, lakers, uintPtr(alice))
	require.NoError(t, err)
	require.NotNil(t, team.Liked)
	assert.True(t, *team.Liked)

	team, err = repo.GetByID(ctx, lakers, uintPtr(bob))
	require.NoError(t, err)
	require.NotNil(t, team.Liked)
	assert.False(t, *team.Liked)

	_, err = repo.GetByID(ctx, 1, nil)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestTeamRepository_List(t *testing.T) {
	db := setupDB(t)
	teams, err := NewTeamRepository(db).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"GSW", "LAL"}, teamSymbols(teams))
	require.Len(t, teams[1].TeamNames, 2)
	require.NotNil(t, teams[1].TeamNames[0].Language)
}
