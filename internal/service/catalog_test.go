package service

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/game-rental/internal/model"
)

// seedUsers registers each username and returns nothing; failures abort.
func seedUsers(t *testing.T, e *env, names ...string) {
	t.Helper()
	for _, n := range names {
		_, err := e.auth.CreateUser(context.Background(), n, "password123")
		require.NoError(t, err)
	}
}

func submit(t *testing.T, e *env, title, username string) *model.Game {
	t.Helper()
	g, err := e.catalog.SubmitGame(context.Background(), title, model.GenreSimulation, model.PlatformPC, username)
	require.NoError(t, err)
	return g
}

func TestSubmitGame(t *testing.T) {
	e := newEnv()
	seedUsers(t, e, "alice")

	g := submit(t, e, "Minecraft", "alice")
	assert.NotZero(t, g.ID)
	assert.Equal(t, model.GameAvailable, g.Status)
	assert.Zero(t, g.NumberOfRentals)

	mine, err := e.catalog.GamesSubmittedBy(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "alice", mine[0].SubmittedBy)
}

func TestSubmitGame_Rejections(t *testing.T) {
	e := newEnv()
	seedUsers(t, e, "alice")
	ctx := context.Background()

	_, err := e.catalog.SubmitGame(ctx, "Doom", model.GenreShooter, model.PlatformPC, "ghost")
	assert.Equal(t, KindUserUnauthorized, KindOf(err))

	_, err = e.catalog.SubmitGame(ctx, "Doom", model.Genre("HORROR"), model.PlatformPC, "alice")
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = e.catalog.SubmitGame(ctx, "Doom", model.GenreShooter, model.Platform("DREAMCAST"), "alice")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Empty(t, e.db.games)
}

func TestGetGames_EmptyCatalog(t *testing.T) {
	_, err := newEnv().catalog.GetGames(context.Background(), model.SortByTitle)
	require.Error(t, err)
	assert.Equal(t, KindNoGamesFound, KindOf(err))
	assert.Contains(t, err.Error(), "No games in stock, check back at a later time!")
}

func TestGetGames_InvalidSort(t *testing.T) {
	_, err := newEnv().catalog.GetGames(context.Background(), model.SortBy("RATING"))
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestGetGames_Ordering(t *testing.T) {
	e := newEnv()
	seedUsers(t, e, "alice")
	ctx := context.Background()

	counts := map[string]uint32{"Tetris": 5, "Portal": 9, "Celeste": 0, "Hades": 5}
	for title, n := range counts {
		g := submit(t, e, title, "alice")
		e.db.games[g.ID].NumberOfRentals = n
	}

	byPop, err := e.catalog.GetGames(ctx, model.SortByPopularity)
	require.NoError(t, err)
	require.Len(t, byPop, 4)
	assert.True(t, sort.SliceIsSorted(byPop, func(i, j int) bool {
		return byPop[i].NumberOfRentals > byPop[j].NumberOfRentals
	}), "popularity must be non-increasing")
	assert.Equal(t, "Portal", byPop[0].Title)

	byTitle, err := e.catalog.GetGames(ctx, model.SortByTitle)
	require.NoError(t, err)
	titles := make([]string, len(byTitle))
	for i, g := range byTitle {
		titles[i] = g.Title
	}
	assert.Equal(t, []string{"Celeste", "Hades", "Portal", "Tetris"}, titles)
}

func TestSearchGame(t *testing.T) {
	e := newEnv()
	seedUsers(t, e, "alice")
	ctx := context.Background()
	submit(t, e, "Call of Duty", "alice")
	submit(t, e, "Duty Calls", "alice")
	submit(t, e, "Minecraft", "alice")

	games, err := e.catalog.SearchGame(ctx, "call duty")
	require.NoError(t, err)
	require.Len(t, games, 2)

	games, err = e.catalog.SearchGame(ctx, "minecraft")
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Minecraft", games[0].Title)

	_, err = e.catalog.SearchGame(ctx, "zelda")
	assert.Equal(t, KindNoGamesFound, KindOf(err))
}

func TestGamesSubmittedBy_None(t *testing.T) {
	e := newEnv()
	seedUsers(t, e, "alice")
	_, err := e.catalog.GamesSubmittedBy(context.Background(), "alice")
	assert.Equal(t, KindNoGamesFound, KindOf(err))
}

func TestFindGameByID_Absent(t *testing.T) {
	g, err := newEnv().catalog.FindGameByID(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, g)
}

func TestRentAndReturnGameCopy(t *testing.T) {
	e := newEnv()
	seedUsers(t, e, "alice")
	ctx := context.Background()
	g := submit(t, e, "Minecraft", "alice")

	rented, err := e.catalog.RentGameCopy(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, model.GameUnavailable, rented.Status)
	assert.Equal(t, uint32(1), rented.NumberOfRentals)

	_, err = e.catalog.RentGameCopy(ctx, g)
	assert.Equal(t, KindGameRented, KindOf(err))

	require.NoError(t, e.catalog.ReturnGameCopy(ctx, rented))
	stored, err := e.catalog.FindGameByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GameAvailable, stored.Status)
	assert.Equal(t, uint32(1), stored.NumberOfRentals)

	// Returning an already available copy is a no-op.
	assert.NoError(t, e.catalog.ReturnGameCopy(ctx, stored))
}
