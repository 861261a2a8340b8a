package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markgrid/markgrid-backend/internal/entity"
	"github.com/markgrid/markgrid-backend/internal/repository"
	"github.com/markgrid/markgrid-backend/testing/suite"
)

func TestPlayerRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, s := suite.New(t)
	repo := repository.NewPlayerRepository(s.Storage)

	t.Run("Stores and loads a player record", func(t *testing.T) {
		// Given: a player bound to a room
		player := &entity.Player{ID: "player-1", Mark: entity.PlayerX, RoomCode: "ABCDEF"}

		// When: saving and reading it back
		err := repo.CreateOrUpdate(ctx, player)
		require.NoError(t, err)

		loaded, err := repo.GetByID(ctx, "player-1")

		// Then: the stored record round-trips
		require.NoError(t, err)
		assert.Equal(t, player, loaded)
	})

	t.Run("Overwrites an existing record", func(t *testing.T) {
		player := &entity.Player{ID: "player-2", Mark: entity.PlayerO}
		require.NoError(t, repo.CreateOrUpdate(ctx, player))

		player.RoomCode = "XYZ123"
		require.NoError(t, repo.CreateOrUpdate(ctx, player))

		loaded, err := repo.GetByID(ctx, "player-2")
		require.NoError(t, err)
		assert.Equal(t, "XYZ123", loaded.RoomCode)
	})

	t.Run("Reports a missing player", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "no-such-player")
		assert.ErrorIs(t, err, repository.ErrPlayerNotFound)
	})

	t.Run("Accumulates result counters per player", func(t *testing.T) {
		// Given: two wins, one loss and one draw for the same player
		for _, stat := range []string{
			repository.StatWins, repository.StatWins,
			repository.StatLosses, repository.StatDraws,
		} {
			require.NoError(t, repo.IncrementStat(ctx, "player-3", stat))
		}

		// When: reading the totals
		stats, err := repo.GetStats(ctx, "player-3")

		// Then: every counter reflects its increments
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Wins)
		assert.Equal(t, int64(1), stats.Losses)
		assert.Equal(t, int64(1), stats.Draws)
	})

	t.Run("Returns zeroed stats for an unseen player", func(t *testing.T) {
		stats, err := repo.GetStats(ctx, "player-4")

		require.NoError(t, err)
		assert.Equal(t, &entity.PlayerStats{}, stats)
	})
}
