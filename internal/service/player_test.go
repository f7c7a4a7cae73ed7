package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tictactoe-arena/internal/entity"
)

func TestPlayerService_GetOrCreatePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("Mints a new identity when the id is empty", func(t *testing.T) {
		players := newFakePlayerRepo()
		svc := NewPlayerService(players)

		// When: calling with an empty id
		player, err := svc.GetOrCreatePlayer(ctx, "")

		// Then: a fresh id is generated and persisted
		require.NoError(t, err)
		assert.NotEmpty(t, player.ID)

		players.mu.Lock()
		defer players.mu.Unlock()
		assert.Contains(t, players.records, player.ID)
	})

	t.Run("Loads the record for a returning client", func(t *testing.T) {
		players := newFakePlayerRepo()
		existing := &entity.Player{ID: "p1", Mark: entity.MarkX, SessionID: "abc"}
		require.NoError(t, players.CreateOrUpdate(ctx, existing))

		svc := NewPlayerService(players)

		// When: calling with a known id
		player, err := svc.GetOrCreatePlayer(ctx, "p1")

		// Then: the stored record comes back
		require.NoError(t, err)
		assert.Equal(t, existing, player)
	})

	t.Run("Recreates the record for a returning client after a storage flush", func(t *testing.T) {
		players := newFakePlayerRepo()
		svc := NewPlayerService(players)

		// When: a client returns with an id that has no record behind it
		player, err := svc.GetOrCreatePlayer(ctx, "p7")

		// Then: the record is recreated under the same id
		require.NoError(t, err)
		assert.Equal(t, "p7", player.ID)

		players.mu.Lock()
		defer players.mu.Unlock()
		assert.Contains(t, players.records, "p7")
	})
}
