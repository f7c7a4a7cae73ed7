package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tictactoe-arena/internal/entity"
	"tictactoe-arena/testing/suite"
)

func archivedMatch() *entity.Match {
	return &entity.Match{
		ID: "abc123",
		Board: entity.Board{
			{entity.MarkX, entity.MarkX, entity.MarkX},
			{entity.MarkO, entity.MarkO, entity.EmptyCell},
		},
		Status:  entity.StatusWon,
		Winner:  entity.MarkX,
		Players: []string{"p1", "p2"},
	}
}

func TestMatchRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	matchRepo := NewMatchRepository(st.Storage)

	// Given: a finished match
	match := archivedMatch()

	// When: CreateOrUpdate is called
	err := matchRepo.CreateOrUpdate(ctx, match)

	// Then: no error should be returned
	require.NoError(t, err)
}

func TestMatchRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		match := archivedMatch()
		err := matchRepo.CreateOrUpdate(ctx, match)
		require.NoError(t, err)

		// When: GetByID is called with an existing ID
		retrievedMatch, err := matchRepo.GetByID(ctx, match.ID)

		// Then: the archived record round-trips intact
		require.NoError(t, err)
		require.Equal(t, match.ID, retrievedMatch.ID)
		require.Equal(t, match.Board, retrievedMatch.Board)
		require.Equal(t, match.Winner, retrievedMatch.Winner)
		require.Equal(t, match.Players, retrievedMatch.Players)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// When: GetByID is called with a non-existent ID
		retrievedMatch, err := matchRepo.GetByID(ctx, "9999999")

		// Then: an ErrMatchNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, ErrMatchNotFound, err)
		assert.Empty(t, retrievedMatch.ID)
	})
}

func TestMatchRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	matchRepo := NewMatchRepository(st.Storage)

	match := archivedMatch()
	err := matchRepo.CreateOrUpdate(ctx, match)
	require.NoError(t, err)

	// When: DeleteByID is called with an existing ID
	err = matchRepo.DeleteByID(ctx, match.ID)

	// Then: the record is gone
	require.NoError(t, err)

	_, err = matchRepo.GetByID(ctx, match.ID)
	require.Error(t, err)
	assert.Equal(t, ErrMatchNotFound, err)
}
