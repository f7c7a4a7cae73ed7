package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tictactoe-arena/internal/entity"
	"tictactoe-arena/internal/repository"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type PlayerService interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
}

type playerService struct {
	players playerRepo
}

func NewPlayerService(players playerRepo) PlayerService {
	return &playerService{
		players: players,
	}
}

// GetOrCreatePlayer - loads the record for a returning client or mints a new
// identity when the id is empty. A returning client whose record is gone, for
// example after a storage flush, gets it recreated under the same id.
func (that *playerService) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player := &entity.Player{ID: uuid.NewString()}

		if err := that.players.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}

		return player, nil
	}

	player, err := that.players.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		player = &entity.Player{ID: id}

		if err = that.players.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to recreate player: %w", err)
		}

		return player, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}
