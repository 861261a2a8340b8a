package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/markgrid/markgrid-backend/internal/entity"
	"github.com/markgrid/markgrid-backend/internal/repository"
	"github.com/markgrid/markgrid-backend/internal/session"
)

var ErrUnknownResult = errors.New("unknown match result")

type PlayerService interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetStats(ctx context.Context, id string) (*entity.PlayerStats, error)

	// RecordResult satisfies the coordinator's Stats dependency.
	RecordResult(ctx context.Context, playerID, result string) error
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	IncrementStat(ctx context.Context, id, stat string) error
	GetStats(ctx context.Context, id string) (*entity.PlayerStats, error)
}

type playerService struct {
	playerRepo playerRepo
}

func NewPlayerService(playerRepo playerRepo) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
	}
}

// GetOrCreatePlayer returns the stored record for id, minting a fresh
// identity when id is empty or unknown.
func (that *playerService) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		id = uuid.NewString()
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		player = &entity.Player{ID: id}
		if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}
		return player, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *playerService) GetStats(ctx context.Context, id string) (*entity.PlayerStats, error) {
	stats, err := that.playerRepo.GetStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}
	return stats, nil
}

func (that *playerService) RecordResult(ctx context.Context, playerID, result string) error {
	var stat string
	switch result {
	case session.ResultWin:
		stat = repository.StatWins
	case session.ResultLoss:
		stat = repository.StatLosses
	case session.ResultDraw:
		stat = repository.StatDraws
	default:
		return fmt.Errorf("%w: %q", ErrUnknownResult, result)
	}

	if err := that.playerRepo.IncrementStat(ctx, playerID, stat); err != nil {
		return fmt.Errorf("failed to record %s: %w", result, err)
	}

	return nil
}
