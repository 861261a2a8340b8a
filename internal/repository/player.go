package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/markgrid/markgrid-backend/internal/entity"
)

var ErrPlayerNotFound = errors.New("player not found")

const (
	StatWins   = "wins"
	StatLosses = "losses"
	StatDraws  = "draws"
)

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)

	IncrementStat(ctx context.Context, id, stat string) error
	GetStats(ctx context.Context, id string) (*entity.PlayerStats, error)
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	playerKey := "player:" + player.ID
	err = that.client.Set(ctx, playerKey, playerJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	playerKey := "player:" + id

	response, err := that.client.Get(ctx, playerKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}

	var existingPlayer entity.Player
	if err = json.Unmarshal([]byte(response), &existingPlayer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &existingPlayer, nil
}

func (that *dbPlayer) IncrementStat(ctx context.Context, id, stat string) error {
	statsKey := "stats:" + id

	if err := that.client.HIncrBy(ctx, statsKey, stat, 1).Err(); err != nil {
		return fmt.Errorf("failed to increment %s: %w", stat, err)
	}

	return nil
}

func (that *dbPlayer) GetStats(ctx context.Context, id string) (*entity.PlayerStats, error) {
	statsKey := "stats:" + id

	fields, err := that.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	stats := &entity.PlayerStats{}
	for field, value := range fields {
		var count int64
		if _, err = fmt.Sscan(value, &count); err != nil {
			return nil, fmt.Errorf("failed to parse %s counter: %w", field, err)
		}

		switch field {
		case StatWins:
			stats.Wins = count
		case StatLosses:
			stats.Losses = count
		case StatDraws:
			stats.Draws = count
		}
	}

	return stats, nil
}
