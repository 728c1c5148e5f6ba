package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
)

var ErrMoveNotCached = errors.New("move not cached")

// MoveCacheRepository remembers the move chosen for a position so that the
// bot does not search the same position twice.
type MoveCacheRepository interface {
	Get(ctx context.Context, key string) (entity.Move, float64, error)
	Put(ctx context.Context, key string, move entity.Move, score float64) error
}

// cachedMove keeps the score as text because JSON has no infinities.
type cachedMove struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Mark  string `json:"mark"`
	Score string `json:"score"`
}

type dbMoveCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMoveCacheRepository stores entries for ttl; zero keeps them forever.
func NewMoveCacheRepository(client *redis.Client, ttl time.Duration) MoveCacheRepository {
	return &dbMoveCache{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbMoveCache) Put(ctx context.Context, key string, move entity.Move, score float64) error {
	moveJSON, err := json.Marshal(cachedMove{
		X:     move.X,
		Y:     move.Y,
		Mark:  string(move.Mark),
		Score: strconv.FormatFloat(score, 'g', -1, 64),
	})
	if err != nil {
		return fmt.Errorf("could not marshal move: %w", err)
	}

	if err = that.client.Set(ctx, moveKey(key), moveJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set move: %w", err)
	}

	return nil
}

func (that *dbMoveCache) Get(ctx context.Context, key string) (entity.Move, float64, error) {
	response, err := that.client.Get(ctx, moveKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return entity.Move{}, 0, ErrMoveNotCached
	}

	if err != nil {
		return entity.Move{}, 0, fmt.Errorf("failed to get move: %w", err)
	}

	var cached cachedMove
	if err = json.Unmarshal([]byte(response), &cached); err != nil {
		return entity.Move{}, 0, fmt.Errorf("failed to unmarshal move: %w", err)
	}

	score, err := strconv.ParseFloat(cached.Score, 64)
	if err != nil {
		return entity.Move{}, 0, fmt.Errorf("failed to parse score %q: %w", cached.Score, err)
	}

	var mark rune
	for _, r := range cached.Mark {
		mark = r
		break
	}

	return entity.NewMove(cached.X, cached.Y, mark), score, nil
}

func moveKey(key string) string {
	return "move:" + key
}
