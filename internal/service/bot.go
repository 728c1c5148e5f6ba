package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cli/internal/repository"
	"github.com/rocketscienceinc/tictactoe-cli/internal/search"
)

var ErrNotBotsTurn = errors.New("it's not the bot's turn")

// RandomDifficulty makes the bot play any valid move without searching.
const RandomDifficulty = -1

type BotService interface {
	Think(ctx context.Context, bot *search.AIPlayer, board *entity.Board) (search.Result, error)
}

type moveCache interface {
	Get(ctx context.Context, key string) (entity.Move, float64, error)
	Put(ctx context.Context, key string, move entity.Move, score float64) error
}

type botService struct {
	logger  *slog.Logger
	cache   moveCache
	workers int
	rnd     *rand.Rand
}

// NewBotService builds the bot. cache may be nil; workers above one search
// root moves in parallel.
func NewBotService(logger *slog.Logger, cache moveCache, workers int, rnd *rand.Rand) BotService {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // it's ok
	}

	return &botService{
		logger:  logger.With("component", "bot"),
		cache:   cache,
		workers: workers,
		rnd:     rnd,
	}
}

func (that *botService) Think(ctx context.Context, bot *search.AIPlayer, board *entity.Board) (search.Result, error) {
	log := that.logger.With("method", "Think", "bot", bot.Name, "difficulty", bot.Difficulty)

	if !board.Turn().Equal(bot.Player) {
		return search.Result{}, fmt.Errorf("%w: %s to move", ErrNotBotsTurn, board.Turn())
	}

	if bot.Difficulty < 0 {
		move, err := search.RandomMove(board, that.rnd)
		if err != nil {
			return search.Result{}, fmt.Errorf("bot failed to pick a random move: %w", err)
		}

		return search.Result{Move: move}, nil
	}

	key := PositionKey(board, bot.Difficulty)
	if result, ok := that.cached(ctx, log, key, board); ok {
		return result, nil
	}

	started := time.Now()

	result, err := that.search(ctx, board, bot.Difficulty)
	if err != nil {
		return search.Result{}, fmt.Errorf("bot failed to search: %w", err)
	}

	log.Debug("move chosen",
		"move", result.Move.String(),
		"score", result.Score,
		"nodes", result.Nodes,
		"elapsed", time.Since(started),
	)

	if that.cache != nil {
		if err = that.cache.Put(ctx, key, result.Move, result.Score); err != nil {
			log.Error("failed to cache move", "error", err)
		}
	}

	return result, nil
}

func (that *botService) search(ctx context.Context, board *entity.Board, depth int) (search.Result, error) {
	if that.workers > 1 {
		return search.ThinkParallel(ctx, board, depth, that.workers)
	}

	return search.ThinkContext(ctx, board, depth)
}

// cached returns a stored move when it is still playable on board.
func (that *botService) cached(ctx context.Context, log *slog.Logger, key string, board *entity.Board) (search.Result, bool) {
	if that.cache == nil {
		return search.Result{}, false
	}

	move, score, err := that.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrMoveNotCached) {
			log.Error("failed to read move cache", "error", err)
		}

		return search.Result{}, false
	}

	for _, valid := range board.ValidMoves() {
		if valid.Equal(move) {
			log.Debug("move served from cache", "move", valid.String(), "score", score)

			return search.Result{Move: valid, Score: score}, true
		}
	}

	log.Warn("cached move is not playable", "move", move.String())

	return search.Result{}, false
}

// PositionKey identifies a position searched at depth.
func PositionKey(board *entity.Board, depth int) string {
	digest := xxhash.New()
	_, _ = digest.WriteString(board.Fingerprint())
	_, _ = digest.WriteString(":" + strconv.Itoa(depth))

	return strconv.FormatUint(digest.Sum64(), 16)
}
