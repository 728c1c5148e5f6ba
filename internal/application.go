package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-cli/internal/config"
	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cli/internal/render"
	"github.com/rocketscienceinc/tictactoe-cli/internal/repository"
	"github.com/rocketscienceinc/tictactoe-cli/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-cli/internal/search"
	"github.com/rocketscienceinc/tictactoe-cli/internal/service"
	"github.com/rocketscienceinc/tictactoe-cli/internal/tictactoe"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	var cache repository.MoveCacheRepository
	if conf.Cache.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.DB)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		cache = repository.NewMoveCacheRepository(redisStorage.Connection, conf.Cache.TTL)
	}

	seats := NewSeats(conf.Players)

	board, err := entity.NewBoard(seats[0].Player, seats[1].Player, conf.Board.Width, conf.Board.Height)
	if err != nil {
		return fmt.Errorf("could not create board: %w", err)
	}

	prompter, err := tictactoe.NewReadlinePrompter()
	if err != nil {
		return fmt.Errorf("could not open prompt: %w", err)
	}

	defer func() {
		if err = prompter.Close(); err != nil {
			log.Error("could not close prompt", "error", err)
		}
	}()

	bots := service.NewBotService(logger, cache, conf.Search.Workers, nil)

	controller := tictactoe.NewGameController(
		logger,
		board,
		seats,
		bots,
		prompter,
		render.ForWriter(os.Stdout, !conf.Render.Monochrome),
		os.Stdout,
	)

	if _, err = controller.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, tictactoe.ErrInterrupted) {
			log.Info("Game aborted")
			return nil
		}

		return fmt.Errorf("game failed: %w", err)
	}

	return nil
}

// NewSeats turns configured players into contestants in play order.
func NewSeats(players []config.Player) [2]tictactoe.Contestant {
	var seats [2]tictactoe.Contestant

	for i, player := range players[:2] {
		if player.KindOrDefault() == config.KindBot {
			seats[i] = tictactoe.Bot(search.NewAIPlayer(player.Name, player.MarkOrDefault(), player.Difficulty))
			continue
		}

		seats[i] = tictactoe.Human(entity.NewPlayer(player.Name, player.MarkOrDefault()))
	}

	return seats
}
