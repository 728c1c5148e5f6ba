package tictactoe

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-cli/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cli/internal/render"
	"github.com/rocketscienceinc/tictactoe-cli/internal/search"
	"github.com/rocketscienceinc/tictactoe-cli/internal/service"
)

type scriptedPrompter struct {
	lines []string
}

func (that *scriptedPrompter) Prompt(context.Context, string) (string, error) {
	if len(that.lines) == 0 {
		return "", io.EOF
	}

	line := that.lines[0]
	that.lines = that.lines[1:]

	return line, nil
}

// stuckPrompter never answers, like a terminal nobody types into.
type stuckPrompter struct {
	release chan struct{}
}

func (that *stuckPrompter) Prompt(context.Context, string) (string, error) {
	<-that.release
	return "", io.EOF
}

// scriptedBots answers with fixed moves and scores.
type scriptedBots struct {
	results []search.Result
}

func (that *scriptedBots) Think(_ context.Context, bot *search.AIPlayer, _ *entity.Board) (search.Result, error) {
	result := that.results[0]
	that.results = that.results[1:]
	result.Move.Mark = bot.Mark

	return result, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(t *testing.T, seats [2]Contestant, width, height int, bots botService, lines ...string) (*GameController, *bytes.Buffer) {
	t.Helper()

	board, err := entity.NewBoard(seats[0].Player, seats[1].Player, width, height)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	controller := NewGameController(
		discardLogger(),
		board,
		seats,
		bots,
		&scriptedPrompter{lines: lines},
		render.New(termenv.Ascii),
		out,
	)

	return controller, out
}

func humans() [2]Contestant {
	return [2]Contestant{
		Human(entity.NewPlayer("Xavier", "X")),
		Human(entity.NewPlayer("Olga", "O")),
	}
}

func TestGameController_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("First player completes a column", func(t *testing.T) {
		// Given: two humans on 3x3 where X fills column 1
		controller, out := newController(t, humans(), 3, 3, nil,
			"1, 1", "2,1", "1 2", "2 2", "1,3")

		// When: the game is played
		result, err := controller.Run(ctx)

		// Then: X wins after five moves
		require.NoError(t, err)
		require.NotNil(t, result.Winner)
		assert.Equal(t, "Xavier", result.Winner.Name)
		assert.Equal(t, 5, result.Moves)
		assert.Contains(t, out.String(), "Starting game of size 3x3 for players [Xavier, Olga].")
		assert.Contains(t, out.String(), "game has come to an end. Xavier has won.")
	})

	t.Run("Re-prompts on bad input", func(t *testing.T) {
		// Given: garbage, an out of range cell and an occupied cell along the way
		controller, out := newController(t, humans(), 3, 3, nil,
			"abc", "1 1",
			"9 9", "1 1", "2 1",
			"1 2", "2 2", "1 3")

		// When: the game is played
		result, err := controller.Run(ctx)

		// Then: each mistake is reported and the game still finishes
		require.NoError(t, err)
		assert.Equal(t, "Xavier", result.Winner.Name)
		assert.Equal(t, 1, strings.Count(out.String(), "Invalid input, please try again."))
		assert.Equal(t, 2, strings.Count(out.String(), "Invalid position, please try again."))
	})

	t.Run("Full board ends in a draw", func(t *testing.T) {
		// Given: moves that fill the board without a line
		controller, out := newController(t, humans(), 3, 3, nil,
			"1 1", "2 1", "3 1",
			"2 2", "1 2", "3 2",
			"2 3", "1 3", "3 3")

		// When: the game is played
		result, err := controller.Run(ctx)

		// Then: nobody wins
		require.NoError(t, err)
		assert.Nil(t, result.Winner)
		assert.Equal(t, 9, result.Moves)
		assert.Contains(t, out.String(), "Nobody has won.")
	})

	t.Run("Lists valid moves for the human", func(t *testing.T) {
		// Given: a 2x1 board where one mark wins
		controller, out := newController(t, humans(), 2, 1, nil, "2 1")

		// When: the game is played
		_, err := controller.Run(ctx)

		// Then: both cells were offered with 1-based coordinates
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Your turn, Xavier playing as X.")
		assert.Contains(t, out.String(), "list of valid moves: [(1, 1), (2, 1)]")
	})

	t.Run("Bot takes an immediate win", func(t *testing.T) {
		// Given: a searching bot moving first on a 3x1 board
		seats := [2]Contestant{
			Bot(search.NewAIPlayer("Beelzebub", "X", 2)),
			Human(entity.NewPlayer("Brian", "O")),
		}
		bots := service.NewBotService(discardLogger(), nil, 1, nil)
		controller, out := newController(t, seats, 3, 1, bots)

		// When: the game is played
		result, err := controller.Run(ctx)

		// Then: the bot wins with its first move and says so
		require.NoError(t, err)
		assert.Equal(t, "Beelzebub", result.Winner.Name)
		assert.Equal(t, 1, result.Moves)
		assert.Contains(t, out.String(), "Beelzebub is thinking...")
		assert.Contains(t, out.String(), "Beelzebub: You may as well resign.")
	})

	t.Run("Bot remarks follow its verdict", func(t *testing.T) {
		// Given: a bot that expects a draw and then a loss
		seats := [2]Contestant{
			Human(entity.NewPlayer("Brian", "X")),
			Bot(search.NewAIPlayer("Beelzebub", "O", 2)),
		}
		bots := &scriptedBots{results: []search.Result{
			{Move: entity.Move{X: 1, Y: 0}, Score: 0},
			{Move: entity.Move{X: 1, Y: 1}, Score: math.Inf(-1)},
		}}
		controller, out := newController(t, seats, 3, 3, bots, "1 1", "1 2", "1 3")

		// When: the game is played
		result, err := controller.Run(ctx)

		// Then: both remarks were made and the human won
		require.NoError(t, err)
		assert.Equal(t, "Brian", result.Winner.Name)
		assert.Contains(t, out.String(), "Beelzebub: I foresee the most boring outcome.")
		assert.Contains(t, out.String(), "Beelzebub: You must've gotten lucky...")
	})

	t.Run("Refuses a board that is already decided", func(t *testing.T) {
		// Given: a 1x1 board that X has already won
		controller, out := newController(t, humans(), 1, 1, nil)
		require.NoError(t, controller.board.Move(entity.NewMove(0, 0, 'X')))

		// When: the game is played
		_, err := controller.Run(ctx)

		// Then: ErrGameFinished is returned before anything is printed
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Empty(t, out.String())
	})

	t.Run("Stops when input ends", func(t *testing.T) {
		// Given: no input at all
		controller, _ := newController(t, humans(), 3, 3, nil)

		// When: the game is played
		_, err := controller.Run(ctx)

		// Then: the read error is returned
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("Stops when the context is cancelled", func(t *testing.T) {
		// Given: a cancelled context
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		controller, _ := newController(t, humans(), 3, 3, nil, "1 1")

		// When: the game is played
		_, err := controller.Run(cancelled)

		// Then: the cancellation is returned
		require.ErrorIs(t, err, context.Canceled)
	})
}

// runAndCancel plays controller, cancels after delay and fails the test if Run
// does not return soon after.
func runAndCancel(t *testing.T, controller *GameController, delay time.Duration) error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 1)
	go func() {
		_, err := controller.Run(ctx)
		errs <- err
	}()

	time.Sleep(delay)
	cancel()

	select {
	case err := <-errs:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("game kept running after the context was cancelled")
		return nil
	}
}

func TestGameController_Run_Cancel(t *testing.T) {
	t.Run("While waiting for a human", func(t *testing.T) {
		// Given: a human who never types anything
		prompter := &stuckPrompter{release: make(chan struct{})}
		t.Cleanup(func() { close(prompter.release) })

		board, err := entity.NewBoard(humans()[0].Player, humans()[1].Player, 3, 3)
		require.NoError(t, err)

		controller := NewGameController(discardLogger(), board, humans(), nil, prompter,
			render.New(termenv.Ascii), &bytes.Buffer{})

		// When: the game is cancelled at the prompt
		err = runAndCancel(t, controller, 20*time.Millisecond)

		// Then: Run returns the cancellation
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("While a bot is searching", func(t *testing.T) {
		// Given: a single-worker bot searching far deeper than it can finish
		seats := [2]Contestant{
			Bot(search.NewAIPlayer("Beelzebub", "X", 20)),
			Human(entity.NewPlayer("Brian", "O")),
		}
		bots := service.NewBotService(discardLogger(), nil, 1, nil)
		controller, _ := newController(t, seats, 6, 4, bots)

		// When: the game is cancelled mid-search
		err := runAndCancel(t, controller, 50*time.Millisecond)

		// Then: Run returns the cancellation and the board is untouched
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, controller.board.Len())
	})
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		line string
		want entity.Move
		ok   bool
	}{
		{line: "1, 1", want: entity.NewMove(0, 0, 'X'), ok: true},
		{line: "x=3 y=2", want: entity.NewMove(2, 1, 'X'), ok: true},
		{line: "4 5 6", want: entity.NewMove(3, 4, 'X'), ok: true},
		{line: "7", ok: false},
		{line: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			// When: parsing the line
			got, ok := parseMove(tt.line, 'X')

			// Then: the 1-based pair becomes a 0-based move
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
