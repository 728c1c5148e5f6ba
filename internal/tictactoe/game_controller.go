package tictactoe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/rocketscienceinc/tictactoe-cli/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cli/internal/render"
	"github.com/rocketscienceinc/tictactoe-cli/internal/search"
)

var ErrUnknownPlayer = errors.New("no contestant for the player to move")

var numberPattern = regexp.MustCompile(`\d+`)

// Prompter reads one line of human input. It should give up once ctx is done.
type Prompter interface {
	Prompt(ctx context.Context, prompt string) (string, error)
}

type botService interface {
	Think(ctx context.Context, bot *search.AIPlayer, board *entity.Board) (search.Result, error)
}

// Contestant is a seat at the board: a human, or a bot when Bot is set.
type Contestant struct {
	Player *entity.Player
	Bot    *search.AIPlayer
}

func Human(player *entity.Player) Contestant {
	return Contestant{Player: player}
}

func Bot(bot *search.AIPlayer) Contestant {
	return Contestant{Player: bot.Player, Bot: bot}
}

func (that Contestant) IsBot() bool {
	return that.Bot != nil
}

// Result describes a finished game. Winner is nil for a draw.
type Result struct {
	Winner *entity.Player
	Moves  int
}

type GameController struct {
	logger   *slog.Logger
	board    *entity.Board
	seats    [2]Contestant
	bots     botService
	prompter Prompter
	renderer *render.Renderer
	out      io.Writer
}

func NewGameController(
	logger *slog.Logger,
	board *entity.Board,
	seats [2]Contestant,
	bots botService,
	prompter Prompter,
	renderer *render.Renderer,
	out io.Writer,
) *GameController {
	return &GameController{
		logger:   logger.With("component", "game"),
		board:    board,
		seats:    seats,
		bots:     bots,
		prompter: prompter,
		renderer: renderer,
		out:      out,
	}
}

// Run alternates turns until someone completes a line or the board fills up.
func (that *GameController) Run(ctx context.Context) (Result, error) {
	log := that.logger.With("method", "Run")

	if _, finished := that.outcome(); finished {
		return Result{}, fmt.Errorf("failed to start game: %w", apperror.ErrGameFinished)
	}

	names := lo.Map(that.seats[:], func(seat Contestant, _ int) string {
		return seat.Player.Name
	})
	that.printf("Starting game of size %dx%d for players [%s].\n",
		that.board.Width(), that.board.Height(), strings.Join(names, ", "))
	that.display()

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("game interrupted: %w", err)
		}

		seat, err := that.seatToMove()
		if err != nil {
			return Result{}, err
		}

		move, err := that.nextMove(ctx, seat)
		if err != nil {
			return Result{}, fmt.Errorf("failed to get move from %s: %w", seat.Player, err)
		}

		if err = that.board.Move(move); err != nil {
			return Result{}, fmt.Errorf("failed to play %s: %w", move, err)
		}

		log.Debug("move played", "player", seat.Player.Name, "move", move.String())
		that.display()

		if result, finished := that.outcome(); finished {
			winner := "Nobody"
			if result.Winner != nil {
				winner = result.Winner.Name
			}
			that.printf("game has come to an end. %s has won.\n", winner)
			log.Info("game finished", "winner", winner, "moves", result.Moves)

			return result, nil
		}
	}
}

func (that *GameController) outcome() (Result, bool) {
	moves := that.board.Len()

	if math.IsInf(that.board.EvaluatePosition(), -1) {
		return Result{Winner: that.board.Opponent(), Moves: moves}, true
	}

	if that.board.IsFull() {
		return Result{Moves: moves}, true
	}

	return Result{}, false
}

func (that *GameController) seatToMove() (Contestant, error) {
	for _, seat := range that.seats {
		if seat.Player.Equal(that.board.Turn()) {
			return seat, nil
		}
	}

	return Contestant{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, that.board.Turn())
}

func (that *GameController) nextMove(ctx context.Context, seat Contestant) (entity.Move, error) {
	if !seat.IsBot() {
		return that.askInput(ctx, seat.Player)
	}

	that.printf("%s is thinking...\n", seat.Player.Name)

	result, err := that.bots.Think(ctx, seat.Bot, that.board)
	if err != nil {
		return entity.Move{}, err
	}

	if remark := flavor(result); remark != "" {
		that.printf("%s: %s\n", seat.Player.Name, remark)
	}

	return result.Move, nil
}

func flavor(result search.Result) string {
	switch result.Verdict() {
	case search.VerdictWinning:
		return "You may as well resign."
	case search.VerdictLosing:
		return "You must've gotten lucky..."
	case search.VerdictDrawn:
		return "I foresee the most boring outcome."
	default:
		return ""
	}
}

// askInput prompts until the human names an empty cell as "x, y" (1-based).
func (that *GameController) askInput(ctx context.Context, player *entity.Player) (entity.Move, error) {
	that.printf("Your turn, %s playing as %c.\n", player.Name, player.Mark)

	valid := that.board.ValidMoves()
	locations := lo.Map(valid, func(m entity.Move, _ int) string {
		x, y := m.Location()
		return fmt.Sprintf("(%d, %d)", x, y)
	})
	that.printf("list of valid moves: [%s]\n", strings.Join(locations, ", "))

	for {
		line, err := that.readLine(ctx, "x, y = ")
		if err != nil {
			return entity.Move{}, fmt.Errorf("failed to read input: %w", err)
		}

		move, ok := parseMove(line, player.Mark)
		if !ok {
			that.printf("Invalid input, please try again.\n")
			continue
		}

		if !lo.ContainsBy(valid, move.Equal) {
			that.printf("Invalid position, please try again.\n")
			continue
		}

		return move, nil
	}
}

type answer struct {
	line string
	err  error
}

// readLine returns as soon as ctx is done, even if the prompter keeps blocking.
func (that *GameController) readLine(ctx context.Context, prompt string) (string, error) {
	answers := make(chan answer, 1)
	go func() {
		line, err := that.prompter.Prompt(ctx, prompt)
		answers <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("input cancelled: %w", ctx.Err())
	case got := <-answers:
		return got.line, got.err
	}
}

// parseMove reads the first two integers of line as 1-based x and y.
func parseMove(line string, mark rune) (entity.Move, bool) {
	numbers := numberPattern.FindAllString(line, 2)
	if len(numbers) < 2 {
		return entity.Move{}, false
	}

	x, err := strconv.Atoi(numbers[0])
	if err != nil {
		return entity.Move{}, false
	}

	y, err := strconv.Atoi(numbers[1])
	if err != nil {
		return entity.Move{}, false
	}

	return entity.NewMove(x-1, y-1, mark), true
}

func (that *GameController) display() {
	that.printf("%s", that.renderer.Board(that.board))
}

func (that *GameController) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(that.out, format, args...)
}
