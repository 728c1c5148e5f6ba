package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-cli/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
)

// Result is the outcome of a root search.
type Result struct {
	Move  entity.Move
	Score float64
	Nodes int64
}

// Verdict summarises a root score for display.
type Verdict int

const (
	VerdictUnclear Verdict = iota
	VerdictWinning
	VerdictLosing
	VerdictDrawn
)

func (that Result) Verdict() Verdict {
	switch {
	case math.IsInf(that.Score, 1):
		return VerdictWinning
	case math.IsInf(that.Score, -1):
		return VerdictLosing
	case that.Score == 0:
		return VerdictDrawn
	default:
		return VerdictUnclear
	}
}

// AIPlayer is a player whose moves come from a search Difficulty plies deep
// below each root move.
type AIPlayer struct {
	*entity.Player
	Difficulty int
}

func NewAIPlayer(name, mark string, difficulty int) *AIPlayer {
	return &AIPlayer{
		Player:     entity.NewPlayer(name, mark),
		Difficulty: difficulty,
	}
}

func (that *AIPlayer) Think(board *entity.Board) (entity.Move, error) {
	result, err := Think(board, that.Difficulty)
	if err != nil {
		return entity.Move{}, err
	}

	return result.Move, nil
}

// Think tries every valid move and keeps the first one with the strictly
// greatest negated reply value. The board is restored before returning.
func Think(board *entity.Board, depth int) (Result, error) {
	return ThinkContext(context.Background(), board, depth)
}

// ThinkContext is Think that gives up as soon as ctx is done, even in the
// middle of a root move.
func ThinkContext(ctx context.Context, board *entity.Board, depth int) (Result, error) {
	moves := board.ValidMoves()
	if len(moves) == 0 {
		return Result{}, apperror.ErrNoAvailableMoves
	}

	searcher := NewSearcher()
	defer searcher.Watch(ctx)()

	scores := make([]float64, len(moves))
	for i, move := range moves {
		scores[i] = searcher.scoreRoot(board, move, depth)
		if searcher.Stopped() {
			return Result{}, fmt.Errorf("search interrupted: %w", ctx.Err())
		}
	}

	return pickBest(moves, scores, searcher.Nodes()), nil
}

// ThinkParallel is Think with root moves spread over workers, each searching
// its own copy of the board. It picks the same move as Think and stops every
// worker once ctx is done.
func ThinkParallel(ctx context.Context, board *entity.Board, depth, workers int) (Result, error) {
	moves := board.ValidMoves()
	if len(moves) == 0 {
		return Result{}, apperror.ErrNoAvailableMoves
	}

	workers = max(1, min(workers, len(moves)))
	scores := make([]float64, len(moves))

	var nodes atomic.Int64

	group, ctx := errgroup.WithContext(ctx)
	for worker := 0; worker < workers; worker++ {
		worker := worker
		local := board.Clone()
		group.Go(func() error {
			searcher := NewSearcher()
			defer searcher.Watch(ctx)()
			defer func() { nodes.Add(searcher.Nodes()) }()

			for i := worker; i < len(moves); i += workers {
				scores[i] = searcher.scoreRoot(local, moves[i], depth)
				if searcher.Stopped() {
					return fmt.Errorf("search interrupted: %w", ctx.Err())
				}
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	return pickBest(moves, scores, nodes.Load()), nil
}

// RandomMove picks any valid move.
func RandomMove(board *entity.Board, rnd *rand.Rand) (entity.Move, error) {
	moves := board.ValidMoves()
	if len(moves) == 0 {
		return entity.Move{}, apperror.ErrNoAvailableMoves
	}

	return moves[rnd.Intn(len(moves))], nil
}

func (that *Searcher) scoreRoot(board *entity.Board, move entity.Move, depth int) float64 {
	var score float64
	withMove(board, move, func() {
		score = -that.Negamax(board, depth, math.Inf(-1), math.Inf(1))
	})

	return score
}

func pickBest(moves []entity.Move, scores []float64, nodes int64) Result {
	best := Result{Move: moves[0], Score: math.Inf(-1), Nodes: nodes}
	for i, score := range scores {
		if score > best.Score {
			best.Move = moves[i]
			best.Score = score
		}
	}

	return best
}
