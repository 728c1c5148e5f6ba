package search

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
)

// Searcher runs depth-limited negamax over a single board, mutating it in
// place and restoring it before returning. It is not safe for concurrent use.
type Searcher struct {
	nodes   int64
	stopped atomic.Bool
}

func NewSearcher() *Searcher {
	return &Searcher{}
}

// Nodes is the number of positions evaluated since the searcher was created.
func (that *Searcher) Nodes() int64 {
	return that.nodes
}

// Watch stops the search once ctx is done. The returned func detaches it.
func (that *Searcher) Watch(ctx context.Context) func() bool {
	if ctx.Err() != nil {
		that.stopped.Store(true)
	}

	return context.AfterFunc(ctx, func() {
		that.stopped.Store(true)
	})
}

// Stopped reports whether a watched context ended the search. Values returned
// after that are meaningless.
func (that *Searcher) Stopped() bool {
	return that.stopped.Load()
}

// Negamax returns the value of the board for the side to move, searching
// depth plies with an alpha-beta window.
func (that *Searcher) Negamax(board *entity.Board, depth int, alpha, beta float64) float64 {
	if that.Stopped() {
		return 0
	}

	evaluation := that.evaluate(board)
	if isTerminal(board, depth, evaluation) {
		return evaluation
	}

	value := math.Inf(-1)
	for _, move := range board.ValidMoves() {
		withMove(board, move, func() {
			value = max(value, -that.Negamax(board, depth-1, -beta, -alpha))
		})

		alpha = max(alpha, value)
		if alpha > beta || that.Stopped() {
			break
		}
	}

	return value
}

// Minimax is Negamax without pruning. It visits every node up to depth.
func (that *Searcher) Minimax(board *entity.Board, depth int) float64 {
	evaluation := that.evaluate(board)
	if isTerminal(board, depth, evaluation) {
		return evaluation
	}

	value := math.Inf(-1)
	for _, move := range board.ValidMoves() {
		withMove(board, move, func() {
			value = max(value, -that.Minimax(board, depth-1))
		})
	}

	return value
}

func (that *Searcher) evaluate(board *entity.Board) float64 {
	that.nodes++

	return board.EvaluatePosition()
}

func isTerminal(board *entity.Board, depth int, evaluation float64) bool {
	return depth == 0 || math.IsInf(evaluation, 0) || board.IsFull()
}

// withMove plays move, runs fn and undoes the move even if fn panics.
// The search only plays moves taken from ValidMoves, so a rejected move is a bug.
func withMove(board *entity.Board, move entity.Move, fn func()) {
	if err := board.Move(move); err != nil {
		panic(fmt.Errorf("search played an illegal move: %w", err))
	}

	defer func() {
		if err := board.Undo(); err != nil {
			panic(fmt.Errorf("search could not restore the board: %w", err))
		}
	}()

	fn()
}

// Negamax searches board with a fresh searcher and a full window.
func Negamax(board *entity.Board, depth int) float64 {
	return NewSearcher().Negamax(board, depth, math.Inf(-1), math.Inf(1))
}

// Minimax searches board with a fresh searcher and no pruning.
func Minimax(board *entity.Board, depth int) float64 {
	return NewSearcher().Minimax(board, depth)
}
