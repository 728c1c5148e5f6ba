package entity

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rocketscienceinc/tictactoe-cli/internal/apperror"
)

var (
	ErrInvalidSize    = errors.New("board dimensions must be positive")
	ErrMissingPlayer  = errors.New("board needs two players")
	ErrMissingMark    = errors.New("player has no mark")
	ErrDuplicateMarks = errors.New("players must have distinct marks")
)

// Board is a W×H grid played by two players. The move history is a stack:
// Move pushes and Undo pops, and the side to move always follows its parity.
type Board struct {
	width   int
	height  int
	history []Move
	players [2]*Player
	turn    *Player
}

func NewBoard(playerOne, playerTwo *Player, width, height int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	if playerOne == nil || playerTwo == nil {
		return nil, ErrMissingPlayer
	}

	for _, player := range []*Player{playerOne, playerTwo} {
		if player.Mark == 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingMark, player.Name)
		}
	}

	if playerOne.Mark == playerTwo.Mark {
		return nil, fmt.Errorf("%w: %c", ErrDuplicateMarks, playerOne.Mark)
	}

	return &Board{
		width:   width,
		height:  height,
		history: make([]Move, 0, width*height),
		players: [2]*Player{playerOne, playerTwo},
		turn:    playerOne,
	}, nil
}

func (that *Board) Width() int {
	return that.width
}

func (that *Board) Height() int {
	return that.height
}

// InARow is the number of co-linear marks that wins the game.
func (that *Board) InARow() int {
	return min(that.width, that.height)
}

func (that *Board) Turn() *Player {
	return that.turn
}

// Opponent is the player who made the last move (or moves second on an empty board).
func (that *Board) Opponent() *Player {
	return that.players[(len(that.history)+1)%2]
}

func (that *Board) Players() [2]*Player {
	return that.players
}

func (that *Board) Len() int {
	return len(that.history)
}

// History returns a copy of the moves played so far, oldest first.
func (that *Board) History() []Move {
	return append([]Move(nil), that.history...)
}

func (that *Board) IsFull() bool {
	return len(that.history) >= that.width*that.height
}

func (that *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < that.width && y < that.height
}

// At returns the mark at (x, y), or 0 when the cell is empty.
func (that *Board) At(x, y int) rune {
	for _, m := range that.history {
		if m.X == x && m.Y == y {
			return m.Mark
		}
	}

	return 0
}

func (that *Board) Move(m Move) error {
	if !that.InBounds(m.X, m.Y) {
		return fmt.Errorf("%w: (%d,%d) on %dx%d", apperror.ErrOutOfBounds, m.X, m.Y, that.width, that.height)
	}

	if that.At(m.X, m.Y) != 0 {
		return fmt.Errorf("%w: (%d,%d)", apperror.ErrCellOccupied, m.X, m.Y)
	}

	if m.Mark != that.turn.Mark {
		return fmt.Errorf("%w: %c plays, %c to move", apperror.ErrNotYourTurn, m.Mark, that.turn.Mark)
	}

	that.history = append(that.history, m)
	that.turn = that.players[len(that.history)%2]

	return nil
}

func (that *Board) Undo() error {
	if len(that.history) == 0 {
		return apperror.ErrEmptyHistoryUndo
	}

	that.history = that.history[:len(that.history)-1]
	that.turn = that.players[len(that.history)%2]

	return nil
}

// ValidMoves lists every empty cell tagged with the mark of the side to move,
// in row-major order.
func (that *Board) ValidMoves() []Move {
	occupied := make(map[Cell]struct{}, len(that.history))
	for _, m := range that.history {
		occupied[m.Cell()] = struct{}{}
	}

	moves := make([]Move, 0, that.width*that.height-len(occupied))
	for y := 0; y < that.height; y++ {
		for x := 0; x < that.width; x++ {
			if _, ok := occupied[Cell{X: x, Y: y}]; ok {
				continue
			}
			moves = append(moves, NewMove(x, y, that.turn.Mark))
		}
	}

	return moves
}

// EvaluatePosition scores the position for the side to move: -Inf when the
// side that just moved holds a full line, +Inf when the side to move does,
// 0 for a full board, otherwise the sum of squared line counts of the side to
// move minus those of its opponent.
func (that *Board) EvaluatePosition() float64 {
	n := that.InARow()
	w, h := that.width, that.height

	// diagonals are indexed by x-y shifted by h-1 and anti-diagonals by x+y
	var (
		mover    = newLineTally(w, h)
		opponent = newLineTally(w, h)
	)

	for _, m := range that.history {
		if m.Mark == that.turn.Mark {
			mover.add(m, h)
		} else {
			opponent.add(m, h)
		}
	}

	opponentScore, opponentWon := opponent.score(w, h, n)
	if opponentWon {
		return math.Inf(-1)
	}

	moverScore, moverWon := mover.score(w, h, n)
	if moverWon {
		return math.Inf(1)
	}

	if that.IsFull() {
		return 0
	}

	return float64(moverScore - opponentScore)
}

// Clone returns an independent copy sharing only the player references.
func (that *Board) Clone() *Board {
	clone := *that
	clone.history = make([]Move, len(that.history), that.width*that.height)
	copy(clone.history, that.history)

	return &clone
}

type lineTally struct {
	rows  []int
	cols  []int
	diags []int
	antis []int
}

func newLineTally(w, h int) lineTally {
	return lineTally{
		rows:  make([]int, h),
		cols:  make([]int, w),
		diags: make([]int, w+h-1),
		antis: make([]int, w+h-1),
	}
}

func (that *lineTally) add(m Move, h int) {
	that.rows[m.Y]++
	that.cols[m.X]++
	that.diags[m.X-m.Y+h-1]++
	that.antis[m.X+m.Y]++
}

// score sums the squared counts over every scored line and reports whether
// any of them reaches n. Only diagonals that can hold n cells are scored.
func (that *lineTally) score(w, h, n int) (int, bool) {
	total := 0
	won := false

	tally := func(count int) {
		total += count * count
		if count >= n {
			won = true
		}
	}

	for _, count := range that.rows {
		tally(count)
	}

	for _, count := range that.cols {
		tally(count)
	}

	for d := min(0, w-h); d <= max(0, w-h); d++ {
		tally(that.diags[d+h-1])
	}

	for a := min(w, h) - 1; a <= max(w, h)-1; a++ {
		tally(that.antis[a])
	}

	return total, won
}

// Grid returns the board as rows of marks indexed [y][x]; empty cells are 0.
func (that *Board) Grid() [][]rune {
	grid := make([][]rune, that.height)
	for y := range grid {
		grid[y] = make([]rune, that.width)
	}

	for _, m := range that.history {
		grid[m.Y][m.X] = m.Mark
	}

	return grid
}

// Fingerprint describes the position independently of move order:
// dimensions, side to move and every cell in row-major order.
func (that *Board) Fingerprint() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%dx%d:%c:", that.width, that.height, that.turn.Mark)

	for _, row := range that.Grid() {
		for _, mark := range row {
			if mark == 0 {
				mark = '.'
			}
			sb.WriteRune(mark)
		}
		sb.WriteByte('/')
	}

	return sb.String()
}
