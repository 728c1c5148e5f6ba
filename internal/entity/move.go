package entity

import "fmt"

// Cell is a board coordinate. It is the identity of a Move.
type Cell struct {
	X int
	Y int
}

// Move is a mark placed at (X, Y). Two moves are the same move when they
// target the same cell, whatever the mark.
type Move struct {
	X    int
	Y    int
	Mark rune
}

func NewMove(x, y int, mark rune) Move {
	return Move{X: x, Y: y, Mark: mark}
}

func (that Move) Cell() Cell {
	return Cell{X: that.X, Y: that.Y}
}

func (that Move) Equal(other Move) bool {
	return that.X == other.X && that.Y == other.Y
}

// Location returns the 1-based coordinates shown to humans.
func (that Move) Location() (int, int) {
	return that.X + 1, that.Y + 1
}

func (that Move) String() string {
	return fmt.Sprintf("%c at (%d,%d)", that.Mark, that.X, that.Y)
}
