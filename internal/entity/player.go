package entity

import (
	"strings"
	"unicode/utf8"
)

// Player is a contestant identified by name. Mark is the single character
// placed on the board.
type Player struct {
	Name string
	Mark rune
}

// NewPlayer builds a player; an empty mark defaults to the upper-cased
// first letter of the name. Only the first character of mark is kept; with
// neither a name nor a mark the player has no mark (0) and no board accepts it.
func NewPlayer(name, mark string) *Player {
	if mark == "" {
		mark = strings.ToUpper(name)
	}

	player := &Player{Name: name}
	if r, size := utf8.DecodeRuneInString(mark); size > 0 {
		player.Mark = r
	}

	return player
}

func (that *Player) Equal(other *Player) bool {
	if that == nil || other == nil {
		return that == other
	}

	return that.Name == other.Name
}

func (that *Player) String() string {
	return that.Name
}
