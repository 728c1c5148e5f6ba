package render

import (
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
)

// ANSI colors used for the first and second player.
var playerColors = [2]string{"1", "4"}

// Renderer draws a board as a text grid.
type Renderer struct {
	profile termenv.Profile
}

// New returns a renderer; termenv.Ascii disables colors.
func New(profile termenv.Profile) *Renderer {
	return &Renderer{profile: profile}
}

// ForWriter picks the color profile supported by out.
func ForWriter(out io.Writer, color bool) *Renderer {
	if !color {
		return New(termenv.Ascii)
	}

	return New(termenv.NewOutput(out).Profile)
}

// Board renders
//
//	 --- ---
//	| X |   |
//	 --- ---
func (that *Renderer) Board(board *entity.Board) string {
	players := board.Players()
	separator := strings.Repeat(" ---", board.Width()) + "\n"

	var sb strings.Builder
	sb.WriteString(separator)

	for _, row := range board.Grid() {
		cells := make([]string, len(row))
		for x, mark := range row {
			cells[x] = that.mark(mark, players)
		}

		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		sb.WriteString(separator)
	}

	return sb.String()
}

func (that *Renderer) mark(mark rune, players [2]*entity.Player) string {
	if mark == 0 {
		return " "
	}

	if that.profile == termenv.Ascii {
		return string(mark)
	}

	for i, player := range players {
		if player.Mark == mark {
			return that.profile.String(string(mark)).Foreground(that.profile.Color(playerColors[i])).Bold().String()
		}
	}

	return string(mark)
}
