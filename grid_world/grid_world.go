package grid_world

import (
	"fmt"
	"io"
	"strings"

	"autosnake/autopilot"
	"autosnake/models"
)

// CellKind is what a viewer should draw in a board cell. Kinds are ordered by
// precedence: when a cell belongs to several layers the highest kind wins.
type CellKind int

const (
	Empty CellKind = iota
	Visited
	FoodPath
	TailPath
	Food
	Body
	Tail
	Head
)

// Glyphs used for console printing, indexed by CellKind.
var glyphs = [...]rune{
	Empty:    '.',
	Visited:  ',',
	FoodPath: '+',
	TailPath: '~',
	Food:     '*',
	Body:     'o',
	Tail:     'x',
	Head:     '@',
}

var names = [...]string{
	Empty:    "empty",
	Visited:  "visited",
	FoodPath: "food-path",
	TailPath: "tail-path",
	Food:     "food",
	Body:     "body",
	Tail:     "tail",
	Head:     "head",
}

func (k CellKind) Rune() rune {
	if k < 0 || int(k) >= len(glyphs) {
		return '?'
	}
	return glyphs[k]
}

// String returns a lowercase name, also used as a css class by the web views.
func (k CellKind) String() string {
	if k < 0 || int(k) >= len(names) {
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
	return names[k]
}

// Preset board sizes: a small one for development and the regular one.
var (
	DebugBoard = models.Grid{Rows: 8, Columns: 8}
	FullBoard  = models.Grid{Rows: 20, Columns: 20}
)

// Board is a classified, row-major picture of one game state. It is built
// once per published snapshot and shared read-only by every viewer.
type Board struct {
	Grid  models.Grid
	kinds []CellKind
}

// NewBoard layers the decision diagnostics under the snake and food.
// hasFood is false once the board is full and no food was placed.
func NewBoard(
	grid models.Grid,
	snake models.Snake,
	food models.Cell,
	hasFood bool,
	decision autopilot.Decision,
) *Board {
	board := &Board{
		Grid:  grid,
		kinds: make([]CellKind, grid.Size()),
	}

	for _, c := range decision.Visited {
		board.paint(c, Visited)
	}
	for _, c := range decision.PathToFood {
		board.paint(c, FoodPath)
	}
	for _, c := range decision.PathToTail {
		board.paint(c, TailPath)
	}
	if hasFood {
		board.paint(food, Food)
	}
	for i, c := range snake {
		switch i {
		case len(snake) - 1:
			board.paint(c, Head)
		case 0:
			board.paint(c, Tail)
		default:
			board.paint(c, Body)
		}
	}
	return board
}

// paint raises the kind of c to kind if kind has higher precedence.
func (b *Board) paint(c models.Cell, kind CellKind) {
	if !b.Grid.InBounds(c) {
		return
	}
	i := c.Row*b.Grid.Columns + c.Col
	if kind > b.kinds[i] {
		b.kinds[i] = kind
	}
}

// At returns the kind drawn at c; off-board cells are Empty.
func (b *Board) At(c models.Cell) CellKind {
	if !b.Grid.InBounds(c) {
		return Empty
	}
	return b.kinds[c.Row*b.Grid.Columns+c.Col]
}

// Visit calls fn for each cell and its kind in row-major order.
func (b *Board) Visit(fn func(c models.Cell, kind CellKind)) {
	b.Grid.Visit(func(c models.Cell) {
		fn(c, b.At(c))
	})
}

// Count returns how many cells are drawn as kind.
func (b *Board) Count(kind CellKind) (n int) {
	for _, k := range b.kinds {
		if k == kind {
			n++
		}
	}
	return
}

// Lines renders the board as one string per row, glyphs separated by spaces.
func (b *Board) Lines() []string {
	lines := make([]string, 0, b.Grid.Rows)
	var sb strings.Builder
	for r := 0; r < b.Grid.Rows; r++ {
		sb.Reset()
		for c := 0; c < b.Grid.Columns; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteRune(b.At(models.Cell{Row: r, Col: c}).Rune())
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// Show prints the board, for console debugging.
func (b *Board) Show(w io.Writer) {
	for _, line := range b.Lines() {
		fmt.Fprintln(w, line)
	}
}
