package models

import (
	"errors"
	"fmt"
)

// Cell is a (row, col) grid position. Row 0 is the top of the board and col 0
// is its left edge, matching how the board is printed and drawn.
// Cells are plain values and are used directly as map keys.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Direction is a unit step along one of the four axes.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Step returns the cell one unit away in direction d. The result may lie off-grid.
func (c Cell) Step(d Direction) Cell {
	switch d {
	case Up:
		return Cell{c.Row - 1, c.Col}
	case Down:
		return Cell{c.Row + 1, c.Col}
	case Left:
		return Cell{c.Row, c.Col - 1}
	case Right:
		return Cell{c.Row, c.Col + 1}
	}
	return c
}

// DirectionBetween returns the direction of the unit step from a to b.
// ok is false if a and b are not 4-adjacent.
func DirectionBetween(a, b Cell) (d Direction, ok bool) {
	switch {
	case b.Row == a.Row-1 && b.Col == a.Col:
		return Up, true
	case b.Row == a.Row+1 && b.Col == a.Col:
		return Down, true
	case b.Row == a.Row && b.Col == a.Col-1:
		return Left, true
	case b.Row == a.Row && b.Col == a.Col+1:
		return Right, true
	}
	return Up, false
}

// Adjacent reports whether a and b are one unit step apart (Manhattan distance 1).
func Adjacent(a, b Cell) bool {
	_, ok := DirectionBetween(a, b)
	return ok
}

// Grid is the fixed board configuration. It is set once and never mutated;
// everything else in the engine is derived from a Grid plus a snapshot.
type Grid struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// ErrInvalidGrid is returned for boards without at least one row and one column.
var ErrInvalidGrid = errors.New("invalid grid dimensions")

// NewGrid validates and returns a grid. A grid with no cells makes every later
// neighbor or search query meaningless, so it is rejected here.
func NewGrid(rows, columns int) (Grid, error) {
	if rows <= 0 || columns <= 0 {
		return Grid{}, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, columns)
	}
	return Grid{Rows: rows, Columns: columns}, nil
}

// Size returns the number of cells on the board.
func (g Grid) Size() int {
	return g.Rows * g.Columns
}

// InBounds reports whether c lies on the board.
func (g Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Columns
}

// Neighbors returns the up-to-four axis-aligned neighbors of c that lie on the
// board, in the fixed order up, down, left, right. There is no wraparound.
func (g Grid) Neighbors(c Cell) []Cell {
	nbrs := make([]Cell, 0, 4)
	if c.Row > 0 {
		nbrs = append(nbrs, Cell{c.Row - 1, c.Col})
	}
	if c.Row < g.Rows-1 {
		nbrs = append(nbrs, Cell{c.Row + 1, c.Col})
	}
	if c.Col > 0 {
		nbrs = append(nbrs, Cell{c.Row, c.Col - 1})
	}
	if c.Col < g.Columns-1 {
		nbrs = append(nbrs, Cell{c.Row, c.Col + 1})
	}
	return nbrs
}

// Visit calls fn for every cell of the board in row-major order.
func (g Grid) Visit(fn func(c Cell)) {
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Columns; c++ {
			fn(Cell{r, c})
		}
	}
}
