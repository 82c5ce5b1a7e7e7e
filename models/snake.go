package models

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// CellSet is an unordered set of cells. Search queries build their own
// blocked set from a snapshot and discard it afterwards.
type CellSet map[Cell]struct{}

// NewCellSet returns a set holding the passed cells.
func NewCellSet(cells ...Cell) CellSet {
	set := make(CellSet, len(cells))
	for _, c := range cells {
		set[c] = struct{}{}
	}
	return set
}

func (s CellSet) Has(c Cell) bool {
	_, ok := s[c]
	return ok
}

func (s CellSet) Add(c Cell) {
	s[c] = struct{}{}
}

// Without returns a copy of the set minus the passed cells. The receiver is unchanged.
func (s CellSet) Without(cells ...Cell) CellSet {
	out := make(CellSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	for _, c := range cells {
		delete(out, c)
	}
	return out
}

// Snake is the ordered body of the agent: the tail (oldest cell) first and
// the head (newest cell) last.
type Snake []Cell

var (
	ErrEmptySnake       = errors.New("snake has no cells")
	ErrOutOfBounds      = errors.New("cell out of bounds")
	ErrSelfIntersecting = errors.New("snake occupies a cell twice")
	ErrNotContiguous    = errors.New("snake cells are not adjacent")
)

// Head returns the newest cell. The snake must not be empty.
func (s Snake) Head() Cell {
	return s[len(s)-1]
}

// Tail returns the oldest cell. The snake must not be empty.
func (s Snake) Tail() Cell {
	return s[0]
}

// Heading is the direction of the last move, from the cell behind the head to
// the head. A one-cell snake has no heading.
func (s Snake) Heading() (Direction, bool) {
	if len(s) < 2 {
		return Up, false
	}
	return DirectionBetween(s[len(s)-2], s.Head())
}

func (s Snake) Contains(c Cell) bool {
	return slices.Contains(s, c)
}

// Set returns the body as a CellSet.
func (s Snake) Set() CellSet {
	return NewCellSet(s...)
}

// Clone returns an independent copy, used for simulations that must leave the
// real body untouched.
func (s Snake) Clone() Snake {
	return slices.Clone(s)
}

// Validate checks the body invariants against grid: at least one cell, every
// cell on the board, no cell repeated, and consecutive cells 4-adjacent.
func (s Snake) Validate(grid Grid) error {
	if len(s) == 0 {
		return ErrEmptySnake
	}
	seen := make(CellSet, len(s))
	for i, c := range s {
		if !grid.InBounds(c) {
			return fmt.Errorf("snake segment %d %v: %w", i, c, ErrOutOfBounds)
		}
		if seen.Has(c) {
			return fmt.Errorf("snake segment %d %v: %w", i, c, ErrSelfIntersecting)
		}
		if i > 0 && !Adjacent(s[i-1], c) {
			return fmt.Errorf("snake segments %d-%d %v %v: %w", i-1, i, s[i-1], c, ErrNotContiguous)
		}
		seen.Add(c)
	}
	return nil
}
