package models

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGrid(t *testing.T) {
	Convey("When building a grid", t, func() {
		Convey("Non-positive dimensions are rejected", func() {
			for _, dims := range [][2]int{{0, 5}, {5, 0}, {-1, 3}, {0, 0}} {
				_, err := NewGrid(dims[0], dims[1])
				So(errors.Is(err, ErrInvalidGrid), ShouldBeTrue)
			}
		})

		Convey("Valid dimensions are kept", func() {
			grid, err := NewGrid(4, 6)
			So(err, ShouldBeNil)
			So(grid.Rows, ShouldEqual, 4)
			So(grid.Columns, ShouldEqual, 6)
			So(grid.Size(), ShouldEqual, 24)
		})
	})

	Convey("When asking for neighbors", t, func() {
		grid, _ := NewGrid(5, 5)

		Convey("The top-left corner has exactly two", func() {
			So(grid.Neighbors(Cell{0, 0}), ShouldResemble, []Cell{{1, 0}, {0, 1}})
		})

		Convey("The bottom-right corner has exactly two", func() {
			So(grid.Neighbors(Cell{4, 4}), ShouldResemble, []Cell{{3, 4}, {4, 3}})
		})

		Convey("An edge cell has three", func() {
			So(grid.Neighbors(Cell{0, 2}), ShouldResemble, []Cell{{1, 2}, {0, 1}, {0, 3}})
		})

		Convey("An interior cell has four in up, down, left, right order", func() {
			So(grid.Neighbors(Cell{2, 2}), ShouldResemble, []Cell{{1, 2}, {3, 2}, {2, 1}, {2, 3}})
		})

		Convey("A single-cell board has none", func() {
			tiny, _ := NewGrid(1, 1)
			So(tiny.Neighbors(Cell{0, 0}), ShouldBeEmpty)
		})

		Convey("Every neighbor is in bounds and adjacent", func() {
			grid.Visit(func(c Cell) {
				for _, n := range grid.Neighbors(c) {
					So(grid.InBounds(n), ShouldBeTrue)
					So(Adjacent(c, n), ShouldBeTrue)
				}
			})
		})
	})
}

func TestDirections(t *testing.T) {
	Convey("Stepping and recovering a direction agree", t, func() {
		origin := Cell{3, 3}
		for _, d := range []Direction{Up, Down, Left, Right} {
			got, ok := DirectionBetween(origin, origin.Step(d))
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, d)
		}

		_, ok := DirectionBetween(origin, Cell{4, 4})
		So(ok, ShouldBeFalse)
	})
}

func TestSnake(t *testing.T) {
	grid, _ := NewGrid(4, 4)

	Convey("When validating a snake", t, func() {
		Convey("A contiguous in-bounds body passes", func() {
			snake := Snake{{0, 0}, {0, 1}, {1, 1}}
			So(snake.Validate(grid), ShouldBeNil)
			So(snake.Head(), ShouldResemble, Cell{1, 1})
			So(snake.Tail(), ShouldResemble, Cell{0, 0})
		})

		Convey("Broken bodies are reported", func() {
			So(errors.Is(Snake{}.Validate(grid), ErrEmptySnake), ShouldBeTrue)
			So(errors.Is(Snake{{0, 0}, {0, -1}}.Validate(grid), ErrOutOfBounds), ShouldBeTrue)
			So(errors.Is(Snake{{0, 0}, {0, 1}, {0, 0}}.Validate(grid), ErrSelfIntersecting), ShouldBeTrue)
			So(errors.Is(Snake{{0, 0}, {2, 2}}.Validate(grid), ErrNotContiguous), ShouldBeTrue)
		})
	})

	Convey("Cloning leaves the original untouched", t, func() {
		snake := Snake{{0, 0}, {0, 1}}
		clone := append(snake.Clone(), Cell{0, 2})
		clone[0] = Cell{3, 3}
		So(snake, ShouldResemble, Snake{{0, 0}, {0, 1}})
	})

	Convey("The heading follows the last move", t, func() {
		d, ok := Snake{{0, 0}, {0, 1}}.Heading()
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, Right)

		d, ok = Snake{{0, 1}, {1, 1}, {1, 0}}.Heading()
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, Left)

		_, ok = Snake{{2, 2}}.Heading()
		So(ok, ShouldBeFalse)
	})

	Convey("Without copies the set", t, func() {
		set := NewCellSet(Cell{0, 0}, Cell{0, 1})
		less := set.Without(Cell{0, 1})
		So(less.Has(Cell{0, 1}), ShouldBeFalse)
		So(set.Has(Cell{0, 1}), ShouldBeTrue)
	})
}

func TestPath(t *testing.T) {
	Convey("Path helpers", t, func() {
		p := Path{{0, 0}, {0, 1}, {1, 1}}
		next, ok := p.Next()
		So(ok, ShouldBeTrue)
		So(next, ShouldResemble, Cell{0, 1})
		So(p.IsContiguous(), ShouldBeTrue)
		So(p.HasRepeats(), ShouldBeFalse)

		_, ok = Path{{0, 0}}.Next()
		So(ok, ShouldBeFalse)
		So(Path{{0, 0}, {1, 1}}.IsContiguous(), ShouldBeFalse)
		So(Path{{0, 0}, {0, 1}, {0, 0}}.HasRepeats(), ShouldBeTrue)
	})
}

func TestAlgorithm(t *testing.T) {
	Convey("Parsing algorithm names", t, func() {
		for _, name := range []string{"astar", "A*", " AStar "} {
			alg, err := ParseAlgorithm(name)
			So(err, ShouldBeNil)
			So(alg, ShouldEqual, AStar)
		}
		alg, err := ParseAlgorithm("Dijkstra")
		So(err, ShouldBeNil)
		So(alg, ShouldEqual, Dijkstra)
		So(alg.Toggle(), ShouldEqual, AStar)
		So(alg.Key(), ShouldEqual, "dijkstra")

		_, err = ParseAlgorithm("bfs")
		So(errors.Is(err, ErrUnknownAlgorithm), ShouldBeTrue)
	})
}
