package pathfinding

import (
	"testing"

	"autosnake/models"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/exp/rand"
)

// checkRoute asserts the shape every non-empty result must have.
func checkRoute(path models.Path, start, goal models.Cell, blocked models.CellSet) {
	So(path[0], ShouldResemble, start)
	So(path[len(path)-1], ShouldResemble, goal)
	So(path.IsContiguous(), ShouldBeTrue)
	So(path.HasRepeats(), ShouldBeFalse)
	for _, c := range path[1:] {
		So(blocked.Has(c), ShouldBeFalse)
	}
}

func TestSearches(t *testing.T) {
	finders := map[string]Finder{
		"Dijkstra": Dijkstra,
		"A*":       AStar,
	}

	for name, find := range finders {
		Convey("Given the "+name+" search", t, func() {
			Convey("An open 4x4 board from corner to corner takes six hops", func() {
				grid, _ := models.NewGrid(4, 4)
				path, trace := find(grid, models.Cell{Row: 0, Col: 0}, models.Cell{Row: 3, Col: 3}, models.CellSet{})
				So(path.Len(), ShouldEqual, 7)
				checkRoute(path, models.Cell{Row: 0, Col: 0}, models.Cell{Row: 3, Col: 3}, models.CellSet{})
				So(trace[0], ShouldResemble, models.Cell{Row: 0, Col: 0})
				So(trace[len(trace)-1], ShouldResemble, models.Cell{Row: 3, Col: 3})
			})

			Convey("The food route from the starting snake's head is shorter", func() {
				grid, _ := models.NewGrid(4, 4)
				snake := models.Snake{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}}
				blocked := snake.Set().Without(snake.Tail())
				path, _ := find(grid, snake.Head(), models.Cell{Row: 3, Col: 3}, blocked)
				So(path.Len(), ShouldEqual, 5)
				checkRoute(path, snake.Head(), models.Cell{Row: 3, Col: 3}, blocked)
			})

			Convey("Start equal to goal returns the start alone", func() {
				grid, _ := models.NewGrid(3, 3)
				path, trace := find(grid, models.Cell{Row: 1, Col: 1}, models.Cell{Row: 1, Col: 1}, models.CellSet{})
				So(path, ShouldResemble, models.Path{{Row: 1, Col: 1}})
				So(trace, ShouldResemble, models.Trace{{Row: 1, Col: 1}})
			})

			Convey("A wall forces the route around its open end", func() {
				grid, _ := models.NewGrid(5, 5)
				blocked := models.NewCellSet(
					models.Cell{Row: 0, Col: 2}, models.Cell{Row: 1, Col: 2}, models.Cell{Row: 2, Col: 2}, models.Cell{Row: 3, Col: 2},
				)
				path, _ := find(grid, models.Cell{Row: 0, Col: 0}, models.Cell{Row: 0, Col: 4}, blocked)
				So(path.Len(), ShouldEqual, 13)
				checkRoute(path, models.Cell{Row: 0, Col: 0}, models.Cell{Row: 0, Col: 4}, blocked)
				So(path, ShouldContain, models.Cell{Row: 4, Col: 2})
			})

			Convey("An enclosed goal is unreachable but the trace shows the effort", func() {
				grid, _ := models.NewGrid(5, 5)
				goal := models.Cell{Row: 2, Col: 2}
				blocked := models.NewCellSet(grid.Neighbors(goal)...)
				path, trace := find(grid, models.Cell{Row: 0, Col: 0}, goal, blocked)
				So(path, ShouldBeEmpty)
				So(trace, ShouldNotBeEmpty)
				So(trace, ShouldNotContain, goal)
			})

			Convey("A blocked goal is unreachable", func() {
				grid, _ := models.NewGrid(3, 3)
				path, _ := find(grid, models.Cell{Row: 0, Col: 0}, models.Cell{Row: 2, Col: 2}, models.NewCellSet(models.Cell{Row: 2, Col: 2}))
				So(path, ShouldBeEmpty)
			})

			Convey("Repeated queries give identical results", func() {
				grid, _ := models.NewGrid(6, 6)
				blocked := models.NewCellSet(models.Cell{Row: 2, Col: 1}, models.Cell{Row: 2, Col: 2}, models.Cell{Row: 2, Col: 3})
				p1, t1 := find(grid, models.Cell{Row: 0, Col: 2}, models.Cell{Row: 5, Col: 2}, blocked)
				p2, t2 := find(grid, models.Cell{Row: 0, Col: 2}, models.Cell{Row: 5, Col: 2}, blocked)
				So(p1, ShouldResemble, p2)
				So(t1, ShouldResemble, t2)
			})
		})
	}
}

func TestExpansionOrder(t *testing.T) {
	Convey("On an open board", t, func() {
		grid, _ := models.NewGrid(4, 4)
		start, goal := models.Cell{Row: 0, Col: 0}, models.Cell{Row: 3, Col: 3}

		Convey("A* walks straight to the goal", func() {
			path, trace := AStar(grid, start, goal, models.CellSet{})
			So(len(trace), ShouldEqual, 7)
			So(path, ShouldResemble, models.Path{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}, {Row: 1, Col: 3}, {Row: 2, Col: 3}, {Row: 3, Col: 3}})
		})

		Convey("Dijkstra expands every cell before reaching the far corner", func() {
			_, trace := Dijkstra(grid, start, goal, models.CellSet{})
			So(len(trace), ShouldEqual, grid.Size())
			So(trace[1:3], ShouldResemble, models.Trace{{Row: 1, Col: 0}, {Row: 0, Col: 1}})
		})
	})
}

func TestStrategiesAgree(t *testing.T) {
	Convey("Dijkstra and A* agree on path lengths over random boards", t, func() {
		rng := rand.New(rand.NewSource(7))
		grid, _ := models.NewGrid(8, 8)

		for trial := 0; trial < 200; trial++ {
			blocked := models.CellSet{}
			grid.Visit(func(c models.Cell) {
				if rng.Intn(4) == 0 {
					blocked.Add(c)
				}
			})
			start := models.Cell{Row: rng.Intn(grid.Rows), Col: rng.Intn(grid.Columns)}
			goal := models.Cell{Row: rng.Intn(grid.Rows), Col: rng.Intn(grid.Columns)}
			blocked = blocked.Without(start)

			dPath, _ := Dijkstra(grid, start, goal, blocked)
			aPath, _ := AStar(grid, start, goal, blocked)

			So(len(aPath), ShouldEqual, len(dPath))
			if len(dPath) > 0 {
				checkRoute(dPath, start, goal, blocked)
				checkRoute(aPath, start, goal, blocked)
				So(len(dPath)-1, ShouldBeGreaterThanOrEqualTo, Manhattan(start, goal))
			}
		}
	})

	Convey("For selects the matching strategy", t, func() {
		grid, _ := models.NewGrid(4, 4)
		_, trace := For(models.Dijkstra)(grid, models.Cell{Row: 0, Col: 0}, models.Cell{Row: 3, Col: 3}, models.CellSet{})
		So(len(trace), ShouldEqual, 16)
		_, trace = For(models.AStar)(grid, models.Cell{Row: 0, Col: 0}, models.Cell{Row: 3, Col: 3}, models.CellSet{})
		So(len(trace), ShouldEqual, 7)
	})
}
