// pathfinding implements the two interchangeable shortest-path searches used by
// the autopilot. Both find minimum-hop routes over 4-connected free cells and
// report the order in which they expanded cells, for display only.
package pathfinding

import (
	"autosnake/models"

	"golang.org/x/exp/slices"
)

// Finder is the contract shared by both strategies: the minimum-hop path from
// start to goal avoiding blocked, plus the expansion trace. start == goal
// yields [start]; an unreachable goal yields an empty path.
// The start cell is never treated as blocked, since the search begins there.
type Finder func(
	grid models.Grid,
	start, goal models.Cell,
	blocked models.CellSet,
) (models.Path, models.Trace)

// For returns the Finder implementing alg.
func For(alg models.Algorithm) Finder {
	if alg == models.Dijkstra {
		return Dijkstra
	}
	return AStar
}

// Manhattan is the sum of absolute row and column differences. It never
// overestimates the hop count on a 4-connected unit-cost grid.
func Manhattan(a, b models.Cell) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Dijkstra is uniform-cost search with unit edge weights. Ties between equal
// distances are broken by insertion order, so expansion is breadth-first and
// reproducible.
func Dijkstra(
	grid models.Grid,
	start, goal models.Cell,
	blocked models.CellSet,
) (path models.Path, visited models.Trace) {
	return search(grid, start, goal, blocked, byDistance, func(models.Cell) int { return 0 })
}

// AStar is best-first search on g + Manhattan(cell, goal).
func AStar(
	grid models.Grid,
	start, goal models.Cell,
	blocked models.CellSet,
) (path models.Path, visited models.Trace) {
	return search(grid, start, goal, blocked, byEstimate, func(c models.Cell) int { return Manhattan(c, goal) })
}

// search is the common uniform-cost loop. With h == 0 it is Dijkstra; with a
// consistent h it is A*, and a cell's first expansion is final in both cases.
func search(
	grid models.Grid,
	start, goal models.Cell,
	blocked models.CellSet,
	less func(a, b entry) bool,
	h func(models.Cell) int,
) (path models.Path, visited models.Trace) {
	dist := map[models.Cell]int{start: 0}
	prev := map[models.Cell]models.Cell{}
	closed := models.CellSet{}

	open := newFrontier(less)
	h0 := h(start)
	open.add(entry{cell: start, priority: h0, h: h0})

	for open.Len() > 0 {
		cur := open.next()
		if closed.Has(cur.cell) {
			continue // stale
		}
		closed.Add(cur.cell)
		visited = append(visited, cur.cell)

		if cur.cell == goal {
			return reconstruct(prev, start, goal), visited
		}

		g := dist[cur.cell]
		for _, nbr := range grid.Neighbors(cur.cell) {
			if blocked.Has(nbr) || closed.Has(nbr) {
				continue
			}
			ng := g + 1
			if known, ok := dist[nbr]; ok && ng >= known {
				continue
			}
			dist[nbr] = ng
			prev[nbr] = cur.cell
			nh := h(nbr)
			open.add(entry{cell: nbr, priority: ng + nh, h: nh})
		}
	}

	return nil, visited
}

// reconstruct walks predecessor links from goal back to start.
func reconstruct(prev map[models.Cell]models.Cell, start, goal models.Cell) models.Path {
	path := models.Path{goal}
	for cur := goal; cur != start; {
		p, ok := prev[cur]
		if !ok {
			return nil
		}
		path = append(path, p)
		cur = p
	}
	slices.Reverse(path)
	return path
}
