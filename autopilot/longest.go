package autopilot

import (
	"autosnake/models"
	"autosnake/pathfinding"
)

// LongestPath stretches the shortest route from start to goal by repeatedly
// bulging straight segments sideways into free cells. It is a bounded
// heuristic rather than an exhaustive search: the result is simple, keeps the
// same endpoints and is never shorter than the shortest route.
func (eng *Engine) LongestPath(start, goal models.Cell, blocked models.CellSet) models.Path {
	shortest, _ := pathfinding.Dijkstra(eng.grid, start, goal, blocked)
	if len(shortest) <= 1 {
		return shortest
	}

	path := append(models.Path{}, shortest...)
	occupied := blocked.Without()
	for _, c := range path {
		occupied.Add(c)
	}
	free := func(c models.Cell) bool {
		return eng.grid.InBounds(c) && !occupied.Has(c)
	}

	for inserted := true; inserted; {
		inserted = false
		for i := 0; i < len(path)-1; i++ {
			a, b, ok := detour(path[i], path[i+1], free)
			if !ok {
				continue
			}
			path = insertPair(path, i+1, a, b)
			occupied.Add(a)
			occupied.Add(b)
			inserted = true
			i += 2
		}
	}
	return path
}

// detour returns the first free pair of cells running parallel to the step
// u->v: above then below a horizontal step, left then right of a vertical one.
func detour(u, v models.Cell, free func(models.Cell) bool) (a, b models.Cell, ok bool) {
	var sides [2]models.Direction
	switch {
	case u.Row == v.Row:
		sides = [2]models.Direction{models.Up, models.Down}
	case u.Col == v.Col:
		sides = [2]models.Direction{models.Left, models.Right}
	default:
		return a, b, false
	}
	for _, side := range sides {
		a, b = u.Step(side), v.Step(side)
		if free(a) && free(b) {
			return a, b, true
		}
	}
	return models.Cell{}, models.Cell{}, false
}

// insertPair returns path with a and b inserted at index i, in that order.
func insertPair(path models.Path, i int, a, b models.Cell) models.Path {
	out := make(models.Path, 0, len(path)+2)
	out = append(out, path[:i]...)
	out = append(out, a, b)
	return append(out, path[i:]...)
}
