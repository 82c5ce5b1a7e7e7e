package autopilot

import (
	"autosnake/models"
	"autosnake/pathfinding"
)

// CanEatAndReachTail simulates the snake following pathToFood to the end and
// reports whether the grown snake's head could still reach its own tail.
// The simulation works on a clone; snake is never modified.
func (eng *Engine) CanEatAndReachTail(pathToFood models.Path, snake models.Snake) bool {
	if len(pathToFood) == 0 || len(snake) == 0 {
		return false
	}

	sim := snake.Clone()
	sim = append(sim, pathToFood[1:]...)
	simHead, simTail := sim.Head(), sim.Tail()

	escape, _ := pathfinding.Dijkstra(eng.grid, simHead, simTail, sim.Set().Without(simTail))
	return len(escape) > 0
}
