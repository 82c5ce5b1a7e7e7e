// autopilot decides the snake's next move each tick. The Engine holds nothing
// but the board dimensions: every call takes a snapshot of the snake and food
// and returns a fresh Decision, so it may be shared freely between games.
package autopilot

import (
	"fmt"

	"autosnake/models"
	"autosnake/pathfinding"
)

type Engine struct {
	grid models.Grid
}

func NewEngine(grid models.Grid) *Engine {
	return &Engine{grid: grid}
}

func (eng *Engine) Grid() models.Grid {
	return eng.grid
}

// Strategy names the rule that produced a decision.
type Strategy int

const (
	// StrategyTrapped means no free neighbor remained; there is no move.
	StrategyTrapped Strategy = iota
	// StrategyFinalMeal is the last food on an otherwise full board, taken without a safety check.
	StrategyFinalMeal
	// StrategyFood follows the shortest route to food after it passed the safety check.
	StrategyFood
	// StrategyStall follows a stretched route toward the tail to buy time.
	StrategyStall
	// StrategyFallback steps onto any free neighbor.
	StrategyFallback
)

func (s Strategy) String() string {
	switch s {
	case StrategyTrapped:
		return "trapped"
	case StrategyFinalMeal:
		return "final_meal"
	case StrategyFood:
		return "food"
	case StrategyStall:
		return "stall"
	case StrategyFallback:
		return "fallback"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Decision is the result of one CalculateMove call. Visited, PathToFood,
// PathToTail and ActivePath are diagnostics for the viewers.
type Decision struct {
	Next     models.Cell `json:"next"`
	HasMove  bool        `json:"hasMove"`
	Strategy Strategy    `json:"strategy"`
	// Visited is the expansion trace of the food search, whatever branch won.
	Visited    models.Trace `json:"visited"`
	PathToFood models.Path  `json:"pathToFood"`
	PathToTail models.Path  `json:"pathToTail"`
	ActivePath models.Path  `json:"activePath"`
}

// commit builds a decision that follows path.
func commit(strategy Strategy, path models.Path, visited models.Trace) Decision {
	next, ok := path.Next()
	return Decision{
		Next:       next,
		HasMove:    ok,
		Strategy:   strategy,
		Visited:    visited,
		ActivePath: path,
	}
}

// CalculateMove picks the next cell for the head. Rules are tried in order:
// the final meal on a full board, a food route that leaves the tail
// reachable, a stretched route to the tail, then any free neighbor.
// An invalid snake or off-board food is a caller error, not a game result.
func (eng *Engine) CalculateMove(snake models.Snake, food models.Cell, alg models.Algorithm) (Decision, error) {
	if err := snake.Validate(eng.grid); err != nil {
		return Decision{}, fmt.Errorf("invalid snake: %w", err)
	}
	if !eng.grid.InBounds(food) {
		return Decision{}, fmt.Errorf("food %v: %w", food, models.ErrOutOfBounds)
	}

	head, tail := snake.Head(), snake.Tail()
	body := snake.Set()

	// The tail vacates as the head moves, so it is not an obstacle.
	pathToFood, visited := pathfinding.For(alg)(eng.grid, head, food, body.Without(tail))

	// One free cell left: the meal ends the game, so safety is moot.
	if len(snake) == eng.grid.Size()-1 && len(pathToFood) > 0 {
		d := commit(StrategyFinalMeal, pathToFood, visited)
		d.PathToFood = pathToFood
		return d, nil
	}

	if len(pathToFood) > 0 && eng.CanEatAndReachTail(pathToFood, snake) {
		d := commit(StrategyFood, pathToFood, visited)
		d.PathToFood = pathToFood
		return d, nil
	}

	if stall := eng.LongestPath(head, tail, body.Without(head, tail)); len(stall) > 1 {
		d := commit(StrategyStall, stall, visited)
		d.PathToTail = stall
		return d, nil
	}

	for _, nbr := range eng.grid.Neighbors(head) {
		if !body.Has(nbr) {
			return Decision{
				Next:       nbr,
				HasMove:    true,
				Strategy:   StrategyFallback,
				Visited:    visited,
				ActivePath: models.Path{head, nbr},
			}, nil
		}
	}

	return Decision{Strategy: StrategyTrapped, Visited: visited}, nil
}
