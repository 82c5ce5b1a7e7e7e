// board_views contains views derived from the Board view-model.
package board_views

import (
	"fmt"
	"time"

	"autosnake/game"
	"autosnake/grid_world"
	"autosnake/models"
)

// Board is the view-model of one game snapshot. It is built once per
// snapshot and shared by every view; its fields are immediately usable as
// template parameters.
type Board struct {
	Rows, Columns int
	// Cells is indexed [row][col], row 0 at the top, as in svg coordinates.
	Cells  [][]Cell
	Status []StatusItem
}

// Cell is one board square with its drawing attributes resolved.
type Cell struct {
	Row, Col int
	Kind     string
	Fill     string
}

// StatusItem is one labelled value of the status panel.
type StatusItem struct {
	Key   string
	Label string
	Value string
}

// Fills mirror the debug colors of a classic snake autopilot visualizer:
// green snake with an orange tail, red food, the food route in yellow, the
// stalling route in purple and the searched cells in pale blue.
var fills = map[grid_world.CellKind]string{
	grid_world.Empty:    "#f4f4f4",
	grid_world.Visited:  "#c9dcf5",
	grid_world.FoodPath: "#f5dc6e",
	grid_world.TailPath: "#c39bd3",
	grid_world.Food:     "#e74c3c",
	grid_world.Body:     "#8fd18f",
	grid_world.Tail:     "#f39c12",
	grid_world.Head:     "#27ae60",
}

func Fill(kind grid_world.CellKind) string {
	return fills[kind]
}

// Convert transforms a snapshot into the Board view-model.
func Convert(snap game.Snapshot) Board {
	classified := grid_world.NewBoard(snap.Grid, snap.Snake, snap.Food, snap.HasFood, snap.Decision)

	board := Board{
		Rows:    snap.Grid.Rows,
		Columns: snap.Grid.Columns,
		Cells:   make([][]Cell, snap.Grid.Rows),
		Status:  statusItems(snap),
	}
	for r := range board.Cells {
		board.Cells[r] = make([]Cell, 0, snap.Grid.Columns)
	}
	classified.Visit(func(c models.Cell, kind grid_world.CellKind) {
		board.Cells[c.Row] = append(board.Cells[c.Row], Cell{
			Row:  c.Row,
			Col:  c.Col,
			Kind: kind.String(),
			Fill: Fill(kind),
		})
	})
	return board
}

func statusItems(snap game.Snapshot) []StatusItem {
	state := snap.Outcome.String()
	if snap.Paused && !snap.Outcome.Finished() {
		state = "paused"
	}
	strategy := "-"
	if snap.Tick > 0 {
		strategy = snap.Decision.Strategy.String()
	}
	shortID := snap.GameID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	return []StatusItem{
		{Key: "game", Label: "Game", Value: shortID},
		{Key: "state", Label: "State", Value: state},
		{Key: "algorithm", Label: "Search", Value: snap.Algorithm.String()},
		{Key: "length", Label: "Length", Value: fmt.Sprintf("%d / %d", len(snap.Snake), snap.Grid.Size())},
		{Key: "tick", Label: "Tick", Value: fmt.Sprintf("%d", snap.Tick)},
		{Key: "strategy", Label: "Rule", Value: strategy},
		{Key: "expanded", Label: "Expanded", Value: fmt.Sprintf("%d", len(snap.Decision.Visited))},
		{Key: "latency", Label: "Avg decision", Value: snap.AvgDecision.Round(time.Microsecond).String()},
	}
}
